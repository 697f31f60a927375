package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yassinema02/vestiaire-sub000/internal/ai"
	"github.com/yassinema02/vestiaire-sub000/internal/auth"
	"github.com/yassinema02/vestiaire-sub000/internal/pipeline"
	"github.com/yassinema02/vestiaire-sub000/internal/repo"
	"github.com/yassinema02/vestiaire-sub000/internal/services"
)

// Services holds all application services
type Services struct {
	DB                *gorm.DB
	AuthService       *auth.Service
	UserRepo          *repo.UserRepository
	WardrobeRepo      *repo.WardrobeRepository
	ExtractionJobRepo *repo.ExtractionJobRepository
	NotificationRepo  *repo.NotificationRepository
	RemovalUsageRepo  *repo.RemovalUsageRepository
	StorageService    *services.StorageService
	UsageService      *services.UsageService
	NotifierService   *services.NotifierService
	ListingGenerator  *ai.ListingGenerator
	PipelineManager   *pipeline.Manager
}

// NewServices creates a new services container. Object storage is the
// one hard requirement; the AI providers may be unconfigured, which
// disables their stages but keeps the API serving.
func NewServices(db *gorm.DB) (*Services, error) {
	// Initialize repositories
	userRepo := repo.NewUserRepository(db)
	wardrobeRepo := repo.NewWardrobeRepository(db)
	jobRepo := repo.NewExtractionJobRepository(db)
	notificationRepo := repo.NewNotificationRepository(db)
	usageRepo := repo.NewRemovalUsageRepository(db)

	authService := auth.NewService()

	storageService, err := services.NewStorageService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage service: %w", err)
	}

	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, item detection and listing generation disabled")
	}
	detector := ai.NewDetector(openaiKey)

	var listingGenerator *ai.ListingGenerator
	if openaiKey != "" {
		listingGenerator = ai.NewListingGenerator(openaiKey)
	}

	removalKey := os.Getenv("GEMINI_API_KEY")
	if removalKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, background removal disabled")
	}
	remover := ai.NewBackgroundRemover(removalKey).
		WithModel(os.Getenv("REMOVAL_MODEL")).
		WithBaseURL(os.Getenv("REMOVAL_BASE_URL"))

	// Initialize pipeline stages
	uploader := services.NewPhotoUploader(storageService)
	extractionService := services.NewExtractionService(jobRepo, detector)
	backgroundProcessor := services.NewBackgroundProcessor(remover, storageService, usageRepo)
	importer := services.NewImporterService(wardrobeRepo, jobRepo)
	notifier := services.NewNotifierService(notificationRepo)
	usageService := services.NewUsageService(usageRepo)

	pipelineManager := pipeline.NewManager(pipeline.Deps{
		Uploader:   uploader,
		Extraction: extractionService,
		Removal:    backgroundProcessor,
		Importer:   importer,
		Wardrobe:   wardrobeRepo,
		Notifier:   notifier,
	})

	return &Services{
		DB:                db,
		AuthService:       authService,
		UserRepo:          userRepo,
		WardrobeRepo:      wardrobeRepo,
		ExtractionJobRepo: jobRepo,
		NotificationRepo:  notificationRepo,
		RemovalUsageRepo:  usageRepo,
		StorageService:    storageService,
		UsageService:      usageService,
		NotifierService:   notifier,
		ListingGenerator:  listingGenerator,
		PipelineManager:   pipelineManager,
	}, nil
}
