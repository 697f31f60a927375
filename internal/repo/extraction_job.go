package repo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// ExtractionJobRepository handles extraction job data access
type ExtractionJobRepository struct {
	db *gorm.DB
}

// NewExtractionJobRepository creates a new extraction job repository
func NewExtractionJobRepository(db *gorm.DB) *ExtractionJobRepository {
	return &ExtractionJobRepository{db: db}
}

// Create persists a new extraction job
func (r *ExtractionJobRepository) Create(job *models.ExtractionJob) error {
	return r.db.Create(job).Error
}

// GetByID gets an extraction job by ID
func (r *ExtractionJobRepository) GetByID(id uuid.UUID) (*models.ExtractionJob, error) {
	var job models.ExtractionJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByIDForUser gets an extraction job by ID scoped to its owner
func (r *ExtractionJobRepository) GetByIDForUser(id, userID uuid.UUID) (*models.ExtractionJob, error) {
	var job models.ExtractionJob
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByUser gets a user's extraction jobs with pagination, newest first
func (r *ExtractionJobRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]models.ExtractionJob, int64, error) {
	var jobs []models.ExtractionJob
	var total int64

	query := r.db.Model(&models.ExtractionJob{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	return jobs, total, err
}

// Save persists the full job row
func (r *ExtractionJobRepository) Save(job *models.ExtractionJob) error {
	return r.db.Save(job).Error
}

// UpdateFields applies a partial update to a job row
func (r *ExtractionJobRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&models.ExtractionJob{}).Where("id = ?", id).Updates(fields).Error
}

// MarkProcessing moves a job to processing and stamps its start time
func (r *ExtractionJobRepository) MarkProcessing(id uuid.UUID) error {
	now := time.Now()
	return r.UpdateFields(id, map[string]interface{}{
		"status":     models.ExtractionJobStatusProcessing,
		"started_at": &now,
	})
}

// MarkCompleted moves a job to completed with its final detection result
func (r *ExtractionJobRepository) MarkCompleted(id uuid.UUID, result *models.DetectionResult, processedPhotos int) error {
	now := time.Now()
	return r.UpdateFields(id, map[string]interface{}{
		"status":           models.ExtractionJobStatusCompleted,
		"detected_items":   result,
		"processed_photos": processedPhotos,
		"completed_at":     &now,
	})
}

// MarkFailed moves a job to failed with an error message
func (r *ExtractionJobRepository) MarkFailed(id uuid.UUID, message string) error {
	now := time.Now()
	return r.UpdateFields(id, map[string]interface{}{
		"status":        models.ExtractionJobStatusFailed,
		"error_message": &message,
		"completed_at":  &now,
	})
}

// UpdateItemsAdded records how many items the import committed. This is
// the only field that may change after a job reaches a terminal state.
func (r *ExtractionJobRepository) UpdateItemsAdded(id uuid.UUID, count int) error {
	return r.UpdateFields(id, map[string]interface{}{
		"items_added_count": count,
	})
}
