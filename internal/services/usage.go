package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/yassinema02/vestiaire-sub000/internal/repo"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// UsageService reports background removal usage per user
type UsageService struct {
	usage *repo.RemovalUsageRepository
}

// NewUsageService creates a new usage service
func NewUsageService(usage *repo.RemovalUsageRepository) *UsageService {
	return &UsageService{usage: usage}
}

// CurrentMonth returns the user's removal count for the current month
func (s *UsageService) CurrentMonth(userID uuid.UUID) (models.RemovalUsageSummary, error) {
	month := time.Now().Format("2006-01")
	count, err := s.usage.GetMonth(userID, month)
	if err != nil {
		return models.RemovalUsageSummary{}, err
	}
	return models.RemovalUsageSummary{Month: month, Count: count}, nil
}

// History returns the user's monthly removal counts, newest first
func (s *UsageService) History(userID uuid.UUID, months int) ([]models.RemovalUsageSummary, error) {
	if months <= 0 {
		months = 12
	}
	usages, err := s.usage.ListByUser(userID, months)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.RemovalUsageSummary, 0, len(usages))
	for _, usage := range usages {
		summaries = append(summaries, models.RemovalUsageSummary{
			Month: usage.Month,
			Count: usage.Count,
		})
	}
	return summaries, nil
}
