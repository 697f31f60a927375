package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// RemovalUsageRepository handles background removal usage accounting
type RemovalUsageRepository struct {
	db *gorm.DB
}

// NewRemovalUsageRepository creates a new removal usage repository
func NewRemovalUsageRepository(db *gorm.DB) *RemovalUsageRepository {
	return &RemovalUsageRepository{db: db}
}

// IncrementMonthly adds to a user's removal counter for the given month,
// creating the row on first use
func (r *RemovalUsageRepository) IncrementMonthly(userID uuid.UUID, month string, amount int) error {
	if amount <= 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var usage models.RemovalUsage
		err := tx.Where("user_id = ? AND month = ?", userID, month).First(&usage).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				usage = models.RemovalUsage{
					UserID: userID,
					Month:  month,
					Count:  amount,
				}
				return tx.Create(&usage).Error
			}
			return err
		}

		usage.Count += amount
		return tx.Save(&usage).Error
	})
}

// GetMonth gets a user's removal count for one month; a missing row
// reads as zero
func (r *RemovalUsageRepository) GetMonth(userID uuid.UUID, month string) (int, error) {
	var usage models.RemovalUsage
	err := r.db.Where("user_id = ? AND month = ?", userID, month).First(&usage).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return usage.Count, nil
}

// ListByUser gets a user's monthly removal counters, newest month first
func (r *RemovalUsageRepository) ListByUser(userID uuid.UUID, limit int) ([]models.RemovalUsage, error) {
	var usages []models.RemovalUsage
	err := r.db.Where("user_id = ?", userID).
		Order("month DESC").
		Limit(limit).
		Find(&usages).Error
	return usages, err
}
