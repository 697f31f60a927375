package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// WardrobeRepository handles wardrobe item data access
type WardrobeRepository struct {
	db *gorm.DB
}

// NewWardrobeRepository creates a new wardrobe repository
func NewWardrobeRepository(db *gorm.DB) *WardrobeRepository {
	return &WardrobeRepository{db: db}
}

// Create persists a new wardrobe item
func (r *WardrobeRepository) Create(item *models.WardrobeItem) error {
	return r.db.Create(item).Error
}

// GetByIDForUser gets a wardrobe item by ID scoped to its owner
func (r *WardrobeRepository) GetByIDForUser(id, userID uuid.UUID) (*models.WardrobeItem, error) {
	var item models.WardrobeItem
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByUser gets a user's wardrobe items with optional category filter
// and pagination, newest first
func (r *WardrobeRepository) ListByUser(userID uuid.UUID, category string, limit, offset int) ([]models.WardrobeItem, int64, error) {
	var items []models.WardrobeItem
	var total int64

	query := r.db.Model(&models.WardrobeItem{}).Where("user_id = ?", userID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	return items, total, err
}

// GetAllForUser gets every wardrobe item a user owns, for duplicate
// matching against a detection batch
func (r *WardrobeRepository) GetAllForUser(userID uuid.UUID) ([]models.WardrobeItem, error) {
	var items []models.WardrobeItem
	err := r.db.Where("user_id = ?", userID).Find(&items).Error
	return items, err
}

// Update persists changes to a wardrobe item
func (r *WardrobeRepository) Update(item *models.WardrobeItem) error {
	return r.db.Save(item).Error
}

// Delete soft-deletes a wardrobe item scoped to its owner
func (r *WardrobeRepository) Delete(id, userID uuid.UUID) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.WardrobeItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByUser counts a user's wardrobe items
func (r *WardrobeRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.WardrobeItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
