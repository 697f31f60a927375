package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/yassinema02/vestiaire-sub000/internal/ai"
	"github.com/yassinema02/vestiaire-sub000/internal/http/middleware"
	"github.com/yassinema02/vestiaire-sub000/internal/repo"
	"github.com/yassinema02/vestiaire-sub000/internal/taxonomy"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// WardrobeHandler serves the wardrobe inventory API
type WardrobeHandler struct {
	wardrobeRepo *repo.WardrobeRepository
	listings     *ai.ListingGenerator
}

// NewWardrobeHandler creates a new wardrobe handler
func NewWardrobeHandler(db *gorm.DB, listings *ai.ListingGenerator) *WardrobeHandler {
	return &WardrobeHandler{
		wardrobeRepo: repo.NewWardrobeRepository(db),
		listings:     listings,
	}
}

// CreateWardrobeItemRequest is the payload for manual item creation
type CreateWardrobeItemRequest struct {
	Name          string   `json:"name" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	SubCategory   string   `json:"sub_category"`
	Colors        []string `json:"colors"`
	Style         string   `json:"style"`
	Material      string   `json:"material"`
	Brand         string   `json:"brand"`
	ImageURL      string   `json:"image_url"`
	PurchasePrice *float64 `json:"purchase_price"`
}

// UpdateWardrobeItemRequest is the payload for partial item updates;
// nil fields are left untouched
type UpdateWardrobeItemRequest struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	SubCategory   *string  `json:"sub_category"`
	Colors        []string `json:"colors"`
	Style         *string  `json:"style"`
	Material      *string  `json:"material"`
	Brand         *string  `json:"brand"`
	ImageURL      *string  `json:"image_url"`
	PurchasePrice *float64 `json:"purchase_price"`
}

// List returns the user's wardrobe items with pagination and an
// optional category filter
func (h *WardrobeHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	category := strings.ToLower(strings.TrimSpace(c.QueryParam("category")))

	items, total, err := h.wardrobeRepo.ListByUser(userID, category, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to list wardrobe items",
		})
	}
	return c.JSON(http.StatusOK, models.NewPaginationResult(items, total, page, limit))
}

// GetByID returns one wardrobe item owned by the user
func (h *WardrobeHandler) GetByID(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid item ID",
		})
	}

	item, err := h.wardrobeRepo.GetByIDForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Wardrobe item not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to get wardrobe item",
		})
	}
	return c.JSON(http.StatusOK, itemWithMetrics(item))
}

// Create adds a wardrobe item manually
func (h *WardrobeHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req CreateWardrobeItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	category := taxonomy.NormalizeCategory(req.Category)
	item := &models.WardrobeItem{
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		Category:      category,
		SubCategory:   taxonomy.NormalizeSubCategory(req.SubCategory, category),
		Colors:        normalizedColorsOrRaw(req.Colors),
		Style:         req.Style,
		Material:      req.Material,
		Brand:         req.Brand,
		ImageURL:      req.ImageURL,
		PurchasePrice: req.PurchasePrice,
	}
	if err := h.wardrobeRepo.Create(item); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to create wardrobe item",
		})
	}
	return c.JSON(http.StatusCreated, item)
}

// Update applies a partial update to a wardrobe item
func (h *WardrobeHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid item ID",
		})
	}

	var req UpdateWardrobeItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request format",
		})
	}

	item, err := h.wardrobeRepo.GetByIDForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Wardrobe item not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to get wardrobe item",
		})
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "Name cannot be empty",
			})
		}
		item.Name = name
	}
	if req.Category != nil {
		item.Category = taxonomy.NormalizeCategory(*req.Category)
		item.SubCategory = taxonomy.NormalizeSubCategory(item.SubCategory, item.Category)
	}
	if req.SubCategory != nil {
		item.SubCategory = taxonomy.NormalizeSubCategory(*req.SubCategory, item.Category)
	}
	if req.Colors != nil {
		item.Colors = normalizedColorsOrRaw(req.Colors)
	}
	if req.Style != nil {
		item.Style = *req.Style
	}
	if req.Material != nil {
		item.Material = *req.Material
	}
	if req.Brand != nil {
		item.Brand = *req.Brand
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.PurchasePrice != nil {
		item.PurchasePrice = req.PurchasePrice
	}

	if err := h.wardrobeRepo.Update(item); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to update wardrobe item",
		})
	}
	return c.JSON(http.StatusOK, itemWithMetrics(item))
}

// Delete removes a wardrobe item
func (h *WardrobeHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid item ID",
		})
	}

	if err := h.wardrobeRepo.Delete(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Wardrobe item not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to delete wardrobe item",
		})
	}
	return c.NoContent(http.StatusNoContent)
}

// RegisterWear records one wear of an item and returns the updated
// sustainability metrics
func (h *WardrobeHandler) RegisterWear(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid item ID",
		})
	}

	item, err := h.wardrobeRepo.GetByIDForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Wardrobe item not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to get wardrobe item",
		})
	}

	item.RegisterWear(time.Now())
	if err := h.wardrobeRepo.Update(item); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to record wear",
		})
	}
	return c.JSON(http.StatusOK, itemWithMetrics(item))
}

// GenerateListing writes resale listing copy for one wardrobe item
func (h *WardrobeHandler) GenerateListing(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if h.listings == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error": "Listing generation is not configured",
		})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid item ID",
		})
	}

	item, err := h.wardrobeRepo.GetByIDForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Wardrobe item not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to get wardrobe item",
		})
	}

	listing, err := h.listings.GenerateListing(c.Request().Context(), item)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error": "Failed to generate listing",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"item_id": item.ID,
		"listing": listing,
	})
}

// itemWithMetrics wraps an item with its derived wear metrics
func itemWithMetrics(item *models.WardrobeItem) map[string]interface{} {
	return map[string]interface{}{
		"item":          item,
		"cost_per_wear": item.CostPerWear(),
	}
}

// normalizedColorsOrRaw maps colors onto the canonical palette, keeping
// the raw values when none of them match
func normalizedColorsOrRaw(colors []string) []string {
	normalized := taxonomy.NormalizeColors(colors)
	if len(normalized) == 0 {
		normalized = colors
	}
	if normalized == nil {
		normalized = []string{}
	}
	return normalized
}
