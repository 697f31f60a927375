package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/yassinema02/vestiaire-sub000/internal/http/middleware"
	"github.com/yassinema02/vestiaire-sub000/internal/pipeline"
	"github.com/yassinema02/vestiaire-sub000/internal/repo"
	"github.com/yassinema02/vestiaire-sub000/internal/services"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// ExtractionHandler drives the per-user extraction pipeline and serves
// extraction job history
type ExtractionHandler struct {
	manager *pipeline.Manager
	jobRepo *repo.ExtractionJobRepository
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(db *gorm.DB, manager *pipeline.Manager) *ExtractionHandler {
	return &ExtractionHandler{
		manager: manager,
		jobRepo: repo.NewExtractionJobRepository(db),
	}
}

// Start begins a new extraction from the uploaded photo batch
func (h *ExtractionHandler) Start(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid multipart form",
		})
	}

	files := form.File["photos"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "No photos provided",
		})
	}
	if len(files) > services.MaxBatchPhotos {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Too many photos",
			"limit": services.MaxBatchPhotos,
		})
	}

	photos := make([]services.PhotoUpload, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "Unreadable photo: " + file.Filename,
			})
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "Unreadable photo: " + file.Filename,
			})
		}
		photos = append(photos, services.PhotoUpload{
			Filename: file.Filename,
			Data:     data,
		})
	}

	session := h.manager.Session(userID)
	if err := session.Start(photos); err != nil {
		if errors.Is(err, pipeline.ErrPipelineActive) {
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"error": err.Error(),
			})
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusAccepted, session.Snapshot())
}

// Current returns a snapshot of the user's pipeline session
func (h *ExtractionHandler) Current(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.manager.Session(userID).Snapshot())
}

// Retry re-runs detection for the photos that failed
func (h *ExtractionHandler) Retry(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	session := h.manager.Session(userID)
	if err := session.Retry(); err != nil {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusAccepted, session.Snapshot())
}

// SkipFailed abandons the failed photos and moves on with the batch
func (h *ExtractionHandler) SkipFailed(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	session := h.manager.Session(userID)
	if err := session.SkipFailed(); err != nil {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusAccepted, session.Snapshot())
}

// Background marks the session as running with the app backgrounded
func (h *ExtractionHandler) Background(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	session := h.manager.Session(userID)
	session.Background()
	return c.JSON(http.StatusOK, session.Snapshot())
}

// Foreground clears the backgrounded flag. The response reports whether
// the pipeline finished while the app was away.
func (h *ExtractionHandler) Foreground(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	session := h.manager.Session(userID)
	completedWhileAway := session.Foreground()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"completed_while_away": completedWhileAway,
		"session":              session.Snapshot(),
	})
}

// ListReview returns the reviewable items for the current session
func (h *ExtractionHandler) ListReview(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	session := h.manager.Session(userID)
	items, err := session.Review()
	if err != nil {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
		})
	}

	selected := 0
	for _, item := range items {
		if item.IsSelected {
			selected++
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":    items,
		"total":    len(items),
		"selected": selected,
	})
}

// EditReviewItem applies field overrides to one reviewable item
func (h *ExtractionHandler) EditReviewItem(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid item index",
		})
	}

	var request struct {
		Name        *string  `json:"name"`
		Category    *string  `json:"category"`
		SubCategory *string  `json:"sub_category"`
		Colors      []string `json:"colors"`
	}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request format",
		})
	}

	session := h.manager.Session(userID)
	item, err := session.EditItem(index, pipeline.ReviewEdits{
		Name:        request.Name,
		Category:    request.Category,
		SubCategory: request.SubCategory,
		Colors:      request.Colors,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrNotReviewing) {
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"error": err.Error(),
			})
		}
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, item)
}

// ToggleReviewItem flips one reviewable item's selection
func (h *ExtractionHandler) ToggleReviewItem(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid item index",
		})
	}

	session := h.manager.Session(userID)
	item, err := session.ToggleItem(index)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotReviewing) {
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"error": err.Error(),
			})
		}
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, item)
}

// SelectAllReviewItems sets every reviewable item's selection at once
func (h *ExtractionHandler) SelectAllReviewItems(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var request struct {
		Selected bool `json:"selected"`
	}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request format",
		})
	}

	session := h.manager.Session(userID)
	if err := session.SelectAll(request.Selected); err != nil {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, session.Snapshot())
}

// Import commits the selected review items into the wardrobe
func (h *ExtractionHandler) Import(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	session := h.manager.Session(userID)
	added, err := session.Import()
	if err != nil {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items_added": added,
		"session":     session.Snapshot(),
	})
}

// Reset returns the session to photo selection
func (h *ExtractionHandler) Reset(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	session := h.manager.Session(userID)
	session.Reset()
	return c.JSON(http.StatusOK, session.Snapshot())
}

// ListJobs lists the user's extraction jobs, newest first
func (h *ExtractionHandler) ListJobs(c echo.Context) error {
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

	jobs, total, err := h.jobRepo.ListByUser(userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to list extraction jobs",
		})
	}
	return c.JSON(http.StatusOK, models.NewPaginationResult(jobs, total, page, limit))
}

// GetJob returns one extraction job owned by the user
func (h *ExtractionHandler) GetJob(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid job ID",
		})
	}

	job, err := h.jobRepo.GetByIDForUser(jobID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Extraction job not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to get extraction job",
		})
	}
	return c.JSON(http.StatusOK, job)
}
