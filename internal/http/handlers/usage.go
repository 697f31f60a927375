package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yassinema02/vestiaire-sub000/internal/http/middleware"
	"github.com/yassinema02/vestiaire-sub000/internal/services"
)

// UsageHandler serves background removal usage counters
type UsageHandler struct {
	usageService *services.UsageService
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(usageService *services.UsageService) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// CurrentMonth returns the user's removal count for the current month
func (h *UsageHandler) CurrentMonth(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	summary, err := h.usageService.CurrentMonth(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to get usage",
		})
	}
	return c.JSON(http.StatusOK, summary)
}

// History returns the user's monthly removal counts, newest first
func (h *UsageHandler) History(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	months, _ := strconv.Atoi(c.QueryParam("months"))
	summaries, err := h.usageService.History(userID, months)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to get usage history",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": summaries,
	})
}
