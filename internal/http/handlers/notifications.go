package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/yassinema02/vestiaire-sub000/internal/http/middleware"
	"github.com/yassinema02/vestiaire-sub000/internal/repo"
)

// NotificationHandler serves the in-app notification feed
type NotificationHandler struct {
	notificationRepo *repo.NotificationRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: repo.NewNotificationRepository(db),
	}
}

// List returns the user's notifications, newest first. Pass
// unread_only=true to hide read ones.
func (h *NotificationHandler) List(c echo.Context) error {
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

	unreadOnly := c.QueryParam("unread_only") == "true"

	notifications, total, err := h.notificationRepo.ListByUser(userID, unreadOnly, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to list notifications",
		})
	}

	unread, err := h.notificationRepo.CountUnread(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to count unread notifications",
		})
	}

	totalPages := (int(total) + limit - 1) / limit
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":         notifications,
		"total":        total,
		"unread_count": unread,
		"page":         page,
		"per_page":     limit,
		"total_pages":  totalPages,
	})
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid notification ID",
		})
	}

	if err := h.notificationRepo.MarkRead(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Notification not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to mark notification read",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Notification marked read",
	})
}

// MarkAllRead marks every unread notification for the user as read
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.notificationRepo.MarkAllRead(userID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to mark notifications read",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "All notifications marked read",
	})
}
