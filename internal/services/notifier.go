package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yassinema02/vestiaire-sub000/internal/repo"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// NotifierService writes in-app notifications. Notification dispatch is
// always best-effort: failures are logged and swallowed so they can never
// affect the pipeline that triggered them.
type NotifierService struct {
	notifications *repo.NotificationRepository
}

// NewNotifierService creates a new notifier service
func NewNotifierService(notifications *repo.NotificationRepository) *NotifierService {
	return &NotifierService{notifications: notifications}
}

// ExtractionCompleted notifies a user that their extraction finished
func (n *NotifierService) ExtractionCompleted(userID, jobID uuid.UUID, itemsDetected int) {
	body := fmt.Sprintf("We found %d items in your photos. Review them to add them to your wardrobe.", itemsDetected)
	if itemsDetected == 0 {
		body = "We could not find any clothing items in your photos."
	}
	n.create(&models.Notification{
		UserID: userID,
		Type:   models.NotificationExtractionCompleted,
		Title:  "Wardrobe extraction finished",
		Body:   body,
		JobID:  &jobID,
	})
}

// ExtractionFailed notifies a user that their extraction failed
func (n *NotifierService) ExtractionFailed(userID, jobID uuid.UUID, reason string) {
	n.create(&models.Notification{
		UserID: userID,
		Type:   models.NotificationExtractionFailed,
		Title:  "Wardrobe extraction failed",
		Body:   reason,
		JobID:  &jobID,
	})
}

// ImportCompleted notifies a user that reviewed items were added
func (n *NotifierService) ImportCompleted(userID, jobID uuid.UUID, added int) {
	n.create(&models.Notification{
		UserID: userID,
		Type:   models.NotificationImportCompleted,
		Title:  "Items added to your wardrobe",
		Body:   fmt.Sprintf("%d items from your extraction are now in your wardrobe.", added),
		JobID:  &jobID,
	})
}

func (n *NotifierService) create(notification *models.Notification) {
	if n == nil || n.notifications == nil {
		return
	}
	if err := n.notifications.Create(notification); err != nil {
		log.Warn().
			Str("user_id", notification.UserID.String()).
			Str("type", string(notification.Type)).
			Err(err).
			Msg("Failed to create notification")
	}
}
