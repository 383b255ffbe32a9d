package notifications

import "github.com/healthshield/mentions-bot/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendDigest(digest *models.Digest) error
}
