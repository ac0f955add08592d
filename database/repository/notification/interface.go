package notificationRepo

import (
	"context"
	"time"

	"cityportal/models"
)

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// CreateMany stores ns and returns the ones that were new. Rows whose id exists are skipped.
	CreateMany(ctx context.Context, ns []models.Notification) ([]models.Notification, error)
	List(ctx context.Context, f models.NotificationFilter) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}
