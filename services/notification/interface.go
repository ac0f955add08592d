package notification

import (
	"context"

	"cityportal/models"

	"firebase.google.com/go/v4/messaging"
)

// NotificationService manages user notification feeds.
type NotificationService interface {
	// Notify persists a notification, pushes it to live subscribers and sends an FCM push when possible.
	Notify(ctx context.Context, in models.NotifyInput) (*models.Notification, error)
	List(ctx context.Context, f models.NotificationFilter) (models.List[models.Notification], error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	UpdatePushToken(ctx context.Context, userID, token string) error
	// Broadcast validates the request and queues the fan-out.
	Broadcast(ctx context.Context, req models.BroadcastRequest) error
	// FanOut delivers a broadcast to its audience and returns the number of recipients.
	FanOut(ctx context.Context, p models.BroadcastPayload) (int, error)
}

// PushSender sends FCM messages. *messaging.Client satisfies it.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// BroadcastQueue hands broadcast payloads to the background worker.
type BroadcastQueue interface {
	EnqueueBroadcast(ctx context.Context, p models.BroadcastPayload) error
}
