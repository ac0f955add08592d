package userRepo

import (
	"context"
	"time"

	"cityportal/models"
)

// UserRepository defines methods for auth identity data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateDevices replaces the signed-in device list.
	UpdateDevices(ctx context.Context, id string, devices []models.Device) error
	// RecordSignIn stores the device list and the sign-in time.
	RecordSignIn(ctx context.Context, id string, devices []models.Device, at time.Time) error
	UpdatePassword(ctx context.Context, id, hash string, devices []models.Device) error
	SetFCMToken(ctx context.Context, id, token string) error
	// PushTokens returns the FCM token of every listed user that has one.
	PushTokens(ctx context.Context, ids []string) (map[string]string, error)
	ListIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}
