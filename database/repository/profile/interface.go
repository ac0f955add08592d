package profileRepo

import (
	"context"

	"cityportal/models"
)

// ProfileRepository stores portal profiles keyed by user id.
type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	SetAvatar(ctx context.Context, id string, avatar models.FileRef) error
	SetUserType(ctx context.Context, id, userType string) error
}
