package appealRepo

import (
	"context"

	"cityportal/models"
)

// AppealRepository stores appeals.
type AppealRepository interface {
	Create(ctx context.Context, a *models.Appeal) error
	GetByID(ctx context.Context, id string) (*models.Appeal, error)
	Update(ctx context.Context, a *models.Appeal) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f models.AppealFilter) ([]models.Appeal, int64, error)
}
