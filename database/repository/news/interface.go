package newsRepo

import (
	"context"

	"cityportal/models"
)

// NewsRepository stores news items.
type NewsRepository interface {
	Create(ctx context.Context, n *models.News) error
	GetByID(ctx context.Context, id string) (*models.News, error)
	Update(ctx context.Context, n *models.News) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f models.NewsFilter) ([]models.News, int64, error)
}
