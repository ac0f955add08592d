package documentRepo

import (
	"context"

	"cityportal/models"
)

// DocumentRepository stores document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, d *models.Document) error
	Delete(ctx context.Context, id string) error
	// List applies the viewer scoping carried by the filter.
	List(ctx context.Context, f models.DocumentFilter) ([]models.Document, int64, error)
}
