package catalogRepo

import (
	"context"

	"cityportal/models"
)

// ServiceRepository stores the municipal services catalog.
type ServiceRepository interface {
	Create(ctx context.Context, s *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	Update(ctx context.Context, s *models.Service) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f models.ServiceFilter) ([]models.Service, int64, error)
}
