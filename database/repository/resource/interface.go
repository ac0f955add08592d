package resourceRepo

import (
	"context"
	"time"

	"cityportal/models"
)

// ResourceRepository stores municipal resources.
type ResourceRepository interface {
	Create(ctx context.Context, r *models.Resource) error
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	Update(ctx context.Context, r *models.Resource) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f models.ResourceFilter) ([]models.Resource, int64, error)
	// DueForMaintenance returns non-decommissioned resources whose next maintenance is before the given time.
	DueForMaintenance(ctx context.Context, before time.Time) ([]models.Resource, error)
	// MarkMaintenanceNotified records that the reminder for the given due date went out.
	MarkMaintenanceNotified(ctx context.Context, id string, due time.Time) error
}
