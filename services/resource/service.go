// Package resource tracks municipal resources and their maintenance schedule.
package resource

import (
	"context"
	"fmt"
	"strings"
	"time"

	resourceRepo "cityportal/database/repository/resource"
	roleRepo "cityportal/database/repository/role"
	"cityportal/models"

	"github.com/google/uuid"
)

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, in models.NotifyInput) (*models.Notification, error)
}

type ResourceService interface {
	List(ctx context.Context, f models.ResourceFilter) (models.List[models.Resource], error)
	Get(ctx context.Context, id string) (*models.Resource, error)
	Create(ctx context.Context, req models.ResourceRequest) (*models.Resource, error)
	Update(ctx context.Context, id string, req models.ResourceRequest) (*models.Resource, error)
	Delete(ctx context.Context, id string) error
	RecordMaintenance(ctx context.Context, id string, req models.MaintenanceRequest) (*models.Resource, error)
	DueForMaintenance(ctx context.Context, within time.Duration) ([]models.Resource, error)
	// NotifyMaintenanceDue notifies responsible employees of resources due within lookaheadDays
	// and returns how many notifications were sent.
	NotifyMaintenanceDue(ctx context.Context, lookaheadDays int) (int, error)
}

type DefaultResourceService struct {
	repo     resourceRepo.ResourceRepository
	roles    roleRepo.RoleRepository
	notifier Notifier
	now      func() time.Time
}

func NewDefaultResourceService(repo resourceRepo.ResourceRepository, roles roleRepo.RoleRepository, notifier Notifier) *DefaultResourceService {
	return &DefaultResourceService{repo: repo, roles: roles, notifier: notifier, now: time.Now}
}

func (s *DefaultResourceService) List(ctx context.Context, f models.ResourceFilter) (models.List[models.Resource], error) {
	f.Page = f.Page.Normalize()
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return models.List[models.Resource]{}, fmt.Errorf("ListResources: %w", err)
	}
	return models.NewList(items, total, f.Page), nil
}

func (s *DefaultResourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetResource: %w", err)
	}
	return r, nil
}

func (s *DefaultResourceService) validate(ctx context.Context, req models.ResourceRequest) error {
	if req.Name.IsEmpty() {
		return models.NewValidationError("name", "a name in at least one language is required")
	}
	if strings.TrimSpace(req.InventoryNumber) == "" {
		return models.NewValidationError("inventoryNumber", "required")
	}
	if req.ResponsibleID != "" {
		roles, err := s.roles.ListByUser(ctx, req.ResponsibleID)
		if err != nil {
			return fmt.Errorf("failed to check responsible employee: %w", err)
		}
		if !models.IsStaff(roles) {
			return models.NewValidationError("responsibleId", "user is not an employee")
		}
	}
	return nil
}

func apply(r *models.Resource, req models.ResourceRequest) {
	r.Name = req.Name
	r.Type = req.Type
	r.InventoryNumber = strings.TrimSpace(req.InventoryNumber)
	if req.Status != "" {
		r.Status = req.Status
	}
	r.Location = strings.TrimSpace(req.Location)
	r.ResponsibleID = req.ResponsibleID
	r.AcquiredAt = req.AcquiredAt
	r.NextMaintenanceAt = req.NextMaintenanceAt
	r.Value = req.Value
	r.Notes = req.Notes
}

// Create stores a new resource. A duplicate inventory number yields models.ErrAlreadyExists.
func (s *DefaultResourceService) Create(ctx context.Context, req models.ResourceRequest) (*models.Resource, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	r := &models.Resource{ID: uuid.NewString(), Status: models.ResourceActive}
	apply(r, req)
	r.Touch(s.now().UTC())
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("CreateResource: %w", err)
	}
	return r, nil
}

func (s *DefaultResourceService) Update(ctx context.Context, id string, req models.ResourceRequest) (*models.Resource, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateResource: %w", err)
	}
	apply(r, req)
	r.Touch(s.now().UTC())
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("UpdateResource: %w", err)
	}
	return r, nil
}

func (s *DefaultResourceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteResource: %w", err)
	}
	return nil
}

// RecordMaintenance stores a completed maintenance and puts the resource back in service.
func (s *DefaultResourceService) RecordMaintenance(ctx context.Context, id string, req models.MaintenanceRequest) (*models.Resource, error) {
	now := s.now().UTC()
	performed := req.PerformedAt.UTC()
	if performed.IsZero() {
		return nil, models.NewValidationError("performedAt", "required")
	}
	if performed.After(now.Add(time.Minute)) {
		return nil, models.NewValidationError("performedAt", "must not be in the future")
	}
	if req.NextAt != nil && !req.NextAt.After(performed) {
		return nil, models.NewValidationError("nextAt", "must be after performedAt")
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("RecordMaintenance: %w", err)
	}
	if r.Status == models.ResourceDecommissioned {
		return nil, fmt.Errorf("resource %s is decommissioned: %w", r.InventoryNumber, models.ErrInvalidTransition)
	}

	r.LastMaintenanceAt = &performed
	if req.NextAt != nil {
		next := req.NextAt.UTC()
		r.NextMaintenanceAt = &next
	} else {
		r.NextMaintenanceAt = nil
	}
	r.Status = models.ResourceActive
	r.Touch(now)
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("RecordMaintenance: %w", err)
	}
	return r, nil
}

func (s *DefaultResourceService) DueForMaintenance(ctx context.Context, within time.Duration) ([]models.Resource, error) {
	due, err := s.repo.DueForMaintenance(ctx, s.now().UTC().Add(within))
	if err != nil {
		return nil, fmt.Errorf("DueForMaintenance: %w", err)
	}
	if due == nil {
		due = []models.Resource{}
	}
	return due, nil
}
