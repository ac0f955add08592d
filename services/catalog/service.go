// Package catalog manages the municipal services catalog.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	catalogRepo "cityportal/database/repository/catalog"
	"cityportal/models"
	"cityportal/utils"

	"github.com/google/uuid"
)

const cachePrefix = "catalog:"

type CatalogService interface {
	// List returns catalog entries; an empty status filter means active entries only.
	List(ctx context.Context, f models.ServiceFilter) (models.List[models.Service], error)
	Get(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, req models.ServiceRequest) (*models.Service, error)
	Update(ctx context.Context, id string, req models.ServiceRequest) (*models.Service, error)
	Delete(ctx context.Context, id string) error
}

type DefaultCatalogService struct {
	repo  catalogRepo.ServiceRepository
	cache utils.JSONCache
	ttl   time.Duration
	now   func() time.Time
}

// NewDefaultCatalogService wires the service. cache may be nil to disable caching.
func NewDefaultCatalogService(repo catalogRepo.ServiceRepository, cache utils.JSONCache, ttl time.Duration) *DefaultCatalogService {
	return &DefaultCatalogService{repo: repo, cache: cache, ttl: ttl, now: time.Now}
}

func listKey(f models.ServiceFilter) string {
	online := "any"
	if f.Online != nil {
		online = fmt.Sprint(*f.Online)
	}
	return fmt.Sprintf("%slist:%s|%s|%s|%s|%d|%d", cachePrefix,
		f.Category, f.Status, online, strings.ToLower(strings.TrimSpace(f.Search)), f.Limit, f.Offset)
}

func itemKey(id string) string { return cachePrefix + "item:" + id }

func (s *DefaultCatalogService) List(ctx context.Context, f models.ServiceFilter) (models.List[models.Service], error) {
	f.Page = f.Page.Normalize()
	if f.Status == "" {
		f.Status = models.ServiceActive
	}
	return utils.Cached(ctx, s.cache, listKey(f), s.ttl, func() (models.List[models.Service], error) {
		items, total, err := s.repo.List(ctx, f)
		if err != nil {
			return models.List[models.Service]{}, fmt.Errorf("ListServices: %w", err)
		}
		return models.NewList(items, total, f.Page), nil
	})
}

func (s *DefaultCatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	return utils.Cached(ctx, s.cache, itemKey(id), s.ttl, func() (*models.Service, error) {
		svc, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("GetService: %w", err)
		}
		return svc, nil
	})
}

func validate(req models.ServiceRequest) error {
	if req.Name.IsEmpty() {
		return models.NewValidationError("name", "a name in at least one language is required")
	}
	for _, d := range req.RequiredDocuments {
		if d.IsEmpty() {
			return models.NewValidationError("requiredDocuments", "entries must not be blank")
		}
	}
	return nil
}

func apply(svc *models.Service, req models.ServiceRequest) {
	svc.Name = req.Name
	svc.Description = req.Description
	svc.Category = strings.TrimSpace(req.Category)
	svc.Department = strings.TrimSpace(req.Department)
	svc.ProcessingDays = req.ProcessingDays
	svc.Fee = req.Fee
	svc.RequiredDocuments = req.RequiredDocuments
	svc.Online = req.Online
	if req.Status != "" {
		svc.Status = req.Status
	}
}

func (s *DefaultCatalogService) Create(ctx context.Context, req models.ServiceRequest) (*models.Service, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	svc := &models.Service{ID: uuid.NewString(), Status: models.ServiceActive}
	apply(svc, req)
	svc.Touch(s.now().UTC())
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("CreateService: %w", err)
	}
	utils.Invalidate(ctx, s.cache, cachePrefix)
	return svc, nil
}

func (s *DefaultCatalogService) Update(ctx context.Context, id string, req models.ServiceRequest) (*models.Service, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateService: %w", err)
	}
	apply(svc, req)
	svc.Touch(s.now().UTC())
	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("UpdateService: %w", err)
	}
	utils.Invalidate(ctx, s.cache, cachePrefix)
	return svc, nil
}

func (s *DefaultCatalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteService: %w", err)
	}
	utils.Invalidate(ctx, s.cache, cachePrefix)
	return nil
}
