// Package appeal implements the resident appeal workflow.
package appeal

import (
	"context"
	"fmt"
	"strings"
	"time"

	appealRepo "cityportal/database/repository/appeal"
	roleRepo "cityportal/database/repository/role"
	"cityportal/models"

	"github.com/google/uuid"
)

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, in models.NotifyInput) (*models.Notification, error)
}

type AppealService interface {
	Create(ctx context.Context, userID string, req models.AppealCreateRequest) (*models.Appeal, error)
	ListMine(ctx context.Context, userID string, f models.AppealFilter) (models.List[models.Appeal], error)
	// Withdraw removes a resident's own appeal while it is still new.
	Withdraw(ctx context.Context, userID, id string) error
	List(ctx context.Context, f models.AppealFilter) (models.List[models.Appeal], error)
	Get(ctx context.Context, viewer models.Viewer, id string) (*models.Appeal, error)
	Assign(ctx context.Context, id, employeeID string) (*models.Appeal, error)
	UpdateStatus(ctx context.Context, id string, req models.AppealStatusRequest) (*models.Appeal, error)
	Delete(ctx context.Context, id string) error
}

type DefaultAppealService struct {
	repo     appealRepo.AppealRepository
	roles    roleRepo.RoleRepository
	notifier Notifier
	now      func() time.Time
}

func NewDefaultAppealService(repo appealRepo.AppealRepository, roles roleRepo.RoleRepository, notifier Notifier) *DefaultAppealService {
	return &DefaultAppealService{repo: repo, roles: roles, notifier: notifier, now: time.Now}
}

// newNumber builds the human readable appeal number, e.g. AP-20240301-1a2b3c.
func newNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("AP-%s-%s", now.Format("20060102"), suffix)
}

func (s *DefaultAppealService) Create(ctx context.Context, userID string, req models.AppealCreateRequest) (*models.Appeal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, models.NewValidationError("title", "must not be blank")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, models.NewValidationError("description", "must not be blank")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now().UTC()
	a := &models.Appeal{
		ID:          uuid.NewString(),
		Number:      newNumber(now),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Priority:    priority,
		Status:      models.AppealNew,
		Address:     strings.TrimSpace(req.Address),
		SubmittedBy: userID,
		Attachments: req.Attachments,
	}
	a.Touch(now)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("CreateAppeal: %w", err)
	}
	return a, nil
}

func (s *DefaultAppealService) list(ctx context.Context, f models.AppealFilter) (models.List[models.Appeal], error) {
	f.Page = f.Page.Normalize()
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return models.List[models.Appeal]{}, fmt.Errorf("ListAppeals: %w", err)
	}
	return models.NewList(items, total, f.Page), nil
}

func (s *DefaultAppealService) ListMine(ctx context.Context, userID string, f models.AppealFilter) (models.List[models.Appeal], error) {
	f.SubmittedBy = userID
	return s.list(ctx, f)
}

func (s *DefaultAppealService) List(ctx context.Context, f models.AppealFilter) (models.List[models.Appeal], error) {
	return s.list(ctx, f)
}

// Get returns the appeal. Residents only see their own; other appeals look missing to them.
func (s *DefaultAppealService) Get(ctx context.Context, viewer models.Viewer, id string) (*models.Appeal, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAppeal: %w", err)
	}
	if !viewer.IsStaff() && a.SubmittedBy != viewer.UserID {
		return nil, fmt.Errorf("appeal %s: %w", id, models.ErrNotFound)
	}
	return a, nil
}

func (s *DefaultAppealService) Withdraw(ctx context.Context, userID, id string) error {
	a, err := s.Get(ctx, models.Viewer{UserID: userID}, id)
	if err != nil {
		return err
	}
	if a.Status != models.AppealNew {
		return fmt.Errorf("appeal %s is %s: %w", a.Number, a.Status, models.ErrInvalidTransition)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("WithdrawAppeal: %w", err)
	}
	return nil
}

func (s *DefaultAppealService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteAppeal: %w", err)
	}
	return nil
}
