package appeal

import (
	"context"
	"fmt"
	"strings"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/utils"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Assign hands the appeal to an employee and notifies them.
func (s *DefaultAppealService) Assign(ctx context.Context, id, employeeID string) (*models.Appeal, error) {
	roles, err := s.roles.ListByUser(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("AssignAppeal: %w", err)
	}
	if !models.IsStaff(roles) {
		return nil, models.NewValidationError("employeeId", "user is not an employee")
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("AssignAppeal: %w", err)
	}
	if a.Status == models.AppealClosed {
		return nil, fmt.Errorf("appeal %s is closed: %w", a.Number, models.ErrInvalidTransition)
	}
	a.AssignedTo = employeeID
	a.Touch(s.now().UTC())
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("AssignAppeal: %w", err)
	}

	s.notify(ctx, models.NotifyInput{
		UserID: employeeID,
		Type:   models.NotificationAppealAssigned,
		Title:  i18n.Localized(i18n.NotifyAppealAssignedTitle, a.Number),
		Body:   i18n.Localized(i18n.NotifyAppealAssignedBody, a.Title),
		Link:   "/appeals/" + a.ID,
		Data:   map[string]string{"appealId": a.ID},
	})
	return a, nil
}

// UpdateStatus moves the appeal along the workflow and notifies the submitter.
func (s *DefaultAppealService) UpdateStatus(ctx context.Context, id string, req models.AppealStatusRequest) (*models.Appeal, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateAppealStatus: %w", err)
	}
	if !a.Status.CanTransition(req.Status) {
		return nil, fmt.Errorf("appeal %s: %s -> %s: %w", a.Number, a.Status, req.Status, models.ErrInvalidTransition)
	}

	now := s.now().UTC()
	a.Status = req.Status
	if r := strings.TrimSpace(req.Response); r != "" {
		a.Response = r
	}
	switch req.Status {
	case models.AppealResolved:
		a.ResolvedAt = &now
	case models.AppealInProgress:
		a.ResolvedAt = nil
	}
	a.Touch(now)
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("UpdateAppealStatus: %w", err)
	}

	status := string(a.Status)
	s.notify(ctx, models.NotifyInput{
		UserID: a.SubmittedBy,
		Type:   models.NotificationAppealStatus,
		Title:  i18n.Localized(i18n.NotifyAppealStatusTitle, a.Number),
		Body: i18n.LocalizedFunc(i18n.NotifyAppealStatusBody, func(tag language.Tag) []any {
			return []any{a.Title, i18n.T(tag, i18n.StatusPrefix+status)}
		}),
		Link: "/appeals/" + a.ID,
		Data: map[string]string{"appealId": a.ID, "status": status},
	})
	return a, nil
}

func (s *DefaultAppealService) notify(ctx context.Context, in models.NotifyInput) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, in); err != nil {
		utils.GetLogger().Warn("Failed to send appeal notification",
			zap.String("userID", in.UserID), zap.String("type", in.Type), zap.Error(err))
	}
}
