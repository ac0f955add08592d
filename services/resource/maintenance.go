package resource

import (
	"context"
	"time"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/utils"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const day = 24 * time.Hour

// NotifyMaintenanceDue reminds responsible employees once per due date.
func (s *DefaultResourceService) NotifyMaintenanceDue(ctx context.Context, lookaheadDays int) (int, error) {
	logger := utils.GetLogger()
	if lookaheadDays <= 0 {
		lookaheadDays = 7
	}
	due, err := s.DueForMaintenance(ctx, time.Duration(lookaheadDays)*day)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if r.ResponsibleID == "" {
			logger.Info("Maintenance due but nobody is responsible", zap.String("inventory", r.InventoryNumber))
			continue
		}
		if r.MaintenanceNotifiedFor != nil && r.MaintenanceNotifiedFor.Equal(*r.NextMaintenanceAt) {
			continue
		}
		date := r.NextMaintenanceAt.Format("2006-01-02")
		_, err := s.notifier.Notify(ctx, models.NotifyInput{
			UserID: r.ResponsibleID,
			Type:   models.NotificationMaintenanceDue,
			Title: i18n.LocalizedFunc(i18n.NotifyMaintenanceTitle, func(tag language.Tag) []any {
				return []any{r.Name.Pick(i18n.Code(tag))}
			}),
			Body: i18n.Localized(i18n.NotifyMaintenanceBody, r.InventoryNumber, date),
			Link: "/resources/" + r.ID,
			Data: map[string]string{"resourceId": r.ID, "dueAt": date},
		})
		if err != nil {
			logger.Warn("Failed to notify maintenance due", zap.String("resourceID", r.ID), zap.Error(err))
			continue
		}
		if err := s.repo.MarkMaintenanceNotified(ctx, r.ID, *r.NextMaintenanceAt); err != nil {
			logger.Warn("Failed to record maintenance reminder", zap.String("resourceID", r.ID), zap.Error(err))
		}
		sent++
	}
	logger.Info("Maintenance scan finished", zap.Int("due", len(due)), zap.Int("notified", sent))
	return sent, nil
}
