// Package analytics assembles the employee and resident dashboards.
package analytics

import (
	"context"
	"fmt"
	"time"

	analyticsRepo "cityportal/database/repository/analytics"
	"cityportal/models"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

const (
	latestLimit     = 5
	residentNews    = 3
	monthsBack      = 12
	maintenanceDays = 7
)

type AnalyticsService interface {
	EmployeeDashboard(ctx context.Context) (*models.EmployeeDashboard, error)
	ResidentDashboard(ctx context.Context, userID string) (*models.ResidentDashboard, error)
}

type DefaultAnalyticsService struct {
	repo analyticsRepo.AnalyticsRepository
	now  func() time.Time
}

func NewDefaultAnalyticsService(repo analyticsRepo.AnalyticsRepository) *DefaultAnalyticsService {
	return &DefaultAnalyticsService{repo: repo, now: time.Now}
}

// monthStart returns the first instant of the month n months before t.
func monthStart(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// fillMonths returns one entry per month from since up to and including now, zero when absent.
func fillMonths(since, now time.Time, counts []models.MonthlyCount) []models.MonthlyCount {
	byMonth := make(map[string]int64, len(counts))
	for _, c := range counts {
		byMonth[c.Month] = c.Count
	}
	var out []models.MonthlyCount
	for m := since; !m.After(now); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		out = append(out, models.MonthlyCount{Month: key, Count: byMonth[key]})
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (s *DefaultAnalyticsService) EmployeeDashboard(ctx context.Context) (*models.EmployeeDashboard, error) {
	now := s.now().UTC()
	since := monthStart(now, monthsBack-1)
	d := &models.EmployeeDashboard{}
	var monthly []models.MonthlyCount

	g, ctx := errgroup.WithContext(ctx)
	countBy := func(dst *[]models.CountBy, coll, field string) {
		g.Go(func() error {
			res, err := s.repo.CountBy(ctx, coll, field, nil)
			if err != nil {
				return fmt.Errorf("%s by %s: %w", coll, field, err)
			}
			*dst = nonNil(res)
			return nil
		})
	}
	count := func(dst *int64, coll string, match bson.M) {
		g.Go(func() error {
			n, err := s.repo.Count(ctx, coll, match)
			if err != nil {
				return fmt.Errorf("count %s: %w", coll, err)
			}
			*dst = n
			return nil
		})
	}

	countBy(&d.AppealsByStatus, analyticsRepo.Appeals, "status")
	countBy(&d.AppealsByCategory, analyticsRepo.Appeals, "category")
	countBy(&d.AppealsByPriority, analyticsRepo.Appeals, "priority")
	countBy(&d.ResourcesByStatus, analyticsRepo.Resources, "status")
	countBy(&d.ResourcesByType, analyticsRepo.Resources, "type")
	countBy(&d.ServicesByStatus, analyticsRepo.Services, "status")

	count(&d.OpenAppeals, analyticsRepo.Appeals, bson.M{"status": bson.M{"$in": bson.A{models.AppealNew, models.AppealInProgress}}})
	count(&d.MaintenanceDueSoon, analyticsRepo.Resources, bson.M{
		"nextMaintenanceAt": bson.M{"$lte": now.AddDate(0, 0, maintenanceDays)},
		"status":            bson.M{"$ne": models.ResourceDecommissioned},
	})
	count(&d.DocumentsTotal, analyticsRepo.Documents, bson.M{})
	count(&d.PublishedNews, analyticsRepo.News, bson.M{"status": models.NewsPublished})

	g.Go(func() error {
		res, err := s.repo.MonthlyCounts(ctx, analyticsRepo.Appeals, nil, since)
		if err != nil {
			return fmt.Errorf("appeals per month: %w", err)
		}
		monthly = res
		return nil
	})
	g.Go(func() error {
		avg, err := s.repo.AvgResolutionHours(ctx)
		if err != nil {
			return fmt.Errorf("average resolution: %w", err)
		}
		d.AvgResolutionHours = avg
		return nil
	})
	g.Go(func() error {
		latest, err := s.repo.LatestAppeals(ctx, nil, latestLimit)
		if err != nil {
			return fmt.Errorf("latest appeals: %w", err)
		}
		d.LatestAppeals = nonNil(latest)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("EmployeeDashboard: %w", err)
	}
	d.AppealsPerMonth = fillMonths(since, now, monthly)
	return d, nil
}

func (s *DefaultAnalyticsService) ResidentDashboard(ctx context.Context, userID string) (*models.ResidentDashboard, error) {
	d := &models.ResidentDashboard{}
	own := bson.M{"submittedBy": userID}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.repo.CountBy(ctx, analyticsRepo.Appeals, "status", own)
		if err != nil {
			return fmt.Errorf("own appeals by status: %w", err)
		}
		d.AppealsByStatus = nonNil(res)
		return nil
	})
	g.Go(func() error {
		res, err := s.repo.LatestAppeals(ctx, own, latestLimit)
		if err != nil {
			return fmt.Errorf("latest own appeals: %w", err)
		}
		d.LatestAppeals = nonNil(res)
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.Count(ctx, analyticsRepo.Notifications, bson.M{"userId": userID, "read": false})
		if err != nil {
			return fmt.Errorf("unread notifications: %w", err)
		}
		d.UnreadNotifications = n
		return nil
	})
	g.Go(func() error {
		res, err := s.repo.LatestNews(ctx, residentNews)
		if err != nil {
			return fmt.Errorf("latest news: %w", err)
		}
		d.LatestNews = nonNil(res)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ResidentDashboard: %w", err)
	}
	return d, nil
}
