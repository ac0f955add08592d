package analyticsRepo

import (
	"context"
	"time"

	"cityportal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Collection names the dashboards aggregate over.
const (
	Appeals       = "appeals"
	Resources     = "resources"
	Services      = "services"
	Documents     = "documents"
	News          = "news"
	Notifications = "notifications"
)

// AnalyticsRepository runs read-only aggregations for dashboards.
type AnalyticsRepository interface {
	Count(ctx context.Context, collection string, match bson.M) (int64, error)
	CountBy(ctx context.Context, collection, field string, match bson.M) ([]models.CountBy, error)
	MonthlyCounts(ctx context.Context, collection string, match bson.M, since time.Time) ([]models.MonthlyCount, error)
	AvgResolutionHours(ctx context.Context) (float64, error)
	LatestAppeals(ctx context.Context, match bson.M, limit int64) ([]models.Appeal, error)
	LatestNews(ctx context.Context, limit int64) ([]models.News, error)
}
