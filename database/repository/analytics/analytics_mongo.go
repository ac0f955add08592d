package analyticsRepo

import (
	"context"
	"fmt"
	"time"

	"cityportal/database"
	"cityportal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const aggregateTimeout = 15 * time.Second

type MongoAnalyticsRepo struct {
	db *mongo.Database
}

func NewMongoAnalyticsRepo(db *mongo.Database) AnalyticsRepository {
	return &MongoAnalyticsRepo{db: db}
}

func (r *MongoAnalyticsRepo) Count(ctx context.Context, collection string, match bson.M) (int64, error) {
	ctx, cancel := database.NewContext(ctx, aggregateTimeout)
	defer cancel()
	if match == nil {
		match = bson.M{}
	}
	n, err := r.db.Collection(collection).CountDocuments(ctx, match)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func (r *MongoAnalyticsRepo) CountBy(ctx context.Context, collection, field string, match bson.M) ([]models.CountBy, error) {
	var out []models.CountBy
	if err := r.aggregate(ctx, collection, countByPipeline(field, match), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoAnalyticsRepo) MonthlyCounts(ctx context.Context, collection string, match bson.M, since time.Time) ([]models.MonthlyCount, error) {
	var out []models.MonthlyCount
	if err := r.aggregate(ctx, collection, monthlyPipeline(match, since), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoAnalyticsRepo) AvgResolutionHours(ctx context.Context) (float64, error) {
	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := r.aggregate(ctx, Appeals, resolutionPipeline(), &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Avg, nil
}

func (r *MongoAnalyticsRepo) LatestAppeals(ctx context.Context, match bson.M, limit int64) ([]models.Appeal, error) {
	ctx, cancel := database.NewContext(ctx, aggregateTimeout)
	defer cancel()
	if match == nil {
		match = bson.M{}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.db.Collection(Appeals).Find(ctx, match, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest appeals: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Appeal
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoAnalyticsRepo) LatestNews(ctx context.Context, limit int64) ([]models.News, error) {
	ctx, cancel := database.NewContext(ctx, aggregateTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.db.Collection(News).Find(ctx, bson.M{"status": models.NewsPublished}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest news: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.News
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoAnalyticsRepo) aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, out interface{}) error {
	ctx, cancel := database.NewContext(ctx, aggregateTimeout)
	defer cancel()

	cursor, err := r.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to aggregate %s: %w", collection, err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s aggregate: %w", collection, err)
	}
	return nil
}

func countByPipeline(field string, match bson.M) mongo.Pipeline {
	if match == nil {
		match = bson.M{}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func monthlyPipeline(match bson.M, since time.Time) mongo.Pipeline {
	m := bson.M{}
	for k, v := range match {
		m[k] = v
	}
	m["createdAt"] = bson.M{"$gte": since}
	return mongo.Pipeline{
		{{Key: "$match", Value: m}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$createdAt"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

func resolutionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resolvedAt": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": bson.M{"$divide": bson.A{
				bson.M{"$subtract": bson.A{"$resolvedAt", "$createdAt"}},
				3600000,
			}}},
		}}},
	}
}
