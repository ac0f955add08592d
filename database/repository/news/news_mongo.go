package newsRepo

import (
	"context"

	"cityportal/database"
	"cityportal/models"
	"cityportal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type MongoNewsRepo struct {
	coll *mongo.Collection
}

func NewMongoNewsRepo(db *mongo.Database) NewsRepository {
	repo := &MongoNewsRepo{coll: db.Collection("news")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "publishedAt", Value: -1}}},
	}); err != nil {
		utils.GetLogger().Error("failed to create news indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoNewsRepo) Create(ctx context.Context, n *models.News) error {
	return database.Insert(ctx, r.coll, n)
}

func (r *MongoNewsRepo) GetByID(ctx context.Context, id string) (*models.News, error) {
	return database.FindOneByID[models.News](ctx, r.coll, id)
}

func (r *MongoNewsRepo) Update(ctx context.Context, n *models.News) error {
	return database.ReplaceByID(ctx, r.coll, n.ID, n)
}

func (r *MongoNewsRepo) Delete(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}

func (r *MongoNewsRepo) List(ctx context.Context, f models.NewsFilter) ([]models.News, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	sort := bson.D{{Key: "publishedAt", Value: -1}, {Key: "createdAt", Value: -1}}
	return database.FindPage[models.News](ctx, r.coll, filter, f.Page, sort)
}
