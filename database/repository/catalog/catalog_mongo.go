package catalogRepo

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

type MongoServiceRepo struct {
	coll *mongo.Collection
}

func NewMongoServiceRepo(db *mongo.Database) ServiceRepository {
	repo := &MongoServiceRepo{coll: db.Collection("services")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("failed to create service indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoServiceRepo) Create(ctx context.Context, s *models.Service) error {
	return database.Insert(ctx, r.coll, s)
}

func (r *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	return database.FindOneByID[models.Service](ctx, r.coll, id)
}

func (r *MongoServiceRepo) Update(ctx context.Context, s *models.Service) error {
	return database.ReplaceByID(ctx, r.coll, s.ID, s)
}

func (r *MongoServiceRepo) Delete(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}

func (r *MongoServiceRepo) List(ctx context.Context, f models.ServiceFilter) ([]models.Service, int64, error) {
	return database.FindPage[models.Service](ctx, r.coll, buildFilter(f), f.Page, bson.D{{Key: "name.en", Value: 1}})
}

func buildFilter(f models.ServiceFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Online != nil {
		filter["online"] = *f.Online
	}
	if f.Search != "" {
		filter["$or"] = database.LocalizedMatch(f.Search, "name", "description")
	}
	return filter
}
