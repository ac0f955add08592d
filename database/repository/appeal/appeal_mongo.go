package appealRepo

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

type MongoAppealRepo struct {
	coll *mongo.Collection
}

func NewMongoAppealRepo(db *mongo.Database) AppealRepository {
	repo := &MongoAppealRepo{coll: db.Collection("appeals")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "submittedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("failed to create appeal indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoAppealRepo) Create(ctx context.Context, a *models.Appeal) error {
	return database.Insert(ctx, r.coll, a)
}

func (r *MongoAppealRepo) GetByID(ctx context.Context, id string) (*models.Appeal, error) {
	return database.FindOneByID[models.Appeal](ctx, r.coll, id)
}

func (r *MongoAppealRepo) Update(ctx context.Context, a *models.Appeal) error {
	return database.ReplaceByID(ctx, r.coll, a.ID, a)
}

func (r *MongoAppealRepo) Delete(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}

func (r *MongoAppealRepo) List(ctx context.Context, f models.AppealFilter) ([]models.Appeal, int64, error) {
	return database.FindPage[models.Appeal](ctx, r.coll, buildFilter(f), f.Page, bson.D{{Key: "createdAt", Value: -1}})
}

func buildFilter(f models.AppealFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.AssignedTo != "" {
		filter["assignedTo"] = f.AssignedTo
	}
	if f.SubmittedBy != "" {
		filter["submittedBy"] = f.SubmittedBy
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"number": database.Regex(f.Search)},
			bson.M{"title": database.Regex(f.Search)},
			bson.M{"description": database.Regex(f.Search)},
			bson.M{"address": database.Regex(f.Search)},
		}
	}
	return filter
}
