package resourceRepo

import (
	"context"
	"fmt"
	"time"

	"cityportal/database"
	"cityportal/models"
	"cityportal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type MongoResourceRepo struct {
	coll *mongo.Collection
}

func NewMongoResourceRepo(db *mongo.Database) ResourceRepository {
	repo := &MongoResourceRepo{coll: db.Collection("resources")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "inventoryNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "nextMaintenanceAt", Value: 1}}},
		{Keys: bson.D{{Key: "responsibleId", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("failed to create resource indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoResourceRepo) Create(ctx context.Context, res *models.Resource) error {
	return database.Insert(ctx, r.coll, res)
}

func (r *MongoResourceRepo) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	return database.FindOneByID[models.Resource](ctx, r.coll, id)
}

func (r *MongoResourceRepo) Update(ctx context.Context, res *models.Resource) error {
	return database.ReplaceByID(ctx, r.coll, res.ID, res)
}

func (r *MongoResourceRepo) Delete(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}

func (r *MongoResourceRepo) List(ctx context.Context, f models.ResourceFilter) ([]models.Resource, int64, error) {
	return database.FindPage[models.Resource](ctx, r.coll, buildFilter(f), f.Page, bson.D{{Key: "inventoryNumber", Value: 1}})
}

func (r *MongoResourceRepo) DueForMaintenance(ctx context.Context, before time.Time) ([]models.Resource, error) {
	ctx, cancel := database.NewContext(ctx, 30*time.Second)
	defer cancel()

	filter := dueFilter(before)
	opts := options.Find().SetSort(bson.D{{Key: "nextMaintenanceAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance due: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Resource
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode maintenance due: %w", err)
	}
	return out, nil
}

func (r *MongoResourceRepo) MarkMaintenanceNotified(ctx context.Context, id string, due time.Time) error {
	ctx, cancel := database.NewContext(ctx, database.WriteTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"maintenanceNotifiedFor": due}})
	if err != nil {
		return fmt.Errorf("failed to mark maintenance reminder for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no resource found with id %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func dueFilter(before time.Time) bson.M {
	return bson.M{
		"nextMaintenanceAt": bson.M{"$lte": before},
		"status":            bson.M{"$ne": models.ResourceDecommissioned},
	}
}

func buildFilter(f models.ResourceFilter) bson.M {
	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ResponsibleID != "" {
		filter["responsibleId"] = f.ResponsibleID
	}
	if f.Search != "" {
		or := database.LocalizedMatch(f.Search, "name")
		or = append(or, bson.M{"inventoryNumber": database.Regex(f.Search)}, bson.M{"location": database.Regex(f.Search)})
		filter["$or"] = or
	}
	return filter
}
