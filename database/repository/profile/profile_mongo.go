package profileRepo

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

type MongoProfileRepo struct {
	coll *mongo.Collection
}

func NewMongoProfileRepo(db *mongo.Database) ProfileRepository {
	repo := &MongoProfileRepo{coll: db.Collection("profiles")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userType", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("failed to create profile indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	return database.Insert(ctx, r.coll, p)
}

func (r *MongoProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return database.FindOneByID[models.Profile](ctx, r.coll, id)
}

func (r *MongoProfileRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	ctx, cancel := database.NewContext(ctx, database.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Profile
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return out, nil
}

func (r *MongoProfileRepo) Update(ctx context.Context, p *models.Profile) error {
	return database.ReplaceByID(ctx, r.coll, p.ID, p)
}

func (r *MongoProfileRepo) SetAvatar(ctx context.Context, id string, avatar models.FileRef) error {
	return database.UpdateByID(ctx, r.coll, id, bson.M{"avatar": avatar, "updatedAt": time.Now()})
}

func (r *MongoProfileRepo) SetUserType(ctx context.Context, id, userType string) error {
	return database.UpdateByID(ctx, r.coll, id, bson.M{"userType": userType, "updatedAt": time.Now()})
}
