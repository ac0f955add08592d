package userRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cityportal/database"
	"cityportal/models"
	"cityportal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	repo := &MongoUserRepo{coll: db.Collection("users")}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create user indexes", zap.Error(err))
	}
	return repo
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoUserRepo) ensureIndexes() error {
	return database.EnsureIndexes(r.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}

func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return database.Insert(ctx, r.coll, user)
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return database.FindOneByID[models.User](ctx, r.coll, id)
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := database.NewContext(ctx, database.ReadTimeout)
	defer cancel()

	var user models.User
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, database.TranslateError(err, "failed to fetch user with email %s", email)
	}
	return &user, nil
}

func (r *MongoUserRepo) UpdateDevices(ctx context.Context, id string, devices []models.Device) error {
	return database.UpdateByID(ctx, r.coll, id, bson.M{"devices": devices, "updatedAt": time.Now()})
}

func (r *MongoUserRepo) RecordSignIn(ctx context.Context, id string, devices []models.Device, at time.Time) error {
	return database.UpdateByID(ctx, r.coll, id, bson.M{"devices": devices, "lastSignInAt": at, "updatedAt": at})
}

func (r *MongoUserRepo) UpdatePassword(ctx context.Context, id, hash string, devices []models.Device) error {
	return database.UpdateByID(ctx, r.coll, id, bson.M{"passwordHash": hash, "devices": devices, "updatedAt": time.Now()})
}

func (r *MongoUserRepo) SetFCMToken(ctx context.Context, id, token string) error {
	return database.UpdateByID(ctx, r.coll, id, bson.M{"fcmToken": token, "updatedAt": time.Now()})
}

func (r *MongoUserRepo) PushTokens(ctx context.Context, ids []string) (map[string]string, error) {
	ctx, cancel := database.NewContext(ctx, database.ReadTimeout)
	defer cancel()

	filter := bson.M{"id": bson.M{"$in": ids}, "fcmToken": bson.M{"$nin": bson.A{nil, ""}}}
	opts := options.Find().SetProjection(bson.M{"id": 1, "fcmToken": 1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch push tokens: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode push tokens: %w", err)
	}
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.ID] = u.FCMToken
	}
	return out, nil
}

func (r *MongoUserRepo) ListIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := database.NewContext(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"id": 1})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var row struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cursor.Err()
}

func (r *MongoUserRepo) Delete(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}
