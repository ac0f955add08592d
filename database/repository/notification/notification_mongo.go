package notificationRepo

import (
	"context"
	"errors"
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

type MongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo(db *mongo.Database) NotificationRepository {
	repo := &MongoNotificationRepo{coll: db.Collection("notifications")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		utils.GetLogger().Error("failed to create notification indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return database.Insert(ctx, r.coll, n)
}

func (r *MongoNotificationRepo) CreateMany(ctx context.Context, ns []models.Notification) ([]models.Notification, error) {
	if len(ns) == 0 {
		return nil, nil
	}
	ctx, cancel := database.NewContext(ctx, 30*time.Second)
	defer cancel()

	docs := make([]interface{}, len(ns))
	for i := range ns {
		docs[i] = ns[i]
	}
	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return ns, nil
	}
	dup, ok := duplicateIndexes(err)
	if !ok {
		return nil, fmt.Errorf("failed to insert notifications: %w", err)
	}
	created := make([]models.Notification, 0, len(ns)-len(dup))
	for i, n := range ns {
		if !dup[i] {
			created = append(created, n)
		}
	}
	return created, nil
}

// duplicateIndexes returns the positions rejected by the unique id index. ok is false when
// any other write failed.
func duplicateIndexes(err error) (map[int]bool, bool) {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
		return nil, false
	}
	dup := make(map[int]bool, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		if !mongo.IsDuplicateKeyError(we.WriteError) {
			return nil, false
		}
		dup[we.Index] = true
	}
	return dup, true
}

func (r *MongoNotificationRepo) List(ctx context.Context, f models.NotificationFilter) ([]models.Notification, int64, error) {
	filter := bson.M{"userId": f.UserID}
	if f.UnreadOnly {
		filter["read"] = false
	}
	return database.FindPage[models.Notification](ctx, r.coll, filter, f.Page, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *MongoNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := database.NewContext(ctx, database.ReadTimeout)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"userId": userID, "read": false})
}

func (r *MongoNotificationRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	ctx, cancel := database.NewContext(ctx, database.WriteTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true, "readAt": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no notification %s for user %s: %w", id, userID, models.ErrNotFound)
	}
	return nil
}

func (r *MongoNotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	ctx, cancel := database.NewContext(ctx, database.WriteTimeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoNotificationRepo) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := database.NewContext(ctx, database.WriteTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("no notification %s for user %s: %w", id, userID, models.ErrNotFound)
	}
	return nil
}
