package roleRepo

import (
	"context"
	"errors"
	"fmt"

	"cityportal/database"
	"cityportal/models"
	"cityportal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type MongoRoleRepo struct {
	coll *mongo.Collection
}

func NewMongoRoleRepo(db *mongo.Database) RoleRepository {
	repo := &MongoRoleRepo{coll: db.Collection("user_roles")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "role", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("failed to create role indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoRoleRepo) Add(ctx context.Context, ur *models.UserRole) error {
	return database.Insert(ctx, r.coll, ur)
}

func (r *MongoRoleRepo) Remove(ctx context.Context, userID string, role models.Role) error {
	ctx, cancel := database.NewContext(ctx, database.WriteTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"userId": userID, "role": role})
	if err != nil {
		return fmt.Errorf("failed to revoke role %s from %s: %w", role, userID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user %s has no role %s: %w", userID, role, models.ErrNotFound)
	}
	return nil
}

// RemoveKeepingOne deletes first and re-counts afterwards. Concurrent revokes each see the
// others' deletes, so at least one of them restores its row and the role never ends up empty.
func (r *MongoRoleRepo) RemoveKeepingOne(ctx context.Context, userID string, role models.Role) error {
	ctx, cancel := database.NewContext(ctx, database.WriteTimeout)
	defer cancel()

	var removed models.UserRole
	err := r.coll.FindOneAndDelete(ctx, bson.M{"userId": userID, "role": role}).Decode(&removed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("user %s has no role %s: %w", userID, role, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to revoke role %s from %s: %w", role, userID, err)
	}

	left, err := r.coll.CountDocuments(ctx, bson.M{"role": role})
	if err == nil && left > 0 {
		return nil
	}
	if _, insErr := r.coll.InsertOne(ctx, removed); insErr != nil {
		utils.GetLogger().Error("failed to restore role after guarded revoke",
			zap.String("userID", userID), zap.String("role", string(role)), zap.Error(insErr))
		return fmt.Errorf("failed to restore role %s of %s: %w", role, userID, insErr)
	}
	if err != nil {
		return fmt.Errorf("failed to count role %s: %w", role, err)
	}
	return fmt.Errorf("role %s of %s: %w", role, userID, ErrLastHolder)
}

func (r *MongoRoleRepo) ListByUser(ctx context.Context, userID string) ([]models.Role, error) {
	ctx, cancel := database.NewContext(ctx, database.ReadTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles of %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var rows []models.UserRole
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode roles of %s: %w", userID, err)
	}
	roles := make([]models.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.Role)
	}
	return roles, nil
}

func (r *MongoRoleRepo) UserIDs(ctx context.Context, roles ...models.Role) ([]string, error) {
	ctx, cancel := database.NewContext(ctx, database.ReadTimeout)
	defer cancel()

	values, err := r.coll.Distinct(ctx, "userId", bson.M{"role": bson.M{"$in": roles}})
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}
