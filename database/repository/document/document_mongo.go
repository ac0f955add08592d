package documentRepo

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

type MongoDocumentRepo struct {
	coll *mongo.Collection
}

func NewMongoDocumentRepo(db *mongo.Database) DocumentRepository {
	repo := &MongoDocumentRepo{coll: db.Collection("documents")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "visibility", Value: 1}}},
		{Keys: bson.D{{Key: "appealId", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("failed to create document indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoDocumentRepo) Create(ctx context.Context, d *models.Document) error {
	return database.Insert(ctx, r.coll, d)
}

func (r *MongoDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return database.FindOneByID[models.Document](ctx, r.coll, id)
}

func (r *MongoDocumentRepo) Update(ctx context.Context, d *models.Document) error {
	return database.ReplaceByID(ctx, r.coll, d.ID, d)
}

func (r *MongoDocumentRepo) Delete(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}

func (r *MongoDocumentRepo) List(ctx context.Context, f models.DocumentFilter) ([]models.Document, int64, error) {
	return database.FindPage[models.Document](ctx, r.coll, buildFilter(f), f.Page, bson.D{{Key: "createdAt", Value: -1}})
}

// visibilityScope restricts results to what the viewer may see.
func visibilityScope(viewerID string, staff bool) bson.M {
	switch {
	case staff:
		return bson.M{"$or": bson.A{
			bson.M{"visibility": bson.M{"$ne": models.VisibilityPrivate}},
			bson.M{"appealId": bson.M{"$nin": bson.A{nil, ""}}},
			bson.M{"ownerId": viewerID},
		}}
	case viewerID != "":
		return bson.M{"$or": bson.A{
			bson.M{"visibility": models.VisibilityPublic},
			bson.M{"ownerId": viewerID},
		}}
	default:
		return bson.M{"visibility": models.VisibilityPublic}
	}
}

func buildFilter(f models.DocumentFilter) bson.M {
	and := bson.A{visibilityScope(f.ViewerID, f.ViewerIsStaff)}
	if f.Category != "" {
		and = append(and, bson.M{"category": f.Category})
	}
	if f.Visibility != "" {
		and = append(and, bson.M{"visibility": f.Visibility})
	}
	if f.OwnerID != "" {
		and = append(and, bson.M{"ownerId": f.OwnerID})
	}
	if f.AppealID != "" {
		and = append(and, bson.M{"appealId": f.AppealID})
	}
	return bson.M{"$and": and}
}
