package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"cityportal/config"
	"cityportal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// Default operation timeouts.
const (
	ReadTimeout  = 5 * time.Second
	WriteTimeout = 5 * time.Second
	IndexTimeout = 10 * time.Second
)

// InitDB initializes the MongoDB connection.
func InitDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.AppConfig.DatabaseURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("failed to ping MongoDB: %v", err)
	}
	MongoClient = client
	log.Println("Connected to MongoDB successfully!")
}

// Database returns the configured portal database.
func Database() *mongo.Database {
	return MongoClient.Database(config.AppConfig.DatabaseName)
}

// Disconnect closes the global client.
func Disconnect(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	return MongoClient.Disconnect(ctx)
}

// NewContext derives a context bounded by timeout.
func NewContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

// EnsureIndexes creates the given indexes on coll.
func EnsureIndexes(coll *mongo.Collection, indexModels []mongo.IndexModel) error {
	ctx, cancel := NewContext(context.Background(), IndexTimeout)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
	}
	return nil
}

// TranslateError maps driver errors onto model sentinels.
func TranslateError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", msg, models.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", msg, models.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// Regex builds a case-insensitive literal substring match.
func Regex(q string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(strings.TrimSpace(q)), "$options": "i"}
}

// LocalizedMatch matches q against both languages of each localized field.
func LocalizedMatch(q string, fields ...string) bson.A {
	or := bson.A{}
	for _, f := range fields {
		or = append(or, bson.M{f + "." + models.LangEN: Regex(q)}, bson.M{f + "." + models.LangRU: Regex(q)})
	}
	return or
}

// FindPage runs filter on coll and returns one page of decoded results plus the total count.
func FindPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, page models.Page, sort bson.D) ([]T, int64, error) {
	ctx, cancel := NewContext(ctx, ReadTimeout)
	defer cancel()

	page = page.Normalize()
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSkip(page.Offset).SetLimit(page.Limit)
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// FindOneByID decodes the record whose "id" field matches.
func FindOneByID[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	ctx, cancel := NewContext(ctx, ReadTimeout)
	defer cancel()

	var out T
	if err := coll.FindOne(ctx, bson.M{"id": id}).Decode(&out); err != nil {
		return nil, TranslateError(err, "failed to fetch %s %s", coll.Name(), id)
	}
	return &out, nil
}

// ReplaceByID replaces the record whose "id" field matches.
func ReplaceByID(ctx context.Context, coll *mongo.Collection, id string, doc interface{}) error {
	ctx, cancel := NewContext(ctx, WriteTimeout)
	defer cancel()

	res, err := coll.ReplaceOne(ctx, bson.M{"id": id}, doc)
	if err != nil {
		return TranslateError(err, "failed to update %s %s", coll.Name(), id)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no %s found with id %s: %w", coll.Name(), id, models.ErrNotFound)
	}
	return nil
}

// DeleteByID removes the record whose "id" field matches.
func DeleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	ctx, cancel := NewContext(ctx, WriteTimeout)
	defer cancel()

	res, err := coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("no %s found with id %s: %w", coll.Name(), id, models.ErrNotFound)
	}
	return nil
}

// Insert adds doc to coll.
func Insert(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	ctx, cancel := NewContext(ctx, WriteTimeout)
	defer cancel()

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return TranslateError(err, "failed to insert into %s", coll.Name())
	}
	return nil
}

// UpdateByID applies $set fields to the record whose "id" field matches.
func UpdateByID(ctx context.Context, coll *mongo.Collection, id string, set bson.M) error {
	ctx, cancel := NewContext(ctx, WriteTimeout)
	defer cancel()

	res, err := coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return TranslateError(err, "failed to update %s %s", coll.Name(), id)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no %s found with id %s: %w", coll.Name(), id, models.ErrNotFound)
	}
	return nil
}
