package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Dias221467/bucket-list/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// blobDocument is the stored shape of a blob.
type blobDocument struct {
	Pathname   string    `bson:"_id"`
	Body       string    `bson:"body"`
	Size       int64     `bson:"size"`
	UploadedAt time.Time `bson:"uploaded_at"`
}

// MongoBlobRepository keeps blobs in a MongoDB collection keyed by pathname.
type MongoBlobRepository struct {
	collection *mongo.Collection
}

// NewMongoBlobRepository creates a new instance of MongoBlobRepository
func NewMongoBlobRepository(db *mongo.Database) *MongoBlobRepository {
	return &MongoBlobRepository{
		collection: db.Collection("blobs"),
	}
}

// List fetches blob metadata whose pathname starts with prefix
func (r *MongoBlobRepository) List(ctx context.Context, prefix string, limit int) ([]BlobInfo, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["_id"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"body": 0})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("prefix", prefix).Error("Failed to list blobs")
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	defer cursor.Close(ctx)

	blobs := []BlobInfo{}
	if err := cursor.All(ctx, &blobs); err != nil {
		logger.Log.WithError(err).Error("Failed to decode blobs")
		return nil, fmt.Errorf("failed to decode blobs: %w", err)
	}

	logger.Log.WithField("prefix", prefix).WithField("count", len(blobs)).Debug("Blobs listed")
	return blobs, nil
}

// Put stores body under pathname, replacing any previous version
func (r *MongoBlobRepository) Put(ctx context.Context, pathname string, body []byte) error {
	if err := validatePathname(pathname); err != nil {
		return err
	}

	doc := blobDocument{
		Pathname:   pathname,
		Body:       string(body),
		Size:       int64(len(body)),
		UploadedAt: time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": pathname}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		logger.Log.WithError(err).WithField("pathname", pathname).Error("Failed to put blob")
		return fmt.Errorf("failed to put blob: %w", err)
	}

	logger.Log.WithField("pathname", pathname).WithField("size", doc.Size).Info("Blob stored successfully")
	return nil
}

// Fetch returns the body stored under pathname
func (r *MongoBlobRepository) Fetch(ctx context.Context, pathname string) ([]byte, error) {
	var doc blobDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": pathname}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBlobNotFound
		}
		logger.Log.WithError(err).WithField("pathname", pathname).Error("Failed to fetch blob")
		return nil, fmt.Errorf("failed to fetch blob: %w", err)
	}
	return []byte(doc.Body), nil
}

// Delete removes the blob stored under pathname
func (r *MongoBlobRepository) Delete(ctx context.Context, pathname string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": pathname})
	if err != nil {
		logger.Log.WithError(err).WithField("pathname", pathname).Error("Failed to delete blob")
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	logger.Log.WithField("pathname", pathname).Info("Blob deleted successfully")
	return nil
}
