// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
)

// MongoStore implements RecipeStore on a MongoDB collection.
//
// The collection layout matches the original smart_recipe_db database:
// recipe titles live in the bson field "name" and CSV provenance in
// "_csv_id". See models.Recipe for the full field mapping.
type MongoStore struct {
	client       *mongo.Client
	coll         *mongo.Collection
	dbName       string
	collName     string
	queryTimeout time.Duration
}

// Compile-time interface check.
var _ RecipeStore = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and returns a store bound to the
// configured database and collection. The connection is verified with a
// ping before returning.
func NewMongoStore(ctx context.Context, cfg *config.MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		// Best-effort disconnect; the connect already failed
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &MongoStore{
		client:       client,
		coll:         client.Database(cfg.Database).Collection(cfg.Collection),
		dbName:       cfg.Database,
		collName:     cfg.Collection,
		queryTimeout: cfg.QueryTimeout,
	}

	logging.Info().
		Str("database", cfg.Database).
		Str("collection", cfg.Collection).
		Msg("Connected to MongoDB")

	return s, nil
}

// opCtx applies the configured query timeout when the caller's context
// carries no deadline of its own.
func (s *MongoStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Insert stores a single recipe and returns its hex ObjectID.
func (s *MongoStore) Insert(ctx context.Context, recipe *models.Recipe) (string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if recipe.ID.IsZero() {
		recipe.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}
	recipe.UpdatedAt = now

	start := time.Now()
	_, err := s.coll.InsertOne(ctx, recipe)
	metrics.RecordMongoQuery("insert", s.collName, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to insert recipe: %w", err)
	}

	return recipe.ID.Hex(), nil
}

// InsertBatch stores recipes in one unordered bulk write. A document that
// fails (e.g. duplicate key) does not abort the rest; the returned count
// reflects what was actually inserted.
func (s *MongoStore) InsertBatch(ctx context.Context, recipes []models.Recipe) (int, error) {
	if len(recipes) == 0 {
		return 0, nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(recipes))
	for i := range recipes {
		if recipes[i].ID.IsZero() {
			recipes[i].ID = primitive.NewObjectID()
		}
		if recipes[i].CreatedAt.IsZero() {
			recipes[i].CreatedAt = now
		}
		recipes[i].UpdatedAt = now
		docs = append(docs, recipes[i])
	}

	start := time.Now()
	result, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	metrics.RecordMongoQuery("insert_batch", s.collName, time.Since(start), err)

	inserted := 0
	if result != nil {
		inserted = len(result.InsertedIDs)
	}
	if err != nil {
		// Bulk write errors still carry the successful subset
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			return inserted, fmt.Errorf("batch insert partially failed: %w", err)
		}
		return inserted, fmt.Errorf("failed to insert batch: %w", err)
	}

	return inserted, nil
}

// GetByID fetches a recipe by its hex ObjectID.
func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	var recipe models.Recipe
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&recipe)
	metrics.RecordMongoQuery("find_one", s.collName, time.Since(start), err)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch recipe %s: %w", id, err)
	}

	return &recipe, nil
}

// List returns a page of recipes, newest first, plus the total count.
// Sorting is on _id descending: the ObjectID embeds the creation
// timestamp, so this orders correctly even for documents imported
// without a created_at field.
func (s *MongoStore) List(ctx context.Context, limit, offset int) ([]models.Recipe, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	total, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		metrics.RecordMongoQuery("list", s.collName, time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := s.coll.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		metrics.RecordMongoQuery("list", s.collName, time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer cur.Close(ctx)

	recipes := make([]models.Recipe, 0, limit)
	for cur.Next(ctx) {
		var r models.Recipe
		if err := cur.Decode(&r); err != nil {
			metrics.RecordMongoQuery("list", s.collName, time.Since(start), err)
			return nil, 0, fmt.Errorf("failed to decode recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	err = cur.Err()
	metrics.RecordMongoQuery("list", s.collName, time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("cursor error while listing recipes: %w", err)
	}

	return recipes, total, nil
}

// Update replaces the mutable fields of an existing recipe.
func (s *MongoStore) Update(ctx context.Context, id string, recipe *models.Recipe) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        recipe.Title,
		"ingredients": recipe.Ingredients,
		"directions":  recipe.Directions,
		"link":        recipe.Link,
		"source":      recipe.Source,
		"ner":         recipe.NER,
		"updated_at":  time.Now().UTC(),
	}}

	start := time.Now()
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	metrics.RecordMongoQuery("update", s.collName, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update recipe %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a recipe by ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	metrics.RecordMongoQuery("delete", s.collName, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the total number of stored recipes.
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	count, err := s.coll.CountDocuments(ctx, bson.D{})
	metrics.RecordMongoQuery("count", s.collName, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	return count, nil
}

// indexableFilter selects recipes eligible for embedding: documents whose
// directions array exists and is non-empty. This mirrors the query the
// original indexing pipeline used.
func indexableFilter() bson.M {
	return bson.M{"directions": bson.M{"$exists": true, "$ne": bson.A{}}}
}

// indexableProjection limits indexing reads to the fields the embedding
// text is built from.
func indexableProjection() bson.D {
	return bson.D{
		{Key: "_id", Value: 1},
		{Key: "name", Value: 1},
		{Key: "ingredients", Value: 1},
		{Key: "directions", Value: 1},
	}
}

// IterateIndexable streams indexable recipes to fn in batches.
//
// The iteration holds no more than batchSize decoded documents in memory
// at a time, so a full reindex of the corpus stays cheap regardless of
// collection size.
func (s *MongoStore) IterateIndexable(ctx context.Context, limit int64, batchSize int, fn func([]models.Recipe) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	findOpts := options.Find().
		SetProjection(indexableProjection()).
		SetBatchSize(int32(batchSize))
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	// No opCtx wrapper here: a full iteration legitimately outlives the
	// single-query timeout. The caller's context governs cancellation.
	start := time.Now()
	cur, err := s.coll.Find(ctx, indexableFilter(), findOpts)
	if err != nil {
		metrics.RecordMongoQuery("iterate_indexable", s.collName, time.Since(start), err)
		return fmt.Errorf("failed to open indexable cursor: %w", err)
	}
	defer cur.Close(ctx)

	batch := make([]models.Recipe, 0, batchSize)
	for cur.Next(ctx) {
		var r models.Recipe
		if err := cur.Decode(&r); err != nil {
			logging.Warn().Err(err).Msg("Skipping undecodable recipe document")
			continue
		}
		batch = append(batch, r)

		if len(batch) >= batchSize {
			if err := fn(batch); err != nil {
				metrics.RecordMongoQuery("iterate_indexable", s.collName, time.Since(start), err)
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		metrics.RecordMongoQuery("iterate_indexable", s.collName, time.Since(start), err)
		return fmt.Errorf("cursor error during indexable iteration: %w", err)
	}

	if len(batch) > 0 {
		if err := fn(batch); err != nil {
			metrics.RecordMongoQuery("iterate_indexable", s.collName, time.Since(start), err)
			return err
		}
	}

	metrics.RecordMongoQuery("iterate_indexable", s.collName, time.Since(start), nil)
	return nil
}

// DeleteAll removes every recipe. Used by the importer's wipe mode.
func (s *MongoStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	result, err := s.coll.DeleteMany(ctx, bson.D{})
	metrics.RecordMongoQuery("delete_all", s.collName, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to wipe collection: %w", err)
	}

	logging.Info().
		Int64("deleted", result.DeletedCount).
		Str("collection", s.collName).
		Msg("Wiped recipe collection")

	return result.DeletedCount, nil
}

// EnsureIndexes creates the collection's indexes if they do not exist.
// Index creation in MongoDB is idempotent, so this is safe on every boot.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			// Import provenance lookups; sparse because manually created
			// recipes carry no CSV ID
			Keys:    bson.D{{Key: "_csv_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	start := time.Now()
	_, err := s.coll.Indexes().CreateMany(ctx, indexes)
	metrics.RecordMongoQuery("ensure_indexes", s.collName, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Ping verifies connectivity to the primary.
func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}
	return nil
}
