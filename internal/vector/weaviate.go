// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package vector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
)

// WeaviateIndex is the remote vector index backend.
//
// We bring our own vectors (vectorizer "none"), one class per collection.
// Weaviate requires UUID object IDs, so recipe IDs are mapped to
// deterministic v5 UUIDs and the original ID is kept in the recipeId
// property for the reverse mapping.
type WeaviateIndex struct {
	client    *weaviate.Client
	className string
	dims      int
}

var _ Index = (*WeaviateIndex)(nil)

// NewWeaviateIndex connects to the configured Weaviate instance and
// ensures the collection's class exists.
func NewWeaviateIndex(cfg *config.VectorConfig, dims int) (*WeaviateIndex, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive, got %d", dims)
	}

	var authConfig auth.Config
	if cfg.Weaviate.APIKey != "" {
		authConfig = auth.ApiKey{Value: cfg.Weaviate.APIKey}
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:       cfg.Weaviate.Host,
		Scheme:     cfg.Weaviate.Scheme,
		AuthConfig: authConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	idx := &WeaviateIndex{
		client:    client,
		className: classNameFrom(cfg.Collection),
		dims:      dims,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := idx.ensureClass(ctx); err != nil {
		return nil, err
	}

	logging.Info().
		Str("host", cfg.Weaviate.Host).
		Str("class", idx.className).
		Int("dimensions", dims).
		Msg("Weaviate index ready")

	return idx, nil
}

// classNameFrom derives a valid Weaviate class name from a collection
// name: "recipes_embeddings" becomes "RecipesEmbeddings".
func classNameFrom(collection string) string {
	parts := strings.FieldsFunc(collection, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var sb strings.Builder
	for _, p := range parts {
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	if sb.Len() == 0 {
		return "Recipes"
	}
	return sb.String()
}

// objectID maps a recipe ID to a deterministic UUID, since Weaviate
// rejects non-UUID object IDs.
func objectID(recipeID string) strfmt.UUID {
	return strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(recipeID)).String())
}

// ensureClass creates the collection's class if it does not exist.
func (w *WeaviateIndex) ensureClass(ctx context.Context) error {
	exists, err := w.client.Schema().ClassExistenceChecker().
		WithClassName(w.className).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("check class existence: %w", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:       w.className,
		Description: "Recipe embeddings with search metadata",
		// We supply vectors from our own embedding pipeline
		Vectorizer: "none",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
		Properties: []*models.Property{
			{Name: "recipeId", DataType: []string{"text"}, Description: "Original recipe ID"},
			{Name: "title", DataType: []string{"text"}},
			{Name: "ingredients", DataType: []string{"text[]"}},
			{Name: "directions", DataType: []string{"text[]"}},
		},
	}

	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", w.className, err)
	}

	logging.Info().Str("class", w.className).Msg("Created Weaviate class")
	return nil
}

// Add upserts documents through the batch API.
func (w *WeaviateIndex) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Vector) != w.dims {
			return fmt.Errorf("%w: document %s has %d dimensions, index has %d",
				ErrDimensionMismatch, doc.ID, len(doc.Vector), w.dims)
		}

		objects = append(objects, &models.Object{
			Class: w.className,
			ID:    objectID(doc.ID),
			Properties: map[string]interface{}{
				"recipeId":    doc.ID,
				"title":       doc.Meta.Title,
				"ingredients": doc.Meta.Ingredients,
				"directions":  doc.Meta.Directions,
			},
			Vector: models.C11yVector(doc.Vector),
		})
	}

	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("batch upsert: %w", err)
	}

	// Per-object errors come back in the response, not err
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch upsert object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}

	metrics.RecordVectorOperation("upsert")
	return nil
}

// Search runs a nearVector query and maps distances back to cosine
// similarity (distance = 1 - similarity for the cosine metric).
func (w *WeaviateIndex) Search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if len(vector) != w.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimensionMismatch, len(vector), w.dims)
	}
	if k < 1 {
		k = 1
	}

	start := time.Now()

	nearVector := (&graphql.NearVectorArgumentBuilder{}).WithVector(vector)
	fields := []graphql.Field{
		{Name: "recipeId"},
		{Name: "title"},
		{Name: "ingredients"},
		{Name: "directions"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "distance"},
		}},
	}

	resp, err := w.client.GraphQL().Get().
		WithClassName(w.className).
		WithNearVector(nearVector).
		WithFields(fields...).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", resp.Errors[0].Message)
	}

	matches := make([]Match, 0, k)
	if resp.Data != nil {
		if get, ok := resp.Data["Get"].(map[string]interface{}); ok {
			if items, ok := get[w.className].([]interface{}); ok {
				for _, raw := range items {
					item, ok := raw.(map[string]interface{})
					if !ok {
						continue
					}
					matches = append(matches, parseWeaviateHit(item))
				}
			}
		}
	}

	metrics.RecordVectorSearch(time.Since(start))
	return matches, nil
}

// parseWeaviateHit converts a GraphQL result item to a Match.
func parseWeaviateHit(item map[string]interface{}) Match {
	var m Match

	if val, ok := item["recipeId"].(string); ok {
		m.ID = val
	}
	if val, ok := item["title"].(string); ok {
		m.Meta.Title = val
	}
	m.Meta.Ingredients = stringSlice(item["ingredients"])
	m.Meta.Directions = stringSlice(item["directions"])

	if additional, ok := item["_additional"].(map[string]interface{}); ok {
		if dist, ok := additional["distance"].(float64); ok {
			m.Score = float32(1.0 - dist)
		}
	}

	return m
}

// stringSlice converts a GraphQL []interface{} to []string.
func stringSlice(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Get fetches a single object by its derived UUID, vector included.
func (w *WeaviateIndex) Get(ctx context.Context, id string) (Document, error) {
	objects, err := w.client.Data().ObjectsGetter().
		WithClassName(w.className).
		WithID(string(objectID(id))).
		WithVector().
		Do(ctx)
	if err != nil {
		var clientErr *fault.WeaviateClientError
		if errors.As(err, &clientErr) && clientErr.StatusCode == 404 {
			return Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return Document{}, fmt.Errorf("get object %s: %w", id, err)
	}
	if len(objects) == 0 {
		return Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}

	obj := objects[0]
	doc := Document{ID: id, Vector: []float32(obj.Vector)}
	if props, ok := obj.Properties.(map[string]interface{}); ok {
		if val, ok := props["title"].(string); ok {
			doc.Meta.Title = val
		}
		doc.Meta.Ingredients = stringSlice(props["ingredients"])
		doc.Meta.Directions = stringSlice(props["directions"])
	}
	return doc, nil
}

// Delete removes documents by ID. Missing objects are ignored.
func (w *WeaviateIndex) Delete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		err := w.client.Data().Deleter().
			WithClassName(w.className).
			WithID(string(objectID(id))).
			Do(ctx)
		if err != nil {
			var clientErr *fault.WeaviateClientError
			if errors.As(err, &clientErr) && clientErr.StatusCode == 404 {
				continue
			}
			return fmt.Errorf("delete object %s: %w", id, err)
		}
	}

	metrics.RecordVectorOperation("delete")
	return nil
}

// Count returns the number of stored objects via an aggregate query.
func (w *WeaviateIndex) Count(ctx context.Context) (int, error) {
	resp, err := w.client.GraphQL().Aggregate().
		WithClassName(w.className).
		WithFields(graphql.Field{
			Name:   "meta",
			Fields: []graphql.Field{{Name: "count"}},
		}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate count: %w", err)
	}
	if len(resp.Errors) > 0 {
		return 0, fmt.Errorf("aggregate count: %s", resp.Errors[0].Message)
	}

	if resp.Data != nil {
		if agg, ok := resp.Data["Aggregate"].(map[string]interface{}); ok {
			if items, ok := agg[w.className].([]interface{}); ok && len(items) > 0 {
				if item, ok := items[0].(map[string]interface{}); ok {
					if meta, ok := item["meta"].(map[string]interface{}); ok {
						if count, ok := meta["count"].(float64); ok {
							return int(count), nil
						}
					}
				}
			}
		}
	}

	return 0, nil
}

// Reset drops and recreates the class.
func (w *WeaviateIndex) Reset(ctx context.Context) error {
	err := w.client.Schema().ClassDeleter().
		WithClassName(w.className).
		Do(ctx)
	if err != nil {
		var clientErr *fault.WeaviateClientError
		if !errors.As(err, &clientErr) || clientErr.StatusCode != 404 {
			return fmt.Errorf("drop class %s: %w", w.className, err)
		}
	}

	if err := w.ensureClass(ctx); err != nil {
		return err
	}

	metrics.RecordVectorOperation("clear")
	return nil
}

// Stats returns the index's current state.
func (w *WeaviateIndex) Stats(ctx context.Context) (Stats, error) {
	count, err := w.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Documents:  count,
		Dimensions: w.dims,
		Backend:    config.VectorBackendWeaviate,
		Collection: w.className,
	}, nil
}

// Close is a no-op; the client is stateless HTTP.
// Note the index does not implement Snapshotter: backups of a remote
// Weaviate belong to its own backup API, not this process.
func (w *WeaviateIndex) Close() error {
	return nil
}
