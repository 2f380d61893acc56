// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/recipefinder/recipefinder/internal/auth"
	"github.com/recipefinder/recipefinder/internal/cache"
	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/indexer"
	"github.com/recipefinder/recipefinder/internal/ingest"
	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/search"
	"github.com/recipefinder/recipefinder/internal/store"
	"github.com/recipefinder/recipefinder/internal/vector"
	ws "github.com/recipefinder/recipefinder/internal/websocket"
)

// testAdminHash is bcrypt("secret") at cost 10, precomputed so the test
// suite does not pay for hashing on every run.
const testAdminHash = "$2a$10$fDCypAcQZT4qAyCTGaOg5O.amEVdzJG3DY9qTZYARkByX2qLtzIVO"

// errMongoDown simulates a lost store connection in readiness tests.
var errMongoDown = errors.New("connection refused")

// fakeStore is an in-memory RecipeStore.
type fakeStore struct {
	mu      sync.Mutex
	recipes map[string]models.Recipe
	order   []string
	pingErr error
}

var _ store.RecipeStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{recipes: make(map[string]models.Recipe)}
}

func (s *fakeStore) Insert(_ context.Context, recipe *models.Recipe) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if recipe.ID.IsZero() {
		recipe.ID = primitive.NewObjectID()
	}
	id := recipe.ID.Hex()
	s.recipes[id] = *recipe
	s.order = append(s.order, id)
	return id, nil
}

func (s *fakeStore) InsertBatch(ctx context.Context, recipes []models.Recipe) (int, error) {
	for i := range recipes {
		if _, err := s.Insert(ctx, &recipes[i]); err != nil {
			return i, err
		}
	}
	return len(recipes), nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Recipe, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recipes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

func (s *fakeStore) List(_ context.Context, limit, offset int) ([]models.Recipe, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := int64(len(s.order))
	if offset >= len(s.order) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(s.order) {
		end = len(s.order)
	}
	out := make([]models.Recipe, 0, end-offset)
	for _, id := range s.order[offset:end] {
		out = append(out, s.recipes[id])
	}
	return out, total, nil
}

func (s *fakeStore) Update(_ context.Context, id string, recipe *models.Recipe) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.recipes[id]
	if !ok {
		return store.ErrNotFound
	}
	recipe.ID = existing.ID
	s.recipes[id] = *recipe
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.recipes, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.recipes)), nil
}

func (s *fakeStore) IterateIndexable(ctx context.Context, limit int64, batchSize int, fn func([]models.Recipe) error) error {
	recipes, _, err := s.List(ctx, len(s.order), 0)
	if err != nil {
		return err
	}
	if limit > 0 && int64(len(recipes)) > limit {
		recipes = recipes[:limit]
	}
	for start := 0; start < len(recipes); start += batchSize {
		end := start + batchSize
		if end > len(recipes) {
			end = len(recipes)
		}
		if err := fn(recipes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.recipes))
	s.recipes = make(map[string]models.Recipe)
	s.order = nil
	return n, nil
}

func (s *fakeStore) EnsureIndexes(_ context.Context) error { return nil }

func (s *fakeStore) Ping(_ context.Context) error { return s.pingErr }

func (s *fakeStore) Close(_ context.Context) error { return nil }

// fakeIndex is an in-memory vector.Index. Search ranks by insertion
// order with descending synthetic scores; good enough for handler tests.
type fakeIndex struct {
	mu       sync.Mutex
	docs     map[string]vector.Document
	order    []string
	statsErr error
}

var _ vector.Index = (*fakeIndex)(nil)

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]vector.Document)}
}

func (f *fakeIndex) Add(_ context.Context, docs []vector.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		if _, ok := f.docs[d.ID]; !ok {
			f.order = append(f.order, d.ID)
		}
		f.docs[d.ID] = d
	}
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, k int) ([]vector.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matches := make([]vector.Match, 0, k)
	for i, id := range f.order {
		if len(matches) == k {
			break
		}
		matches = append(matches, vector.Match{
			Document: f.docs[id],
			Score:    float32(1.0) - float32(i)*0.1,
		})
	}
	return matches, nil
}

func (f *fakeIndex) Get(_ context.Context, id string) (vector.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return vector.Document{}, vector.ErrNotFound
	}
	return doc, nil
}

func (f *fakeIndex) Delete(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.docs, id)
	}
	remaining := f.order[:0]
	for _, id := range f.order {
		if _, ok := f.docs[id]; ok {
			remaining = append(remaining, id)
		}
	}
	f.order = remaining
	return nil
}

func (f *fakeIndex) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs), nil
}

func (f *fakeIndex) Reset(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = make(map[string]vector.Document)
	f.order = nil
	return nil
}

func (f *fakeIndex) Stats(_ context.Context) (vector.Stats, error) {
	if f.statsErr != nil {
		return vector.Stats{}, f.statsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return vector.Stats{
		Documents:  len(f.docs),
		Dimensions: 3,
		Backend:    "fake",
		Collection: "recipes_test",
	}, nil
}

func (f *fakeIndex) Close() error { return nil }

// fakeEmbedder returns constant vectors.
type fakeEmbedder struct{}

func (fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, 0, 0}
	}
	return vecs, nil
}

// testEnv bundles the wired handler stack for one test.
type testEnv struct {
	server  *httptest.Server
	store   *fakeStore
	index   *fakeIndex
	handler *Handler
	auth    *auth.Service
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			CORSOrigins: []string{"*"},
		},
		Vector: config.VectorConfig{
			SnapshotDir: t.TempDir(),
		},
		Search: config.SearchConfig{
			DefaultTopK: 5,
			MaxTopK:     50,
			CacheTTL:    time.Minute,
		},
		Indexer: config.IndexerConfig{
			BatchSize: 10,
			Workers:   1,
		},
		RateLimit: config.RateLimitConfig{
			Search: 1000,
			API:    1000,
			Auth:   1000,
			Admin:  1000,
			Health: 1000,
		},
	}
}

// newTestEnv builds the full router over fakes. authCfg zero value
// leaves authentication disabled.
func newTestEnv(t *testing.T, cfg *config.Config, authCfg config.AuthConfig) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}

	recipeStore := newFakeStore()
	index := newFakeIndex()
	embedder := fakeEmbedder{}

	searchService := search.New(&cfg.Search, recipeStore, index, embedder, nil, cache.NewTTL(cfg.Search.CacheTTL))
	ix := indexer.New(&cfg.Indexer, recipeStore, index, embedder, nil)
	importer := ingest.NewCSVImporter(recipeStore)

	authService, err := auth.NewService(authCfg)
	if err != nil {
		t.Fatalf("auth.NewService() error = %v", err)
	}

	hub := ws.NewHub()
	handler := NewHandler(cfg, recipeStore, searchService, ix, index, importer, authService, hub)
	middleware := NewChiMiddleware(&cfg.Server, cfg.RateLimit, authService)
	router := NewRouter(handler, middleware)

	server := httptest.NewServer(router.SetupChi())
	t.Cleanup(server.Close)

	return &testEnv{
		server:  server,
		store:   recipeStore,
		index:   index,
		handler: handler,
		auth:    authService,
	}
}

// doJSON issues a request with an optional JSON body and returns the
// response plus the decoded envelope.
func (env *testEnv) doJSON(t *testing.T, method, path string, body interface{}, token string) (*http.Response, models.APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope for %s %s: %v", method, path, err)
	}
	return resp, envelope
}

// seedRecipe inserts a recipe into both store and index.
func (env *testEnv) seedRecipe(t *testing.T, title string) string {
	t.Helper()
	rec := models.Recipe{
		Title:       title,
		Ingredients: []string{"2 cups flour", "1 egg"},
		Directions:  []string{"Mix everything.", "Bake at 350F."},
	}
	id, err := env.store.Insert(context.Background(), &rec)
	if err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	if err := env.handler.indexer.IndexOne(context.Background(), &rec); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	return id
}
