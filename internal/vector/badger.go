// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package vector

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/recipefinder/recipefinder/internal/cache"
	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
)

// BadgerIndex is the local persistent vector index.
//
// Vectors are durable in BadgerDB and mirrored in an in-memory map for
// scanning: a full corpus of 5000 recipes at 384 dimensions is under 8 MB,
// so the entire set is loaded at open and every search is an exhaustive
// cosine scan collected through a bounded min-heap. Metadata stays on disk
// and is fetched only for the k winners of a search.
//
// Key layout:
//
//	vec:<collection>:<id>   vector as little-endian float32s
//	meta:<collection>:<id>  metadata as JSON
type BadgerIndex struct {
	db         *badger.DB
	collection string
	dims       int

	mu      sync.RWMutex
	vectors map[string][]float32
	norms   map[string]float32
	closed  bool
}

// Compile-time checks: BadgerIndex is an Index and supports snapshots.
var (
	_ Index       = (*BadgerIndex)(nil)
	_ Snapshotter = (*BadgerIndex)(nil)
)

// NewBadgerIndex opens (or creates) the index at cfg.Path and loads all
// vectors into memory.
func NewBadgerIndex(cfg *config.VectorConfig, dims int) (*BadgerIndex, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive, got %d", dims)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("badger index path is required")
	}

	if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create vector directory %s: %w", cfg.Path, err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	idx := &BadgerIndex{
		db:         db,
		collection: cfg.Collection,
		dims:       dims,
		vectors:    make(map[string][]float32),
		norms:      make(map[string]float32),
	}

	if err := idx.loadVectors(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load vectors: %w", err)
	}

	metrics.VectorDocuments.Set(float64(len(idx.vectors)))
	logging.Info().
		Str("path", cfg.Path).
		Str("collection", cfg.Collection).
		Int("documents", len(idx.vectors)).
		Int("dimensions", dims).
		Msg("Vector index opened")

	return idx, nil
}

func (b *BadgerIndex) vecKey(id string) []byte {
	return []byte("vec:" + b.collection + ":" + id)
}

func (b *BadgerIndex) metaKey(id string) []byte {
	return []byte("meta:" + b.collection + ":" + id)
}

func (b *BadgerIndex) vecPrefix() []byte {
	return []byte("vec:" + b.collection + ":")
}

func (b *BadgerIndex) metaPrefix() []byte {
	return []byte("meta:" + b.collection + ":")
}

// loadVectors fills the in-memory map from disk at open.
func (b *BadgerIndex) loadVectors() error {
	prefix := b.vecPrefix()
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				vec, err := decodeVector(val)
				if err != nil {
					return fmt.Errorf("document %s: %w", id, err)
				}
				if len(vec) != b.dims {
					// Stale entry from a different model; skip rather
					// than poison every search
					logging.Warn().
						Str("id", id).
						Int("got", len(vec)).
						Int("want", b.dims).
						Msg("Skipping vector with stale dimensionality")
					return nil
				}
				b.vectors[id] = vec
				b.norms[id] = norm(vec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Add upserts documents: vector and metadata are written in one
// transaction per batch, then mirrored into memory.
func (b *BadgerIndex) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	for _, doc := range docs {
		if len(doc.Vector) != b.dims {
			return fmt.Errorf("%w: document %s has %d dimensions, index has %d",
				ErrDimensionMismatch, doc.ID, len(doc.Vector), b.dims)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		metaJSON, err := json.Marshal(doc.Meta)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
		}
		if err := wb.Set(b.vecKey(doc.ID), encodeVector(doc.Vector)); err != nil {
			return fmt.Errorf("write vector %s: %w", doc.ID, err)
		}
		if err := wb.Set(b.metaKey(doc.ID), metaJSON); err != nil {
			return fmt.Errorf("write metadata %s: %w", doc.ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush vector batch: %w", err)
	}

	// Disk write succeeded; mirror into memory
	for _, doc := range docs {
		vec := make([]float32, len(doc.Vector))
		copy(vec, doc.Vector)
		b.vectors[doc.ID] = vec
		b.norms[doc.ID] = norm(vec)
	}

	metrics.RecordVectorOperation("upsert")
	metrics.VectorDocuments.Set(float64(len(b.vectors)))
	return nil
}

// Search scans every stored vector and returns the k most similar.
func (b *BadgerIndex) Search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if len(vector) != b.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimensionMismatch, len(vector), b.dims)
	}
	if k < 1 {
		k = 1
	}

	start := time.Now()

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil, ErrClosed
	}

	queryNorm := norm(vector)
	topk := cache.NewTopK[struct{}](k)
	if queryNorm > 0 {
		for id, vec := range b.vectors {
			vecNorm := b.norms[id]
			if vecNorm == 0 {
				continue
			}
			score := dot(vector, vec) / (queryNorm * vecNorm)
			topk.Offer(id, struct{}{}, score)
		}
	}
	b.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	winners := topk.Descending()
	matches := make([]Match, 0, len(winners))

	// Fetch metadata for the winners only
	err := b.db.View(func(txn *badger.Txn) error {
		for _, w := range winners {
			m := Match{Score: w.Score}
			m.ID = w.ID

			item, err := txn.Get(b.metaKey(w.ID))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					// Vector without metadata; return the hit anyway
					matches = append(matches, m)
					continue
				}
				return fmt.Errorf("read metadata %s: %w", w.ID, err)
			}
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &m.Meta)
			})
			if err != nil {
				return fmt.Errorf("decode metadata %s: %w", w.ID, err)
			}
			matches = append(matches, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordVectorSearch(time.Since(start))
	return matches, nil
}

// Get returns the stored document for id, or ErrNotFound.
func (b *BadgerIndex) Get(ctx context.Context, id string) (Document, error) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return Document{}, ErrClosed
	}
	vec, ok := b.vectors[id]
	if ok {
		// Copy so callers cannot mutate the index's view
		cp := make([]float32, len(vec))
		copy(cp, vec)
		vec = cp
	}
	b.mu.RUnlock()

	if !ok {
		return Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}

	doc := Document{ID: id, Vector: vec}
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.metaKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Vector without metadata; return what we have
				return nil
			}
			return fmt.Errorf("read metadata %s: %w", id, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc.Meta)
		})
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Delete removes documents by ID. Unknown IDs are ignored.
func (b *BadgerIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(b.vecKey(id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete vector %s: %w", id, err)
			}
			if err := txn.Delete(b.metaKey(id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete metadata %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		delete(b.vectors, id)
		delete(b.norms, id)
	}

	metrics.RecordVectorOperation("delete")
	metrics.VectorDocuments.Set(float64(len(b.vectors)))
	return nil
}

// Count returns the number of stored documents.
func (b *BadgerIndex) Count(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, ErrClosed
	}
	return len(b.vectors), nil
}

// Reset removes every document in the collection.
func (b *BadgerIndex) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	if err := b.db.DropPrefix(b.vecPrefix(), b.metaPrefix()); err != nil {
		return fmt.Errorf("drop collection prefixes: %w", err)
	}

	b.vectors = make(map[string][]float32)
	b.norms = make(map[string]float32)

	metrics.RecordVectorOperation("clear")
	metrics.VectorDocuments.Set(0)
	return nil
}

// Stats returns the index's current state.
func (b *BadgerIndex) Stats(ctx context.Context) (Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return Stats{}, ErrClosed
	}
	return Stats{
		Documents:  len(b.vectors),
		Dimensions: b.dims,
		Backend:    config.VectorBackendBadger,
		Collection: b.collection,
	}, nil
}

// Snapshot streams a full badger backup to w. Safe to call while the
// index serves reads and writes.
func (b *BadgerIndex) Snapshot(ctx context.Context, w io.Writer) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	b.mu.RUnlock()

	start := time.Now()
	// since=0 for a full backup
	if _, err := b.db.Backup(w, 0); err != nil {
		return fmt.Errorf("badger backup: %w", err)
	}

	metrics.RecordVectorOperation("snapshot")
	metrics.VectorSnapshotDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Restore loads a snapshot stream and reloads the in-memory map.
func (b *BadgerIndex) Restore(ctx context.Context, r io.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	if err := b.db.Load(r, 16); err != nil {
		return fmt.Errorf("badger load: %w", err)
	}

	b.vectors = make(map[string][]float32)
	b.norms = make(map[string]float32)
	if err := b.loadVectors(); err != nil {
		return fmt.Errorf("reload vectors after restore: %w", err)
	}

	metrics.RecordVectorOperation("restore")
	metrics.VectorDocuments.Set(float64(len(b.vectors)))
	logging.Info().Int("documents", len(b.vectors)).Msg("Vector index restored from snapshot")
	return nil
}

// Close flushes and closes the underlying database.
func (b *BadgerIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// encodeVector packs a float32 slice as little-endian bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks little-endian bytes into a float32 slice.
func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("vector data length %d not a multiple of 4", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

// dot computes the dot product of two equal-length vectors.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// norm computes the Euclidean norm of a vector.
func norm(vec []float32) float32 {
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	return float32(math.Sqrt(sum))
}

// Cosine computes the cosine similarity of two equal-length vectors.
// Returns 0 when either vector has zero magnitude.
func Cosine(a, b []float32) float32 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}
