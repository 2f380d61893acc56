// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package store

import (
	"context"
	"errors"

	"github.com/recipefinder/recipefinder/internal/models"
)

// Sentinel errors returned by RecipeStore implementations.
var (
	// ErrNotFound is returned when no recipe matches the requested ID.
	ErrNotFound = errors.New("recipe not found")

	// ErrInvalidID is returned when an ID is not a valid ObjectID hex string.
	ErrInvalidID = errors.New("invalid recipe id")
)

// RecipeStore is the persistence interface for recipe documents.
//
// All operations take a context; implementations apply the configured
// query timeout when the caller's context carries no deadline.
type RecipeStore interface {
	// Insert stores a single recipe and returns its ID as a hex string.
	Insert(ctx context.Context, recipe *models.Recipe) (string, error)

	// InsertBatch stores multiple recipes in one round trip and returns
	// the number actually inserted. Unordered: one bad document does not
	// abort the rest of the batch.
	InsertBatch(ctx context.Context, recipes []models.Recipe) (int, error)

	// GetByID fetches a recipe by its hex ObjectID.
	// Returns ErrNotFound if no document matches, ErrInvalidID for
	// malformed IDs.
	GetByID(ctx context.Context, id string) (*models.Recipe, error)

	// List returns a page of recipes, newest first, plus the total count.
	List(ctx context.Context, limit, offset int) ([]models.Recipe, int64, error)

	// Update replaces the mutable fields of an existing recipe.
	// Returns ErrNotFound if no document matches.
	Update(ctx context.Context, id string, recipe *models.Recipe) error

	// Delete removes a recipe. Returns ErrNotFound if no document matches.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of stored recipes.
	Count(ctx context.Context) (int64, error)

	// IterateIndexable streams recipes that are eligible for embedding:
	// documents with a non-empty directions array. Only the fields needed
	// for indexing are fetched (_id, name, ingredients, directions).
	//
	// fn is called once per batch of up to batchSize recipes; returning an
	// error stops the iteration and propagates it. limit caps the total
	// number of documents visited (0 means no cap).
	IterateIndexable(ctx context.Context, limit int64, batchSize int, fn func([]models.Recipe) error) error

	// DeleteAll removes every recipe and returns the number deleted.
	// Used by the CSV importer's wipe mode.
	DeleteAll(ctx context.Context) (int64, error)

	// EnsureIndexes creates the collection's indexes if missing.
	EnsureIndexes(ctx context.Context) error

	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close(ctx context.Context) error
}
