// Package repository defines the profile directory and its implementations.
package repository

import (
	"context"

	"github.com/circlemate/matchmaker/internal/domain/model"
)

// Store provides read/write access to the profile directory.
//
// List returns profiles in first-insertion order. Updating an existing
// profile keeps its position, so ranking ties break the same way across
// recomputes.
type Store interface {
	// Put inserts or replaces a profile. Returns true when the id was new.
	Put(ctx context.Context, p model.Profile) (bool, error)

	// Get returns the profile with the given id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (model.Profile, error)

	// List returns every profile in insertion order.
	List(ctx context.Context) ([]model.Profile, error)

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int
}
