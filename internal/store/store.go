// Package store defines the dependency store contract and its in-memory implementation.
package store

import (
	"context"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
)

// Store owns the canonical dependency collection. Create is the only mutation and
// enforces name uniqueness atomically with the insert.
type Store interface {
	// GetAll returns every dependency ordered by creation time, then name.
	GetAll(ctx context.Context) ([]models.Dependency, error)
	// GetByID returns ErrNotFound when no record has the id.
	GetByID(ctx context.Context, id string) (*models.Dependency, error)
	// GetByName matches the name exactly and returns ErrNotFound when absent.
	GetByName(ctx context.Context, name string) (*models.Dependency, error)
	// Search returns records whose name contains query, ignoring case.
	Search(ctx context.Context, query string) ([]models.Dependency, error)
	Exists(ctx context.Context, name string) (bool, error)
	// FindUpdatedBetween matches either last-updated timestamp in [start, end].
	FindUpdatedBetween(ctx context.Context, start, end time.Time) ([]models.Dependency, error)
	// FindNextUpdateBetween matches either scheduled update in [start, end].
	FindNextUpdateBetween(ctx context.Context, start, end time.Time) ([]models.Dependency, error)
	Create(ctx context.Context, in models.DependencyInput) (*models.Dependency, error)
	Count(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}
