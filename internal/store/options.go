package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/deptrack/internal/models"
)

// Options carries the identity and clock sources shared by every backend.
type Options struct {
	Now   func() time.Time
	NewID func() string
}

// Option configures a store.
type Option func(*Options)

// WithClock overrides the clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithIDGenerator overrides id allocation.
func WithIDGenerator(newID func() string) Option {
	return func(o *Options) { o.NewID = newID }
}

// BuildOptions applies opts over the defaults: wall clock and random UUIDs.
func BuildOptions(opts ...Option) Options {
	o := Options{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRecord validates in and allocates a fresh record for it.
func (o Options) NewRecord(in models.DependencyInput) (models.Dependency, error) {
	if err := in.Validate(); err != nil {
		return models.Dependency{}, err
	}
	return models.NewDependency(o.NewID(), in, o.Now()), nil
}
