// Package service provides the dependency operations shared by the MCP tools and the CLI.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/stats"
	"github.com/raphaelgruber/deptrack/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/raphaelgruber/deptrack/internal/service"

// DependencyService parses caller input, captures "now" once per call and
// delegates to the store and the stats package.
type DependencyService struct {
	store  store.Store
	now    func() time.Time
	policy stats.NeverUpdatedPolicy
	tracer trace.Tracer
	logger *slog.Logger
}

// Option configures a DependencyService.
type Option func(*DependencyService)

// WithClock overrides the wall clock used for health and staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *DependencyService) { s.now = now }
}

// WithStalePolicy sets how never-updated dependencies are classified.
func WithStalePolicy(p stats.NeverUpdatedPolicy) Option {
	return func(s *DependencyService) { s.policy = p }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *DependencyService) { s.tracer = t }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *DependencyService) { s.logger = l }
}

// NewDependencyService creates a new dependency service over st.
func NewDependencyService(st store.Store, opts ...Option) *DependencyService {
	s := &DependencyService{
		store:  st,
		now:    time.Now,
		policy: stats.FallbackToCreated,
		tracer: otel.Tracer(tracerName),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest carries create arguments as received from callers.
// Timestamps are ISO-8601 strings; blank means absent.
type CreateRequest struct {
	Name                  string
	TestVersion           string
	ProdVersion           *string
	SourceURL             *string
	ChangelogURL          *string
	HomepageURL           *string
	TestLastUpdated       string
	ProductionLastUpdated string
	TestNextUpdate        string
	ProductionNextUpdate  string
}

// List returns every dependency.
func (s *DependencyService) List(ctx context.Context) (deps []models.Dependency, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.List")
	defer func() { finish(span, err, attribute.Int("result.count", len(deps))) }()

	return s.store.GetAll(ctx)
}

// GetByID returns store.ErrNotFound when id is unknown.
func (s *DependencyService) GetByID(ctx context.Context, id string) (dep *models.Dependency, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.GetByID", trace.WithAttributes(attribute.String("dependency.id", id)))
	defer func() { finish(span, err) }()

	return s.store.GetByID(ctx, id)
}

// GetByName returns store.ErrNotFound when no dependency has exactly this name.
func (s *DependencyService) GetByName(ctx context.Context, name string) (dep *models.Dependency, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.GetByName", trace.WithAttributes(attribute.String("dependency.name", name)))
	defer func() { finish(span, err) }()

	return s.store.GetByName(ctx, name)
}

// Search matches names containing query, ignoring case.
func (s *DependencyService) Search(ctx context.Context, query string) (deps []models.Dependency, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.Search", trace.WithAttributes(attribute.String("query", query)))
	defer func() { finish(span, err, attribute.Int("result.count", len(deps))) }()

	return s.store.Search(ctx, query)
}

// Exists reports whether name is taken.
func (s *DependencyService) Exists(ctx context.Context, name string) (exists bool, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.Exists", trace.WithAttributes(attribute.String("dependency.name", name)))
	defer func() { finish(span, err) }()

	return s.store.Exists(ctx, name)
}

// FindUpdatedBetween parses the bounds and returns dependencies updated in [start, end].
func (s *DependencyService) FindUpdatedBetween(ctx context.Context, start, end string) (deps []models.Dependency, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.FindUpdatedBetween")
	defer func() { finish(span, err, attribute.Int("result.count", len(deps))) }()

	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.store.FindUpdatedBetween(ctx, from, to)
}

// FindPlannedUpdates parses the bounds and returns dependencies with an update scheduled in [start, end].
func (s *DependencyService) FindPlannedUpdates(ctx context.Context, start, end string) (deps []models.Dependency, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.FindPlannedUpdates")
	defer func() { finish(span, err, attribute.Int("result.count", len(deps))) }()

	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.store.FindNextUpdateBetween(ctx, from, to)
}

// Create validates and stores a new dependency. A taken name is reported as
// *store.DuplicateNameError before any timestamp is parsed; the store repeats
// the check atomically with the insert.
func (s *DependencyService) Create(ctx context.Context, req CreateRequest) (dep *models.Dependency, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.Create", trace.WithAttributes(attribute.String("dependency.name", req.Name)))
	defer func() { finish(span, err) }()

	taken, err := s.store.Exists(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &store.DuplicateNameError{Name: req.Name}
	}

	in, err := req.input()
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, in)
}

// Count returns the number of stored dependencies.
func (s *DependencyService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// HealthOverview summarizes drift, overdue, test-only and recent updates.
func (s *DependencyService) HealthOverview(ctx context.Context) (summary stats.HealthSummary, err error) {
	ctx, span := s.tracer.Start(ctx, "DependencyService.HealthOverview")
	defer func() { finish(span, err) }()

	deps, err := s.store.GetAll(ctx)
	if err != nil {
		return stats.HealthSummary{}, err
	}
	return stats.HealthOverview(deps, s.now()), nil
}

// StaleDependencies lists dependencies not updated within daysThreshold days.
// A nil threshold uses stats.DefaultStaleDays.
func (s *DependencyService) StaleDependencies(ctx context.Context, daysThreshold *int) (summary stats.StaleSummary, err error) {
	days := stats.DefaultStaleDays
	if daysThreshold != nil {
		days = *daysThreshold
	}

	ctx, span := s.tracer.Start(ctx, "DependencyService.StaleDependencies", trace.WithAttributes(
		attribute.Int("days_threshold", days),
		attribute.String("never_updated_policy", s.policy.String()),
	))
	defer func() { finish(span, err, attribute.Int("result.count", summary.StaleCount)) }()

	if days < 0 {
		return stats.StaleSummary{}, &models.ValidationError{Field: "days_threshold", Reason: "must not be negative"}
	}
	deps, err := s.store.GetAll(ctx)
	if err != nil {
		return stats.StaleSummary{}, err
	}
	return stats.StaleDependencies(deps, days, s.now(), s.policy)
}

func (r CreateRequest) input() (models.DependencyInput, error) {
	in := models.DependencyInput{
		Name:         r.Name,
		TestVersion:  r.TestVersion,
		ProdVersion:  r.ProdVersion,
		SourceURL:    r.SourceURL,
		ChangelogURL: r.ChangelogURL,
		HomepageURL:  r.HomepageURL,
	}

	fields := []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"test_last_updated", r.TestLastUpdated, &in.TestLastUpdated},
		{"production_last_updated", r.ProductionLastUpdated, &in.ProductionLastUpdated},
		{"test_next_update", r.TestNextUpdate, &in.TestNextUpdate},
		{"production_next_update", r.ProductionNextUpdate, &in.ProductionNextUpdate},
	}
	for _, f := range fields {
		t, err := models.ParseOptionalTimestamp(f.name, f.raw)
		if err != nil {
			return models.DependencyInput{}, err
		}
		*f.dst = t
	}
	return in, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := models.ParseTimestamp("start_date", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := models.ParseTimestamp("end_date", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func finish(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
