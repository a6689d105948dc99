package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// createAttempts bounds retries when concurrent creates hit a transaction conflict.
const createAttempts = 5

// Store implements store.Store on top of a SurrealDB client.
type Store struct {
	client *Client
	opts   store.Options
}

var _ store.Store = (*Store)(nil)

// NewStore wraps an initialized client.
func NewStore(client *Client, opts ...store.Option) *Store {
	return &Store{client: client, opts: store.BuildOptions(opts...)}
}

// Client returns the underlying connection.
func (s *Store) Client() *Client {
	return s.client
}

// dependencyRow is the persisted shape of a dependency.
type dependencyRow struct {
	ID                    surrealmodels.RecordID `json:"id"`
	Name                  string                 `json:"name"`
	TestVersion           string                 `json:"test_version"`
	ProdVersion           *string                `json:"prod_version,omitempty"`
	TestLastUpdated       *time.Time             `json:"test_last_updated,omitempty"`
	ProductionLastUpdated *time.Time             `json:"production_last_updated,omitempty"`
	TestNextUpdate        *time.Time             `json:"test_next_update,omitempty"`
	ProductionNextUpdate  *time.Time             `json:"production_next_update,omitempty"`
	SourceURL             *string                `json:"source_url,omitempty"`
	ChangelogURL          *string                `json:"changelog_url,omitempty"`
	HomepageURL           *string                `json:"homepage_url,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

func (r dependencyRow) toModel() (models.Dependency, error) {
	id, err := recordIDString(r.ID)
	if err != nil {
		return models.Dependency{}, err
	}
	return models.Dependency{
		ID:                    id,
		Name:                  r.Name,
		TestVersion:           r.TestVersion,
		ProdVersion:           r.ProdVersion,
		TestLastUpdated:       models.NormalizePtr(r.TestLastUpdated),
		ProductionLastUpdated: models.NormalizePtr(r.ProductionLastUpdated),
		TestNextUpdate:        models.NormalizePtr(r.TestNextUpdate),
		ProductionNextUpdate:  models.NormalizePtr(r.ProductionNextUpdate),
		SourceURL:             r.SourceURL,
		ChangelogURL:          r.ChangelogURL,
		HomepageURL:           r.HomepageURL,
		CreatedAt:             models.Normalize(r.CreatedAt),
		UpdatedAt:             models.Normalize(r.UpdatedAt),
	}, nil
}

// recordIDString extracts the string key from a SurrealDB RecordID.
func recordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected record id type: %T (expected string)", id.ID)
	}
	return s, nil
}

const orderBy = ` ORDER BY created_at, name`

// GetAll returns every dependency ordered by creation.
func (s *Store) GetAll(ctx context.Context) ([]models.Dependency, error) {
	return s.list(ctx, "list dependencies", `SELECT * FROM dependency`+orderBy, nil)
}

// GetByID retrieves a dependency by record key.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Dependency, error) {
	return s.get(ctx, "get dependency by id", `SELECT * FROM type::record("dependency", $id)`, map[string]any{"id": id})
}

// GetByName retrieves a dependency by exact name.
func (s *Store) GetByName(ctx context.Context, name string) (*models.Dependency, error) {
	return s.get(ctx, "get dependency by name", `SELECT * FROM dependency WHERE name = $name LIMIT 1`, map[string]any{"name": name})
}

// Search returns dependencies whose name contains query, ignoring case.
func (s *Store) Search(ctx context.Context, query string) ([]models.Dependency, error) {
	return s.list(ctx, "search dependencies", `
		SELECT * FROM dependency
		WHERE string::contains(string::lowercase(name), string::lowercase($q))`+orderBy,
		map[string]any{"q": query})
}

// Exists reports whether a dependency with the exact name exists.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.count(ctx, "check dependency exists",
		`SELECT count() AS c FROM dependency WHERE name = $name GROUP ALL`, map[string]any{"name": name})
	return n > 0, err
}

// FindUpdatedBetween returns dependencies with either last-updated timestamp in [start, end].
func (s *Store) FindUpdatedBetween(ctx context.Context, start, end time.Time) ([]models.Dependency, error) {
	return s.list(ctx, "find updated between", `
		SELECT * FROM dependency
		WHERE (test_last_updated >= $start AND test_last_updated <= $end)
		   OR (production_last_updated >= $start AND production_last_updated <= $end)`+orderBy,
		rangeVars(start, end))
}

// FindNextUpdateBetween returns dependencies with either scheduled update in [start, end].
func (s *Store) FindNextUpdateBetween(ctx context.Context, start, end time.Time) ([]models.Dependency, error) {
	return s.list(ctx, "find next update between", `
		SELECT * FROM dependency
		WHERE (test_next_update >= $start AND test_next_update <= $end)
		   OR (production_next_update >= $start AND production_next_update <= $end)`+orderBy,
		rangeVars(start, end))
}

// Create inserts a new dependency. The unique name index rejects duplicates
// atomically; transaction conflicts between racing creates are retried so the
// loser observes the duplicate.
func (s *Store) Create(ctx context.Context, in models.DependencyInput) (*models.Dependency, error) {
	dep, err := s.opts.NewRecord(in)
	if err != nil {
		return nil, err
	}

	// Absent optionals are left out of the content so they stay NONE.
	content := map[string]any{
		"name":         dep.Name,
		"test_version": dep.TestVersion,
		"created_at":   dep.CreatedAt,
		"updated_at":   dep.UpdatedAt,
	}
	setString(content, "prod_version", dep.ProdVersion)
	setString(content, "source_url", dep.SourceURL)
	setString(content, "changelog_url", dep.ChangelogURL)
	setString(content, "homepage_url", dep.HomepageURL)
	setTime(content, "test_last_updated", dep.TestLastUpdated)
	setTime(content, "production_last_updated", dep.ProductionLastUpdated)
	setTime(content, "test_next_update", dep.TestNextUpdate)
	setTime(content, "production_next_update", dep.ProductionNextUpdate)

	sql := `CREATE type::record("dependency", $id) CONTENT $content`
	vars := map[string]any{"id": dep.ID, "content": content}

	for attempt := 1; ; attempt++ {
		_, err = surrealdb.Query[[]dependencyRow](ctx, s.client.db, sql, vars)
		err = wrapQueryError("create dependency", dep.Name, err)
		if errors.Is(err, ErrTransactionConflict) && attempt < createAttempts {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

// Count returns the number of stored dependencies.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.count(ctx, "count dependencies", `SELECT count() AS c FROM dependency GROUP ALL`, nil)
}

// Close closes the connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func (s *Store) get(ctx context.Context, op, sql string, vars map[string]any) (*models.Dependency, error) {
	deps, err := s.list(ctx, op, sql, vars)
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		return nil, store.ErrNotFound
	}
	return &deps[0], nil
}

func (s *Store) list(ctx context.Context, op, sql string, vars map[string]any) ([]models.Dependency, error) {
	results, err := surrealdb.Query[[]dependencyRow](ctx, s.client.db, sql, vars)
	if err != nil {
		return nil, wrapQueryError(op, "", err)
	}

	deps := make([]models.Dependency, 0)
	if results == nil || len(*results) == 0 {
		return deps, nil
	}
	for _, row := range (*results)[0].Result {
		dep, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func (s *Store) count(ctx context.Context, op, sql string, vars map[string]any) (int, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, s.client.db, sql, vars)
	if err != nil {
		return 0, wrapQueryError(op, "", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

func setString(content map[string]any, key string, v *string) {
	if v != nil {
		content[key] = *v
	}
}

func setTime(content map[string]any, key string, v *time.Time) {
	if v != nil {
		content[key] = *v
	}
}

func rangeVars(start, end time.Time) map[string]any {
	return map[string]any{
		"start": models.Normalize(start),
		"end":   models.Normalize(end),
	}
}
