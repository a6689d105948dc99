package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/store"
)

const selectColumns = `
	SELECT id, name, test_version, prod_version,
	       test_last_updated, production_last_updated,
	       test_next_update, production_next_update,
	       source_url, changelog_url, homepage_url,
	       created_at, updated_at
	FROM dependencies`

const orderBy = ` ORDER BY created_at, name`

// GetAll returns every dependency ordered by creation.
func (s *Store) GetAll(ctx context.Context) ([]models.Dependency, error) {
	return s.list(ctx, "list dependencies", selectColumns+orderBy)
}

// GetByID retrieves a dependency by id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Dependency, error) {
	return s.get(ctx, "get dependency by id", selectColumns+` WHERE id = ?`, id)
}

// GetByName retrieves a dependency by exact name.
func (s *Store) GetByName(ctx context.Context, name string) (*models.Dependency, error) {
	return s.get(ctx, "get dependency by name", selectColumns+` WHERE name = ?`, name)
}

// Search returns dependencies whose name contains query, ignoring case.
// instr() keeps LIKE wildcards in the query literal.
func (s *Store) Search(ctx context.Context, query string) ([]models.Dependency, error) {
	if strings.ContainsFunc(query, isNonASCII) {
		// SQLite lower() only folds ASCII; filter in Go instead.
		all, err := s.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		q := strings.ToLower(query)
		matched := make([]models.Dependency, 0)
		for _, d := range all {
			if strings.Contains(strings.ToLower(d.Name), q) {
				matched = append(matched, d)
			}
		}
		return matched, nil
	}
	return s.list(ctx, "search dependencies",
		selectColumns+` WHERE instr(lower(name), lower(?)) > 0`+orderBy, query)
}

// Exists reports whether a dependency with the exact name exists.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM dependencies WHERE name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, wrap("check dependency exists", err)
	}
	return exists, nil
}

// FindUpdatedBetween returns dependencies with either last-updated timestamp in [start, end].
func (s *Store) FindUpdatedBetween(ctx context.Context, start, end time.Time) ([]models.Dependency, error) {
	return s.list(ctx, "find updated between", selectColumns+`
		WHERE (test_last_updated BETWEEN ?1 AND ?2)
		   OR (production_last_updated BETWEEN ?1 AND ?2)`+orderBy,
		formatTime(start), formatTime(end))
}

// FindNextUpdateBetween returns dependencies with either scheduled update in [start, end].
func (s *Store) FindNextUpdateBetween(ctx context.Context, start, end time.Time) ([]models.Dependency, error) {
	return s.list(ctx, "find next update between", selectColumns+`
		WHERE (test_next_update BETWEEN ?1 AND ?2)
		   OR (production_next_update BETWEEN ?1 AND ?2)`+orderBy,
		formatTime(start), formatTime(end))
}

// Create inserts a new dependency. The existence check and insert share one
// transaction, and the UNIQUE constraint backs it up.
func (s *Store) Create(ctx context.Context, in models.DependencyInput) (*models.Dependency, error) {
	dep, err := s.opts.NewRecord(in)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("begin create", err)
	}
	defer tx.Rollback()

	var taken bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM dependencies WHERE name = ?)`, dep.Name).Scan(&taken); err != nil {
		return nil, wrap("check dependency exists", err)
	}
	if taken {
		return nil, &store.DuplicateNameError{Name: dep.Name}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dependencies
		(id, name, test_version, prod_version,
		 test_last_updated, production_last_updated, test_next_update, production_next_update,
		 source_url, changelog_url, homepage_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		dep.ID,
		dep.Name,
		dep.TestVersion,
		nullString(dep.ProdVersion),
		nullTime(dep.TestLastUpdated),
		nullTime(dep.ProductionLastUpdated),
		nullTime(dep.TestNextUpdate),
		nullTime(dep.ProductionNextUpdate),
		nullString(dep.SourceURL),
		nullString(dep.ChangelogURL),
		nullString(dep.HomepageURL),
		formatTime(dep.CreatedAt),
		formatTime(dep.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return nil, &store.DuplicateNameError{Name: dep.Name}
	}
	if err != nil {
		return nil, wrap(fmt.Sprintf("insert dependency %s", dep.Name), err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("commit create", err)
	}
	return &dep, nil
}

// Count returns the number of stored dependencies.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dependencies`).Scan(&n); err != nil {
		return 0, wrap("count dependencies", err)
	}
	return n, nil
}

func (s *Store) get(ctx context.Context, op, query string, arg any) (*models.Dependency, error) {
	dep, err := scanDependency(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return dep, nil
}

func (s *Store) list(ctx context.Context, op, query string, args ...any) ([]models.Dependency, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	deps := make([]models.Dependency, 0)
	for rows.Next() {
		dep, err := scanDependency(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		deps = append(deps, *dep)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return deps, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDependency(row scanner) (*models.Dependency, error) {
	var dep models.Dependency
	var prodVersion, sourceURL, changelogURL, homepageURL sql.NullString
	var testLast, prodLast, testNext, prodNext sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&dep.ID,
		&dep.Name,
		&dep.TestVersion,
		&prodVersion,
		&testLast,
		&prodLast,
		&testNext,
		&prodNext,
		&sourceURL,
		&changelogURL,
		&homepageURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	dep.ProdVersion = stringPtr(prodVersion)
	dep.SourceURL = stringPtr(sourceURL)
	dep.ChangelogURL = stringPtr(changelogURL)
	dep.HomepageURL = stringPtr(homepageURL)

	fields := []struct {
		name string
		raw  sql.NullString
		dst  **time.Time
	}{
		{"test_last_updated", testLast, &dep.TestLastUpdated},
		{"production_last_updated", prodLast, &dep.ProductionLastUpdated},
		{"test_next_update", testNext, &dep.TestNextUpdate},
		{"production_next_update", prodNext, &dep.ProductionNextUpdate},
	}
	for _, f := range fields {
		if !f.raw.Valid {
			continue
		}
		t, err := parseTime(f.name, f.raw.String)
		if err != nil {
			return nil, err
		}
		*f.dst = &t
	}

	if dep.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if dep.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &dep, nil
}

func formatTime(t time.Time) string {
	return models.Normalize(t).Format(timeLayout)
}

func parseTime(field, raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, &models.ParseError{Field: field, Value: raw, Err: err}
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func isNonASCII(r rune) bool {
	return r > 127
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func isConnectionError(err error) bool {
	return errors.Is(err, sql.ErrConnDone) || (err != nil && strings.Contains(err.Error(), "database is closed"))
}
