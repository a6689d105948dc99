// Package storetest provides a conformance suite shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T, opts ...store.Option) store.Store

// Base is the reference instant used by the suite's clocks and fixtures.
var Base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// SteppingClock returns a thread-safe clock that advances by step on every call.
func SteppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// At returns Base shifted by the given number of days.
func At(days int) *time.Time {
	t := Base.AddDate(0, 0, days)
	return &t
}

// AssertSameDependency compares two records field by field, using time.Equal for timestamps.
func AssertSameDependency(t *testing.T, want, got models.Dependency) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID, "id")
	assert.Equal(t, want.Name, got.Name, "name")
	assert.Equal(t, want.TestVersion, got.TestVersion, "test_version")
	assert.Equal(t, want.ProdVersion, got.ProdVersion, "prod_version")
	assert.Equal(t, want.SourceURL, got.SourceURL, "source_url")
	assert.Equal(t, want.ChangelogURL, got.ChangelogURL, "changelog_url")
	assert.Equal(t, want.HomepageURL, got.HomepageURL, "homepage_url")
	assertSameTime(t, &want.CreatedAt, &got.CreatedAt, "created_at")
	assertSameTime(t, &want.UpdatedAt, &got.UpdatedAt, "updated_at")
	assertSameTime(t, want.TestLastUpdated, got.TestLastUpdated, "test_last_updated")
	assertSameTime(t, want.ProductionLastUpdated, got.ProductionLastUpdated, "production_last_updated")
	assertSameTime(t, want.TestNextUpdate, got.TestNextUpdate, "test_next_update")
	assertSameTime(t, want.ProductionNextUpdate, got.ProductionNextUpdate, "production_next_update")
}

func assertSameTime(t *testing.T, want, got *time.Time, field string) {
	t.Helper()
	if want == nil || got == nil {
		assert.Equal(t, want == nil, got == nil, "%s presence", field)
		return
	}
	assert.True(t, want.Equal(*got), "%s: want %v, got %v", field, *want, *got)
}

func names(deps []models.Dependency) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Name
	}
	return out
}

func mustCreate(t *testing.T, s store.Store, in models.DependencyInput) *models.Dependency {
	t.Helper()
	dep, err := s.Create(context.Background(), in)
	require.NoError(t, err, "create %s", in.Name)
	return dep
}

// Run executes the conformance suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("create then lookup round-trips", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t, store.WithClock(SteppingClock(Base, time.Second)))

		in := models.DependencyInput{
			Name:                  "spring-boot-starter-web",
			TestVersion:           "3.2.1",
			ProdVersion:           Ptr("3.1.5"),
			TestLastUpdated:       At(-15),
			ProductionLastUpdated: At(-45),
			TestNextUpdate:        At(30),
			ProductionNextUpdate:  At(60),
			SourceURL:             Ptr("https://github.com/spring-projects/spring-boot"),
			ChangelogURL:          Ptr("https://github.com/spring-projects/spring-boot/releases"),
			HomepageURL:           Ptr("https://spring.io/projects/spring-boot"),
		}
		created := mustCreate(t, s, in)

		assert.NotEmpty(t, created.ID)
		assert.True(t, created.CreatedAt.Equal(Base))
		assert.False(t, created.UpdatedAt.Before(created.CreatedAt))

		exists, err := s.Exists(ctx, in.Name)
		require.NoError(t, err)
		assert.True(t, exists)

		byID, err := s.GetByID(ctx, created.ID)
		require.NoError(t, err)
		AssertSameDependency(t, *created, *byID)

		byName, err := s.GetByName(ctx, in.Name)
		require.NoError(t, err)
		AssertSameDependency(t, *created, *byName)
	})

	t.Run("optional fields stay absent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created := mustCreate(t, s, models.DependencyInput{Name: "lombok", TestVersion: "1.18.30"})
		got, err := s.GetByID(ctx, created.ID)
		require.NoError(t, err)

		assert.Nil(t, got.ProdVersion)
		assert.Nil(t, got.TestLastUpdated)
		assert.Nil(t, got.ProductionNextUpdate)
		assert.Nil(t, got.HomepageURL)
		assert.True(t, got.IsTestOnly())
	})

	t.Run("caller input is not aliased by the stored record", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		prod, homepage := "1.0", "https://example.com"
		created := mustCreate(t, s, models.DependencyInput{
			Name:        "aliased",
			TestVersion: "1.0",
			ProdVersion: &prod,
			HomepageURL: &homepage,
		})
		prod, homepage = "9.9", "https://evil.example.com"

		got, err := s.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ProdVersion)
		assert.Equal(t, "1.0", *got.ProdVersion)
		require.NotNil(t, got.HomepageURL)
		assert.Equal(t, "https://example.com", *got.HomepageURL)

		*created.ProdVersion = "0.1"
		again, err := s.GetByName(ctx, "aliased")
		require.NoError(t, err)
		assert.Equal(t, "1.0", *again.ProdVersion)
	})

	t.Run("duplicate name is rejected without writing", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		mustCreate(t, s, models.DependencyInput{Name: "libX", TestVersion: "1.0"})

		_, err := s.Create(ctx, models.DependencyInput{Name: "libX", TestVersion: "2.0"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrDuplicateName), "got %v", err)

		var dup *store.DuplicateNameError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "libX", dup.Name)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		got, err := s.GetByName(ctx, "libX")
		require.NoError(t, err)
		assert.Equal(t, "1.0", got.TestVersion)
	})

	t.Run("invalid input is rejected", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.Create(ctx, models.DependencyInput{Name: "", TestVersion: "1.0"})
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Equal(t, "name", verr.Field)

		_, err = s.Create(ctx, models.DependencyInput{Name: "libX"})
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Equal(t, "test_version", verr.Field)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("missing records report not found", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		mustCreate(t, s, models.DependencyInput{Name: "libX", TestVersion: "1.0"})

		_, err := s.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

		_, err = s.GetByName(ctx, "LIBX")
		assert.True(t, errors.Is(err, store.ErrNotFound), "name match is case-sensitive, got %v", err)

		exists, err := s.Exists(ctx, "libx")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("get all is ordered by creation", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t, store.WithClock(SteppingClock(Base, time.Minute)))

		for _, name := range []string{"zeta", "alpha", "mid"} {
			mustCreate(t, s, models.DependencyInput{Name: name, TestVersion: "1"})
		}

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, names(all))
	})

	t.Run("search", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t, store.WithClock(SteppingClock(Base, time.Minute)))
		for _, name := range []string{"spring-boot-starter-web", "spring-data-jpa", "Jackson-Databind", "100%_pure"} {
			mustCreate(t, s, models.DependencyInput{Name: name, TestVersion: "1"})
		}

		all, err := s.GetAll(ctx)
		require.NoError(t, err)

		everything, err := s.Search(ctx, "")
		require.NoError(t, err)
		assert.ElementsMatch(t, names(all), names(everything))

		spring, err := s.Search(ctx, "SPRING")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"spring-boot-starter-web", "spring-data-jpa"}, names(spring))

		jackson, err := s.Search(ctx, "databind")
		require.NoError(t, err)
		assert.Equal(t, []string{"Jackson-Databind"}, names(jackson))

		literal, err := s.Search(ctx, "%_")
		require.NoError(t, err)
		assert.Equal(t, []string{"100%_pure"}, names(literal))

		none, err := s.Search(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("find updated between is inclusive and deduplicated", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t, store.WithClock(SteppingClock(Base, time.Minute)))

		start, end := At(-30), At(-10)
		mustCreate(t, s, models.DependencyInput{Name: "on-start", TestVersion: "1", TestLastUpdated: start})
		mustCreate(t, s, models.DependencyInput{Name: "on-end", TestVersion: "1", ProductionLastUpdated: end})
		mustCreate(t, s, models.DependencyInput{Name: "both", TestVersion: "1", TestLastUpdated: At(-20), ProductionLastUpdated: At(-15)})
		mustCreate(t, s, models.DependencyInput{Name: "one-side", TestVersion: "1", TestLastUpdated: At(-40), ProductionLastUpdated: At(-12)})
		mustCreate(t, s, models.DependencyInput{Name: "outside", TestVersion: "1", TestLastUpdated: At(-31), ProductionLastUpdated: At(-9)})
		mustCreate(t, s, models.DependencyInput{Name: "never", TestVersion: "1"})
		mustCreate(t, s, models.DependencyInput{Name: "scheduled-only", TestVersion: "1", TestNextUpdate: At(-20)})

		got, err := s.FindUpdatedBetween(ctx, *start, *end)
		require.NoError(t, err)
		assert.Equal(t, []string{"on-start", "on-end", "both", "one-side"}, names(got))
	})

	t.Run("find next update between is inclusive and deduplicated", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t, store.WithClock(SteppingClock(Base, time.Minute)))

		start, end := At(10), At(60)
		mustCreate(t, s, models.DependencyInput{Name: "on-start", TestVersion: "1", ProductionNextUpdate: start})
		mustCreate(t, s, models.DependencyInput{Name: "on-end", TestVersion: "1", TestNextUpdate: end})
		mustCreate(t, s, models.DependencyInput{Name: "both", TestVersion: "1", TestNextUpdate: At(30), ProductionNextUpdate: At(50)})
		mustCreate(t, s, models.DependencyInput{Name: "late", TestVersion: "1", TestNextUpdate: At(61)})
		mustCreate(t, s, models.DependencyInput{Name: "updated-only", TestVersion: "1", TestLastUpdated: At(20)})

		got, err := s.FindNextUpdateBetween(ctx, *start, *end)
		require.NoError(t, err)
		assert.Equal(t, []string{"on-start", "on-end", "both"}, names(got))

		empty, err := s.FindNextUpdateBetween(ctx, *At(100), *At(200))
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("concurrent creates keep names unique", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Create(ctx, models.DependencyInput{Name: "contended", TestVersion: "1"})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, store.ErrDuplicateName), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, succeeded)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
