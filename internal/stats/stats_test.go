package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func ptr[T any](v T) *T { return &v }

func daysAgo(n int) *time.Time {
	t := now.Add(-time.Duration(n) * day)
	return &t
}

func dep(name string, mutate func(*models.Dependency)) models.Dependency {
	d := models.Dependency{ID: name, Name: name, TestVersion: "1.0", CreatedAt: *daysAgo(1), UpdatedAt: *daysAgo(1)}
	if mutate != nil {
		mutate(&d)
	}
	return d
}

func TestHealthOverviewEmpty(t *testing.T) {
	s := HealthOverview(nil, now)

	assert.Zero(t, s.TotalCount)
	assert.Zero(t, s.VersionDriftCount)
	assert.Zero(t, s.OverdueUpdatesCount)
	assert.Zero(t, s.TestOnlyCount)
	assert.Zero(t, s.RecentlyUpdatedCount)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null", "lists serialize as [] not null")
}

func TestHealthOverviewDriftExample(t *testing.T) {
	s := HealthOverview([]models.Dependency{
		dep("libX", func(d *models.Dependency) { d.ProdVersion = ptr("0.9") }),
	}, now)

	assert.Equal(t, 1, s.TotalCount)
	assert.Equal(t, 1, s.VersionDriftCount)
	assert.Equal(t, []string{"libX"}, s.VersionDriftDependencies)
	assert.Equal(t, 0, s.TestOnlyCount)
}

func TestHealthOverviewTestOnlyExcludedFromDrift(t *testing.T) {
	s := HealthOverview([]models.Dependency{
		dep("no-prod", nil),
		dep("blank-prod", func(d *models.Dependency) { d.ProdVersion = ptr("  ") }),
	}, now)

	assert.Equal(t, []string{"no-prod", "blank-prod"}, s.TestOnlyDependencies)
	assert.Empty(t, s.VersionDriftDependencies)
}

func TestHealthOverviewOverdueAndRecent(t *testing.T) {
	atNow := now
	deps := []models.Dependency{
		dep("overdue-test", func(d *models.Dependency) { d.TestNextUpdate = daysAgo(1) }),
		dep("overdue-prod", func(d *models.Dependency) { d.ProductionNextUpdate = daysAgo(40) }),
		dep("due-now", func(d *models.Dependency) { d.TestNextUpdate = &atNow }),
		dep("recent-edge", func(d *models.Dependency) { d.ProductionLastUpdated = daysAgo(30) }),
		dep("old", func(d *models.Dependency) { d.TestLastUpdated = daysAgo(31) }),
	}

	s := HealthOverview(deps, now)
	assert.Equal(t, []string{"overdue-test", "overdue-prod"}, s.OverdueUpdatesDependencies)
	assert.Equal(t, []string{"recent-edge"}, s.RecentlyUpdatedDependencies)
	assert.Equal(t, 5, s.TotalCount)
}

func TestStaleDependenciesThreshold(t *testing.T) {
	old := dep("old", func(d *models.Dependency) { d.TestLastUpdated = daysAgo(200) })
	fresh := dep("fresh", func(d *models.Dependency) { d.TestLastUpdated = daysAgo(10) })

	s, err := StaleDependencies([]models.Dependency{old, fresh}, DefaultStaleDays, now, FallbackToCreated)
	require.NoError(t, err)

	assert.Equal(t, []string{"old"}, s.StaleDependencies)
	assert.Equal(t, 1, s.StaleCount)
	assert.Equal(t, 180, s.DaysThreshold)
	require.NotNil(t, s.OldestDependency)
	assert.Equal(t, "old", *s.OldestDependency)
	assert.Equal(t, 200, s.OldestDependencyDays)
}

func TestStaleUsesLatestOfBothEnvironments(t *testing.T) {
	d := dep("mixed", func(d *models.Dependency) {
		d.TestLastUpdated = daysAgo(400)
		d.ProductionLastUpdated = daysAgo(20)
	})

	s, err := StaleDependencies([]models.Dependency{d}, 180, now, FallbackToCreated)
	require.NoError(t, err)
	assert.Empty(t, s.StaleDependencies)
	assert.Nil(t, s.OldestDependency)
	assert.Zero(t, s.OldestDependencyDays)
}

func TestStaleBoundaryIsExclusive(t *testing.T) {
	d := dep("edge", func(d *models.Dependency) { d.TestLastUpdated = daysAgo(180) })

	s, err := StaleDependencies([]models.Dependency{d}, 180, now, FallbackToCreated)
	require.NoError(t, err)
	assert.Empty(t, s.StaleDependencies, "updated exactly at the threshold is not stale")
}

func TestStaleNeverUpdatedPolicies(t *testing.T) {
	freshNever := dep("fresh-never", func(d *models.Dependency) { d.CreatedAt = *daysAgo(3) })
	oldNever := dep("old-never", func(d *models.Dependency) { d.CreatedAt = *daysAgo(365) })
	deps := []models.Dependency{freshNever, oldNever}

	t.Run("fallback to created", func(t *testing.T) {
		s, err := StaleDependencies(deps, 180, now, FallbackToCreated)
		require.NoError(t, err)
		assert.Equal(t, []string{"old-never"}, s.StaleDependencies)
		assert.Equal(t, 365, s.OldestDependencyDays)
	})

	t.Run("always stale", func(t *testing.T) {
		s, err := StaleDependencies(deps, 180, now, AlwaysStale)
		require.NoError(t, err)
		assert.Equal(t, []string{"fresh-never", "old-never"}, s.StaleDependencies)
		require.NotNil(t, s.OldestDependency)
		assert.Equal(t, "old-never", *s.OldestDependency)
		assert.Equal(t, 365, s.OldestDependencyDays)
	})
}

func TestStaleTiesGoToFirstEncountered(t *testing.T) {
	a := dep("a", func(d *models.Dependency) { d.TestLastUpdated = daysAgo(300) })
	b := dep("b", func(d *models.Dependency) { d.ProductionLastUpdated = daysAgo(300) })

	s, err := StaleDependencies([]models.Dependency{a, b}, 180, now, FallbackToCreated)
	require.NoError(t, err)
	require.NotNil(t, s.OldestDependency)
	assert.Equal(t, "a", *s.OldestDependency)
}

func TestStaleAgeFloorsPartialDays(t *testing.T) {
	last := now.Add(-(200*day + 23*time.Hour))
	d := dep("partial", func(d *models.Dependency) { d.TestLastUpdated = &last })

	s, err := StaleDependencies([]models.Dependency{d}, 180, now, FallbackToCreated)
	require.NoError(t, err)
	assert.Equal(t, 200, s.OldestDependencyDays)
}

func TestStaleHugeThresholdKeepsCutoffInThePast(t *testing.T) {
	fresh := dep("fresh", func(d *models.Dependency) { d.TestLastUpdated = daysAgo(1) })

	// 106752 days is the first threshold past the range of time.Duration.
	for _, days := range []int{106751, 106752, 200000, 3000000} {
		s, err := StaleDependencies([]models.Dependency{fresh}, days, now, FallbackToCreated)
		require.NoError(t, err)
		assert.Empty(t, s.StaleDependencies, "days=%d", days)
		assert.Equal(t, days, s.DaysThreshold)
	}
}

func TestStaleRejectsNegativeThreshold(t *testing.T) {
	_, err := StaleDependencies(nil, -1, now, FallbackToCreated)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "days_threshold", verr.Field)
}

func TestStaleSummaryJSON(t *testing.T) {
	s, err := StaleDependencies(nil, 90, now, FallbackToCreated)
	require.NoError(t, err)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"staleDependencies": [],
		"staleCount": 0,
		"daysThreshold": 90,
		"oldestDependency": null,
		"oldestDependencyDays": 0
	}`, string(raw))
}

func TestParseNeverUpdatedPolicy(t *testing.T) {
	for in, want := range map[string]NeverUpdatedPolicy{
		"":        FallbackToCreated,
		"created": FallbackToCreated,
		"ALWAYS":  AlwaysStale,
	} {
		got, err := ParseNeverUpdatedPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseNeverUpdatedPolicy("sometimes")
	assert.Error(t, err)
}
