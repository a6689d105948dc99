// Package stats computes read-only health and staleness summaries over a
// snapshot of the dependency collection.
package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
)

const (
	// DefaultStaleDays is the staleness threshold when the caller gives none.
	DefaultStaleDays = 180

	// RecentWindow is how far back an update still counts as recent.
	RecentWindow = 30 * 24 * time.Hour
)

// HealthSummary aggregates the four health categories over the collection.
type HealthSummary struct {
	TotalCount                  int      `json:"totalCount"`
	VersionDriftCount           int      `json:"versionDriftCount"`
	VersionDriftDependencies    []string `json:"versionDriftDependencies"`
	OverdueUpdatesCount         int      `json:"overdueUpdatesCount"`
	OverdueUpdatesDependencies  []string `json:"overdueUpdatesDependencies"`
	TestOnlyCount               int      `json:"testOnlyCount"`
	TestOnlyDependencies        []string `json:"testOnlyDependencies"`
	RecentlyUpdatedCount        int      `json:"recentlyUpdatedCount"`
	RecentlyUpdatedDependencies []string `json:"recentlyUpdatedDependencies"`
}

// StaleSummary lists stale dependencies and the stalest among them.
// OldestDependency is nil when nothing is stale.
type StaleSummary struct {
	StaleDependencies    []string `json:"staleDependencies"`
	StaleCount           int      `json:"staleCount"`
	DaysThreshold        int      `json:"daysThreshold"`
	OldestDependency     *string  `json:"oldestDependency"`
	OldestDependencyDays int      `json:"oldestDependencyDays"`
}

// NeverUpdatedPolicy decides how records without any last-updated timestamp
// are classified.
type NeverUpdatedPolicy int

const (
	// FallbackToCreated uses created_at in place of the missing timestamp.
	FallbackToCreated NeverUpdatedPolicy = iota
	// AlwaysStale marks such records stale regardless of age.
	AlwaysStale
)

// String returns the configuration spelling of the policy.
func (p NeverUpdatedPolicy) String() string {
	if p == AlwaysStale {
		return "always"
	}
	return "created"
}

// ParseNeverUpdatedPolicy accepts "created" (or empty) and "always".
func ParseNeverUpdatedPolicy(s string) (NeverUpdatedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "created":
		return FallbackToCreated, nil
	case "always":
		return AlwaysStale, nil
	default:
		return FallbackToCreated, fmt.Errorf("unknown never-updated policy %q (want created or always)", s)
	}
}

// HealthOverview classifies every dependency against now.
func HealthOverview(deps []models.Dependency, now time.Time) HealthSummary {
	recentSince := now.Add(-RecentWindow)

	s := HealthSummary{
		TotalCount:                  len(deps),
		VersionDriftDependencies:    []string{},
		OverdueUpdatesDependencies:  []string{},
		TestOnlyDependencies:        []string{},
		RecentlyUpdatedDependencies: []string{},
	}
	for _, d := range deps {
		if d.HasVersionDrift() {
			s.VersionDriftDependencies = append(s.VersionDriftDependencies, d.Name)
		}
		if d.IsOverdue(now) {
			s.OverdueUpdatesDependencies = append(s.OverdueUpdatesDependencies, d.Name)
		}
		if d.IsTestOnly() {
			s.TestOnlyDependencies = append(s.TestOnlyDependencies, d.Name)
		}
		if d.UpdatedSince(recentSince) {
			s.RecentlyUpdatedDependencies = append(s.RecentlyUpdatedDependencies, d.Name)
		}
	}
	s.VersionDriftCount = len(s.VersionDriftDependencies)
	s.OverdueUpdatesCount = len(s.OverdueUpdatesDependencies)
	s.TestOnlyCount = len(s.TestOnlyDependencies)
	s.RecentlyUpdatedCount = len(s.RecentlyUpdatedDependencies)
	return s
}

// StaleDependencies reports dependencies whose most recent update is older than
// daysThreshold days before now. Ties for the stalest record go to the first
// one in deps order.
func StaleDependencies(deps []models.Dependency, daysThreshold int, now time.Time, policy NeverUpdatedPolicy) (StaleSummary, error) {
	if daysThreshold < 0 {
		return StaleSummary{}, &models.ValidationError{Field: "days_threshold", Reason: "must not be negative"}
	}

	// AddDate keeps very large thresholds from overflowing time.Duration.
	cutoff := now.UTC().AddDate(0, 0, -daysThreshold)
	s := StaleSummary{
		StaleDependencies: []string{},
		DaysThreshold:     daysThreshold,
	}

	for _, d := range deps {
		stale, age := classify(d, cutoff, now, policy)
		if !stale {
			continue
		}
		s.StaleDependencies = append(s.StaleDependencies, d.Name)
		if s.OldestDependency == nil || age > s.OldestDependencyDays {
			name := d.Name
			s.OldestDependency = &name
			s.OldestDependencyDays = age
		}
	}
	s.StaleCount = len(s.StaleDependencies)
	return s, nil
}

func classify(d models.Dependency, cutoff, now time.Time, policy NeverUpdatedPolicy) (bool, int) {
	last := d.LastUpdated()
	if last == nil {
		age := ageInDays(d.CreatedAt, now)
		if policy == AlwaysStale {
			return true, age
		}
		return d.CreatedAt.Before(cutoff), age
	}
	return last.Before(cutoff), ageInDays(*last, now)
}

// ageInDays floors the elapsed time to whole days.
func ageInDays(from, now time.Time) int {
	return int(math.Floor(now.Sub(from).Hours() / 24))
}
