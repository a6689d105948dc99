// Package models defines the data structures tracked by deptrack.
package models

import (
	"strings"
	"time"
)

// Column limits carried over from the persisted schema.
const (
	MaxNameLen    = 100
	MaxVersionLen = 50
	MaxURLLen     = 500
)

// Dependency is one tracked software component with its test and production state.
type Dependency struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	TestVersion           string     `json:"testVersion"`
	ProdVersion           *string    `json:"prodVersion"`
	TestLastUpdated       *time.Time `json:"testLastUpdated"`
	ProductionLastUpdated *time.Time `json:"productionLastUpdated"`
	TestNextUpdate        *time.Time `json:"testNextUpdate"`
	ProductionNextUpdate  *time.Time `json:"productionNextUpdate"`
	SourceURL             *string    `json:"sourceUrl"`
	ChangelogURL          *string    `json:"changelogUrl"`
	HomepageURL           *string    `json:"homepageUrl"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// IsTestOnly reports whether the dependency has no production version.
// A blank prod version counts as absent.
func (d Dependency) IsTestOnly() bool {
	return d.ProdVersion == nil || strings.TrimSpace(*d.ProdVersion) == ""
}

// HasVersionDrift reports whether the production version differs from the test version.
// Versions are compared as plain strings.
func (d Dependency) HasVersionDrift() bool {
	if d.IsTestOnly() {
		return false
	}
	return *d.ProdVersion != d.TestVersion
}

// LastUpdated returns the most recent applied update across both environments,
// or nil if neither environment recorded one.
func (d Dependency) LastUpdated() *time.Time {
	return latest(d.TestLastUpdated, d.ProductionLastUpdated)
}

// IsOverdue reports whether any scheduled update lies strictly before now.
func (d Dependency) IsOverdue(now time.Time) bool {
	return before(d.TestNextUpdate, now) || before(d.ProductionNextUpdate, now)
}

// UpdatedSince reports whether either environment was updated at or after since.
func (d Dependency) UpdatedSince(since time.Time) bool {
	return atOrAfter(d.TestLastUpdated, since) || atOrAfter(d.ProductionLastUpdated, since)
}

// UpdatedBetween reports whether either last-updated timestamp falls in [start, end].
func (d Dependency) UpdatedBetween(start, end time.Time) bool {
	return within(d.TestLastUpdated, start, end) || within(d.ProductionLastUpdated, start, end)
}

// NextUpdateBetween reports whether either scheduled update falls in [start, end].
func (d Dependency) NextUpdateBetween(start, end time.Time) bool {
	return within(d.TestNextUpdate, start, end) || within(d.ProductionNextUpdate, start, end)
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a != nil && b != nil:
		if b.After(*a) {
			return b
		}
		return a
	case a != nil:
		return a
	default:
		return b
	}
}

func before(t *time.Time, ref time.Time) bool {
	return t != nil && t.Before(ref)
}

func atOrAfter(t *time.Time, ref time.Time) bool {
	return t != nil && !t.Before(ref)
}

func within(t *time.Time, start, end time.Time) bool {
	return t != nil && !t.Before(start) && !t.After(end)
}

// Normalize converts t to UTC at microsecond precision, the resolution every
// backend can round-trip.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NormalizePtr is Normalize for optional timestamps.
func NormalizePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := Normalize(*t)
	return &n
}

// Clone returns a copy that shares no pointers with d.
func (d Dependency) Clone() Dependency {
	c := d
	c.ProdVersion = clonePtr(d.ProdVersion)
	c.TestLastUpdated = clonePtr(d.TestLastUpdated)
	c.ProductionLastUpdated = clonePtr(d.ProductionLastUpdated)
	c.TestNextUpdate = clonePtr(d.TestNextUpdate)
	c.ProductionNextUpdate = clonePtr(d.ProductionNextUpdate)
	c.SourceURL = clonePtr(d.SourceURL)
	c.ChangelogURL = clonePtr(d.ChangelogURL)
	c.HomepageURL = clonePtr(d.HomepageURL)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
