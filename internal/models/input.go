package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DependencyInput holds the fields accepted when creating a dependency.
// ID and the created/updated timestamps are always assigned by the store.
type DependencyInput struct {
	Name                  string
	TestVersion           string
	ProdVersion           *string
	TestLastUpdated       *time.Time
	ProductionLastUpdated *time.Time
	TestNextUpdate        *time.Time
	ProductionNextUpdate  *time.Time
	SourceURL             *string
	ChangelogURL          *string
	HomepageURL           *string
}

// Validate checks required fields and column limits.
func (in DependencyInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(in.TestVersion) == "" {
		return &ValidationError{Field: "test_version", Reason: "is required"}
	}

	limits := []struct {
		field string
		value *string
		max   int
	}{
		{"name", &in.Name, MaxNameLen},
		{"test_version", &in.TestVersion, MaxVersionLen},
		{"prod_version", in.ProdVersion, MaxVersionLen},
		{"source_url", in.SourceURL, MaxURLLen},
		{"changelog_url", in.ChangelogURL, MaxURLLen},
		{"homepage_url", in.HomepageURL, MaxURLLen},
	}
	for _, l := range limits {
		if l.value != nil && utf8.RuneCountInString(*l.value) > l.max {
			return &ValidationError{Field: l.field, Reason: fmt.Sprintf("exceeds %d characters", l.max)}
		}
	}
	return nil
}

// NewDependency builds a record from the input with the given identity and creation time.
// Timestamps are normalized so the record round-trips through any backend unchanged.
func NewDependency(id string, in DependencyInput, now time.Time) Dependency {
	now = Normalize(now)
	return Dependency{
		ID:                    id,
		Name:                  in.Name,
		TestVersion:           in.TestVersion,
		ProdVersion:           clonePtr(in.ProdVersion),
		TestLastUpdated:       NormalizePtr(in.TestLastUpdated),
		ProductionLastUpdated: NormalizePtr(in.ProductionLastUpdated),
		TestNextUpdate:        NormalizePtr(in.TestNextUpdate),
		ProductionNextUpdate:  NormalizePtr(in.ProductionNextUpdate),
		SourceURL:             clonePtr(in.SourceURL),
		ChangelogURL:          clonePtr(in.ChangelogURL),
		HomepageURL:           clonePtr(in.HomepageURL),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
