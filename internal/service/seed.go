package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/store"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedEntry is one dependency in a seed file. Timestamp fields take either an
// ISO-8601 value or a day offset from the seeding time such as "-15d" or "+30d".
type SeedEntry struct {
	Name                  string  `yaml:"name"`
	TestVersion           string  `yaml:"test_version"`
	ProdVersion           *string `yaml:"prod_version"`
	TestLastUpdated       string  `yaml:"test_last_updated"`
	ProductionLastUpdated string  `yaml:"production_last_updated"`
	TestNextUpdate        string  `yaml:"test_next_update"`
	ProductionNextUpdate  string  `yaml:"production_next_update"`
	SourceURL             *string `yaml:"source_url"`
	ChangelogURL          *string `yaml:"changelog_url"`
	HomepageURL           *string `yaml:"homepage_url"`
}

var dayOffset = regexp.MustCompile(`^([+-])(\d+)d$`)

// DefaultSeed returns the built-in sample dependencies.
func DefaultSeed() ([]SeedEntry, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// LoadSeedFile reads seed entries from a YAML file.
func LoadSeedFile(path string) ([]SeedEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes a YAML sequence of seed entries.
func LoadSeed(r io.Reader) ([]SeedEntry, error) {
	var entries []SeedEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return []SeedEntry{}, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return entries, nil
}

// Seed populates an empty store with entries. It returns the number of
// dependencies created, or zero when the store already holds data.
// Every entry is resolved and validated before the first insert, so a bad
// seed file leaves the store empty.
func (s *DependencyService) Seed(ctx context.Context, entries []SeedEntry) (int, error) {
	existing, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count dependencies: %w", err)
	}
	if existing > 0 {
		s.logger.Info("store already has dependencies, skipping seed", "count", existing)
		return 0, nil
	}

	inputs, err := resolveSeed(entries, s.now())
	if err != nil {
		return 0, err
	}

	created := 0
	for _, in := range inputs {
		if _, err := s.store.Create(ctx, in); err != nil {
			return created, fmt.Errorf("seed %s: %w", in.Name, err)
		}
		created++
	}

	s.logger.Info("seeded sample dependencies", "count", created)
	return created, nil
}

func resolveSeed(entries []SeedEntry, now time.Time) ([]models.DependencyInput, error) {
	inputs := make([]models.DependencyInput, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		in, err := e.input(now)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", e.Name, err)
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("seed %s: %w", e.Name, err)
		}
		if seen[in.Name] {
			return nil, fmt.Errorf("seed %s: %w", e.Name, &store.DuplicateNameError{Name: in.Name})
		}
		seen[in.Name] = true
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func (e SeedEntry) input(now time.Time) (models.DependencyInput, error) {
	in := models.DependencyInput{
		Name:         e.Name,
		TestVersion:  e.TestVersion,
		ProdVersion:  e.ProdVersion,
		SourceURL:    e.SourceURL,
		ChangelogURL: e.ChangelogURL,
		HomepageURL:  e.HomepageURL,
	}

	fields := []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"test_last_updated", e.TestLastUpdated, &in.TestLastUpdated},
		{"production_last_updated", e.ProductionLastUpdated, &in.ProductionLastUpdated},
		{"test_next_update", e.TestNextUpdate, &in.TestNextUpdate},
		{"production_next_update", e.ProductionNextUpdate, &in.ProductionNextUpdate},
	}
	for _, f := range fields {
		t, err := resolveSeedTime(f.name, f.raw, now)
		if err != nil {
			return models.DependencyInput{}, err
		}
		*f.dst = t
	}
	return in, nil
}

func resolveSeedTime(field, raw string, now time.Time) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	m := dayOffset.FindStringSubmatch(raw)
	if m == nil {
		return models.ParseOptionalTimestamp(field, raw)
	}

	days, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, &models.ParseError{Field: field, Value: raw, Err: err}
	}
	if m[1] == "-" {
		days = -days
	}
	t := now.Add(time.Duration(days) * 24 * time.Hour)
	return &t, nil
}
