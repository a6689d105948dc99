package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
)

// Memory is a Store backed by process memory.
// All methods are thread-safe; Create holds the write lock across the
// uniqueness check and the insert.
type Memory struct {
	mu     sync.RWMutex
	opts   Options
	deps   []models.Dependency
	byID   map[string]int
	byName map[string]int
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		opts:   BuildOptions(opts...),
		byID:   make(map[string]int),
		byName: make(map[string]int),
	}
}

func (m *Memory) GetAll(ctx context.Context) ([]models.Dependency, error) {
	return m.filter(ctx, func(models.Dependency) bool { return true })
}

func (m *Memory) GetByID(ctx context.Context, id string) (*models.Dependency, error) {
	return m.lookup(ctx, m.byID, id)
}

func (m *Memory) GetByName(ctx context.Context, name string) (*models.Dependency, error) {
	return m.lookup(ctx, m.byName, name)
}

func (m *Memory) Search(ctx context.Context, query string) ([]models.Dependency, error) {
	q := strings.ToLower(query)
	return m.filter(ctx, func(d models.Dependency) bool {
		return strings.Contains(strings.ToLower(d.Name), q)
	})
}

func (m *Memory) Exists(ctx context.Context, name string) (bool, error) {
	if err := m.readable(ctx); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byName[name]
	return ok, nil
}

func (m *Memory) FindUpdatedBetween(ctx context.Context, start, end time.Time) ([]models.Dependency, error) {
	return m.filter(ctx, func(d models.Dependency) bool { return d.UpdatedBetween(start, end) })
}

func (m *Memory) FindNextUpdateBetween(ctx context.Context, start, end time.Time) ([]models.Dependency, error) {
	return m.filter(ctx, func(d models.Dependency) bool { return d.NextUpdateBetween(start, end) })
}

func (m *Memory) Create(ctx context.Context, in models.DependencyInput) (*models.Dependency, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, Unavailable("create dependency", errClosed)
	}

	dep, err := m.opts.NewRecord(in)
	if err != nil {
		return nil, err
	}
	if _, taken := m.byName[dep.Name]; taken {
		return nil, &DuplicateNameError{Name: dep.Name}
	}
	if _, taken := m.byID[dep.ID]; taken {
		return nil, Unavailable("create dependency", errIDCollision)
	}

	m.deps = append(m.deps, dep)
	m.byID[dep.ID] = len(m.deps) - 1
	m.byName[dep.Name] = len(m.deps) - 1

	out := dep.Clone()
	return &out, nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	if err := m.readable(ctx); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.deps), nil
}

// Close marks the store unavailable; later calls fail with ErrStorageUnavailable.
func (m *Memory) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) lookup(ctx context.Context, index map[string]int, key string) (*models.Dependency, error) {
	if err := m.readable(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := index[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := m.deps[i].Clone()
	return &out, nil
}

func (m *Memory) filter(ctx context.Context, keep func(models.Dependency) bool) ([]models.Dependency, error) {
	if err := m.readable(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]models.Dependency, 0, len(m.deps))
	for _, d := range m.deps {
		if keep(d) {
			out = append(out, d.Clone())
		}
	}
	m.mu.RUnlock()

	SortDependencies(out)
	return out, nil
}

func (m *Memory) readable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Unavailable("read dependencies", errClosed)
	}
	return nil
}

// SortDependencies orders deps by creation time, then name.
func SortDependencies(deps []models.Dependency) {
	slices.SortStableFunc(deps, func(a, b models.Dependency) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
