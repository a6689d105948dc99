package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/raphaelgruber/deptrack/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T, opts ...store.Option) store.Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, openMemory)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dependencies.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	created, err := s.Create(ctx, models.DependencyInput{
		Name:            "hibernate-core",
		TestVersion:     "6.4.1",
		ProdVersion:     storetest.Ptr("6.3.1"),
		TestLastUpdated: storetest.At(-200),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	got, err := reopened.GetByName(ctx, "hibernate-core")
	require.NoError(t, err)
	storetest.AssertSameDependency(t, *created, *got)
}

// An uninitialized database surfaces ErrStorageUnavailable rather than a raw driver error.
func TestSQLiteNoSchemaIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close(ctx)

	_, err = s.GetAll(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrStorageUnavailable), "got %v", err)

	_, err = s.Create(ctx, models.DependencyInput{Name: "libX", TestVersion: "1.0"})
	assert.True(t, errors.Is(err, store.ErrStorageUnavailable), "got %v", err)
}

func TestSQLiteUniqueConstraintBacksCreate(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close(ctx)

	_, err = s.DB().ExecContext(ctx, `
		INSERT INTO dependencies (id, name, test_version, created_at, updated_at)
		VALUES ('raw-id', 'libX', '1.0', ?, ?)`,
		formatTime(storetest.Base), formatTime(storetest.Base))
	require.NoError(t, err)

	_, err = s.Create(ctx, models.DependencyInput{Name: "libX", TestVersion: "2.0"})
	assert.True(t, errors.Is(err, store.ErrDuplicateName), "got %v", err)
}

func TestSQLiteSearchFoldsUnicode(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, err := s.Create(ctx, models.DependencyInput{Name: "ÉCLAIR-utils", TestVersion: "1"})
	require.NoError(t, err)

	got, err := s.Search(ctx, "éclair")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ÉCLAIR-utils", got[0].Name)
}

func TestTimeLayoutSortsLexically(t *testing.T) {
	earlier := formatTime(storetest.Base)
	later := formatTime(storetest.Base.Add(500_000_000))
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later))

	parsed, err := parseTime("created_at", later)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(storetest.Base.Add(500_000_000)))
}
