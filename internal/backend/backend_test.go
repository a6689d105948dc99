package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/deptrack/internal/config"
	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/sqlite"
	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.Config{Store: config.StoreMemory}, discard)
	require.NoError(t, err)
	defer st.Close(ctx)

	assert.IsType(t, &store.Memory{}, st)
}

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "deps.db")}

	st, err := Open(ctx, cfg, discard)
	require.NoError(t, err)
	defer st.Close(ctx)

	require.IsType(t, &sqlite.Store{}, st)
	_, err = st.Create(ctx, models.DependencyInput{Name: "libX", TestVersion: "1.0"})
	require.NoError(t, err)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenUnknownStore(t *testing.T) {
	_, err := Open(context.Background(), config.Config{Store: "etcd"}, discard)
	assert.ErrorContains(t, err, `unknown store "etcd"`)
}
