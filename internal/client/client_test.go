package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raphaelgruber/deptrack/internal/client"
	"github.com/raphaelgruber/deptrack/internal/server"
	"github.com/raphaelgruber/deptrack/internal/service"
	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/raphaelgruber/deptrack/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "s3cret"

func startServer(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := service.NewDependencyService(store.NewMemory())
	entries, err := service.DefaultSeed()
	require.NoError(t, err)
	_, err = svc.Seed(context.Background(), entries)
	require.NoError(t, err)

	srv := server.New("0.1.0-test", logger, nil)
	srv.Setup()
	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{Service: svc, Logger: logger})

	h, err := srv.Handler(server.AuthConfig{Tokens: []string{token}})
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts.URL + "/mcp"
}

func connect(t *testing.T, endpoint string) *client.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Connect(ctx, client.Options{Endpoint: endpoint, Token: token, Version: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTypedHelpers(t *testing.T) {
	c := connect(t, startServer(t))
	ctx := context.Background()

	deps, err := c.ListDependencies(ctx)
	require.NoError(t, err)
	assert.Len(t, deps, 8)

	health, err := c.HealthOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, health.TotalCount)
	assert.Equal(t, 2, health.TestOnlyCount)

	stale, err := c.StaleDependencies(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 180, stale.DaysThreshold)
	assert.Equal(t, []string{"hibernate-core"}, stale.StaleDependencies)

	days := 1000
	stale, err = c.StaleDependencies(ctx, &days)
	require.NoError(t, err)
	assert.Zero(t, stale.StaleCount)
}

func TestToolsListsServerTools(t *testing.T) {
	c := connect(t, startServer(t))

	names, err := c.Tools(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "create_dependency")
	assert.Contains(t, names, "get_stale_dependencies")
}

func TestToolErrorCarriesMessage(t *testing.T) {
	c := connect(t, startServer(t))

	_, err := c.CallRaw(context.Background(), "get_dependency_by_name", map[string]any{"name": "log4j"})
	var te *client.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "get_dependency_by_name", te.Tool)
	assert.Equal(t, "Dependency with name 'log4j' not found", te.Message)
}

func TestCallCreatesDependency(t *testing.T) {
	c := connect(t, startServer(t))
	ctx := context.Background()

	var created map[string]any
	err := c.Call(ctx, "create_dependency", map[string]any{"name": "libX", "test_version": "1.0"}, &created)
	require.NoError(t, err)
	assert.Equal(t, "libX", created["name"])

	var exists struct {
		Exists bool `json:"exists"`
	}
	require.NoError(t, c.Call(ctx, "check_dependency_existence", map[string]any{"name": "libX"}, &exists))
	assert.True(t, exists.Exists)
}

func TestConnectRejectsBadToken(t *testing.T) {
	endpoint := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Connect(ctx, client.Options{Endpoint: endpoint, Token: "wrong"})
	assert.Error(t, err)
}
