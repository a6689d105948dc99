package tools_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/deptrack/internal/metrics"
	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/service"
	"github.com/raphaelgruber/deptrack/internal/stats"
	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/raphaelgruber/deptrack/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// connect serves every tool over in-memory transports against a seeded memory store.
func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()

	clock := func() time.Time { return refNow }
	st := store.NewMemory(store.WithClock(clock))
	svc := service.NewDependencyService(st, service.WithClock(clock))
	entries, err := service.DefaultSeed()
	require.NoError(t, err)
	_, err = svc.Seed(context.Background(), entries)
	require.NoError(t, err)

	server := mcp.NewServer(&mcp.Implementation{Name: "test-deptrack", Version: "0.0.1-test"}, nil)
	tools.RegisterAll(server, &tools.Dependencies{
		Service: svc,
		Metrics: metrics.NewCollector(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	t.Cleanup(func() { _ = session.Close() })
	return session
}

// call invokes a tool and returns its text payload and error flag.
func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be TextContent")
	return text.Text, result.IsError
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(text), &v), text)
	return v
}

func errorText(t *testing.T, text string) string {
	t.Helper()
	return decode[map[string]string](t, text)["error"]
}

func TestToolsAreRegistered(t *testing.T) {
	session := connect(t)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var got []string
	for _, tool := range result.Tools {
		got = append(got, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"get_all_dependencies",
		"get_dependency_by_id",
		"get_dependency_by_name",
		"search_dependencies",
		"check_dependency_existence",
		"find_updated_dependencies",
		"find_dependencies_with_planned_updates",
		"get_health_overview",
		"get_stale_dependencies",
		"create_dependency",
		"server_stats",
	}, got)
}

func TestGetAllAndLookups(t *testing.T) {
	session := connect(t)

	text, isErr := call(t, session, "get_all_dependencies", nil)
	require.False(t, isErr)
	all := decode[[]models.Dependency](t, text)
	require.Len(t, all, 8)
	assert.Contains(t, text, `"testVersion"`, "payload uses camelCase keys")

	text, isErr = call(t, session, "get_dependency_by_id", map[string]any{"dependency_id": all[0].ID})
	require.False(t, isErr)
	assert.Equal(t, all[0].Name, decode[models.Dependency](t, text).Name)

	text, isErr = call(t, session, "get_dependency_by_name", map[string]any{"name": "lombok"})
	require.False(t, isErr)
	lombok := decode[models.Dependency](t, text)
	assert.Nil(t, lombok.ProdVersion)
}

func TestNotFoundMessages(t *testing.T) {
	session := connect(t)

	text, isErr := call(t, session, "get_dependency_by_id", map[string]any{"dependency_id": "nope"})
	assert.True(t, isErr)
	assert.Equal(t, "Dependency with id 'nope' not found", errorText(t, text))

	text, isErr = call(t, session, "get_dependency_by_name", map[string]any{"name": "Lombok"})
	assert.True(t, isErr)
	assert.Equal(t, "Dependency with name 'Lombok' not found", errorText(t, text))
}

func TestSearchAndExistence(t *testing.T) {
	session := connect(t)

	text, _ := call(t, session, "search_dependencies", map[string]any{"query": "SPRING"})
	found := decode[[]models.Dependency](t, text)
	assert.Len(t, found, 2)

	text, _ = call(t, session, "search_dependencies", map[string]any{"query": "does-not-exist"})
	assert.Equal(t, "[]", text)

	text, isErr := call(t, session, "check_dependency_existence", map[string]any{"name": "slf4j-api"})
	require.False(t, isErr)
	assert.Equal(t, tools.ExistenceResult{Name: "slf4j-api", Exists: true}, decode[tools.ExistenceResult](t, text))

	text, _ = call(t, session, "check_dependency_existence", map[string]any{"name": "log4j"})
	assert.False(t, decode[tools.ExistenceResult](t, text).Exists)
}

func TestDateRangeTools(t *testing.T) {
	session := connect(t)

	text, isErr := call(t, session, "find_dependencies_with_planned_updates", map[string]any{
		"start_date": "2025-02-20T00:00:00",
		"end_date":   "2025-03-20T00:00:00",
	})
	require.False(t, isErr)
	assert.Len(t, decode[[]models.Dependency](t, text), 2)

	text, isErr = call(t, session, "find_updated_dependencies", map[string]any{
		"start_date": "last week",
		"end_date":   "2025-03-20",
	})
	assert.True(t, isErr)
	assert.Contains(t, errorText(t, text), "Invalid date format")
	assert.Contains(t, errorText(t, text), "last week")
}

func TestHealthAndStaleTools(t *testing.T) {
	session := connect(t)

	text, isErr := call(t, session, "get_health_overview", nil)
	require.False(t, isErr)
	health := decode[stats.HealthSummary](t, text)
	assert.Equal(t, 8, health.TotalCount)
	assert.Equal(t, 4, health.VersionDriftCount)
	assert.Equal(t, 1, health.OverdueUpdatesCount)
	assert.Equal(t, 2, health.TestOnlyCount)

	text, isErr = call(t, session, "get_stale_dependencies", nil)
	require.False(t, isErr)
	stale := decode[stats.StaleSummary](t, text)
	assert.Equal(t, 180, stale.DaysThreshold)
	assert.Equal(t, []string{"hibernate-core"}, stale.StaleDependencies)

	text, _ = call(t, session, "get_stale_dependencies", map[string]any{"days_threshold": 8})
	stale = decode[stats.StaleSummary](t, text)
	assert.Equal(t, 8, stale.DaysThreshold)
	// Samples whose latest update is 10 or more days old
	assert.ElementsMatch(t, []string{"spring-boot-starter-web", "spring-data-jpa", "postgresql-driver", "hibernate-core", "slf4j-api"}, stale.StaleDependencies)

	text, isErr = call(t, session, "get_stale_dependencies", map[string]any{"days_threshold": -5})
	assert.True(t, isErr)
	assert.Equal(t, "days_threshold must not be negative", errorText(t, text))
}

func TestCreateDependency(t *testing.T) {
	session := connect(t)

	text, isErr := call(t, session, "create_dependency", map[string]any{
		"name":              "guava",
		"test_version":      "33.0.0",
		"prod_version":      "32.1.3",
		"test_last_updated": "2025-02-27T09:30:00",
		"homepage_url":      "https://github.com/google/guava",
	})
	require.False(t, isErr, text)
	created := decode[models.Dependency](t, text)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.HasVersionDrift())
	assert.Nil(t, created.SourceURL)
	assert.Equal(t, refNow, created.CreatedAt)

	text, isErr = call(t, session, "create_dependency", map[string]any{"name": "guava", "test_version": "34.0.0"})
	assert.True(t, isErr)
	assert.Equal(t, "Dependency with name 'guava' already exists", errorText(t, text))

	text, isErr = call(t, session, "create_dependency", map[string]any{"name": "  ", "test_version": "1"})
	assert.True(t, isErr)
	assert.Equal(t, "name is required", errorText(t, text))

	text, isErr = call(t, session, "create_dependency", map[string]any{
		"name":             "okhttp",
		"test_version":     "4.12.0",
		"test_next_update": "31/12/2025",
	})
	assert.True(t, isErr)
	assert.Contains(t, errorText(t, text), "test_next_update")

	text, _ = call(t, session, "check_dependency_existence", map[string]any{"name": "okhttp"})
	assert.False(t, decode[tools.ExistenceResult](t, text).Exists, "failed create must not write")
}

func TestServerStatsTool(t *testing.T) {
	session := connect(t)

	text, isErr := call(t, session, "server_stats", nil)
	require.False(t, isErr)
	assert.Contains(t, text, `"uptimeSeconds"`)
	assert.Contains(t, text, `"operations"`)
}
