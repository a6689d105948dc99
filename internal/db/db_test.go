//go:build integration

package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/raphaelgruber/deptrack/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testClient *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Ryuk can misbehave in some CI environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testClient, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "deptrack",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testClient.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testClient.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// freshStore wipes the shared database and returns a store over it.
// The shared client stays open; Close is never called on the returned store.
func freshStore(t *testing.T, opts ...store.Option) store.Store {
	t.Helper()
	require.NoError(t, testClient.WipeData(context.Background()))
	return &testStore{Store: NewStore(testClient, opts...)}
}

type testStore struct{ *Store }

func (testStore) Close(context.Context) error { return nil }

func TestSurrealConformance(t *testing.T) {
	storetest.Run(t, freshStore)
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testClient.InitSchema(ctx))
	require.NoError(t, testClient.InitSchema(ctx))
}

func TestCreateStoresOptionalsAsNone(t *testing.T) {
	ctx := context.Background()
	s := freshStore(t)

	created, err := s.Create(ctx, models.DependencyInput{Name: "sparse", TestVersion: "0.1"})
	require.NoError(t, err)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProdVersion)
	assert.Nil(t, got.TestLastUpdated)
	assert.Nil(t, got.HomepageURL)
}

func TestDuplicateNameMapsToStoreError(t *testing.T) {
	ctx := context.Background()
	s := freshStore(t)

	_, err := s.Create(ctx, models.DependencyInput{Name: "libX", TestVersion: "1.0"})
	require.NoError(t, err)

	_, err = s.Create(ctx, models.DependencyInput{Name: "libX", TestVersion: "2.0"})
	var dup *store.DuplicateNameError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, "libX", dup.Name)
}
