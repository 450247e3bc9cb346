// Package testutil provides shared test infrastructure for integration tests
// that require a Postgres container.
//
// Usage in TestMain:
//
//	func TestMain(m *testing.M) {
//	    tc := testutil.MustStartPostgres()
//	    defer tc.Terminate()
//	    testPG, _ = tc.NewStore(context.Background(), logger)
//	    os.Exit(m.Run())
//	}
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nagare-ml/nagare/internal/storage"
	"github.com/nagare-ml/nagare/migrations"
)

// TestContainer wraps a testcontainers container with a DSN for connecting.
type TestContainer struct {
	Container testcontainers.Container
	DSN       string
}

// MustStartPostgres starts a Postgres container and waits for it to accept
// connections. Calls os.Exit(1) on setup failure after the container starts.
// Returns nil when Docker is unavailable so callers can skip integration
// tests.
func MustStartPostgres() *TestContainer {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "nagare",
			"POSTGRES_PASSWORD": "nagare",
			"POSTGRES_DB":       "nagare",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil: postgres container unavailable: %v\n", err)
		return nil
	}

	host, err := container.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil: failed to get container host: %v\n", err)
		os.Exit(1)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		fmt.Fprintf(os.Stderr, "testutil: failed to get container port: %v\n", err)
		os.Exit(1)
	}

	return &TestContainer{
		Container: container,
		DSN:       fmt.Sprintf("postgres://nagare:nagare@%s:%s/nagare?sslmode=disable", host, port.Port()),
	}
}

// NewStore creates a PostgresStore against the container and runs the
// embedded migrations.
func (tc *TestContainer) NewStore(ctx context.Context, logger *slog.Logger) (*storage.PostgresStore, error) {
	store, err := storage.NewPostgres(ctx, tc.DSN, logger)
	if err != nil {
		return nil, err
	}
	if err := store.RunMigrations(ctx, migrations.FS); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Terminate stops and removes the container.
func (tc *TestContainer) Terminate() {
	if tc == nil || tc.Container == nil {
		return
	}
	_ = tc.Container.Terminate(context.Background())
}
