package testing

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/vvka-141/pgdispatch/internal/db"
	"github.com/vvka-141/pgdispatch/internal/executor"
	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/internal/pool"
	"github.com/vvka-141/pgdispatch/internal/testinfra"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: PGDISPATCH_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("PGDISPATCH_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("PGDISPATCH_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestConnector builds the standard connector for connString.
func NewTestConnector(t *testing.T, connString string) pgdispatch.Connector {
	t.Helper()

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	connector, err := db.NewConnector(config, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("Failed to create connector: %v", err)
	}
	return connector
}

// NewTestPool creates a pool over connector. The pool is shut down when the
// test completes; a shutdown that does not drain in time fails the test.
func NewTestPool(t *testing.T, connector pgdispatch.Connector, cfg pgdispatch.PoolConfig) *pool.Pool {
	t.Helper()

	p, err := pool.New(connector, cfg)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.Shutdown(ctx); err != nil {
			t.Errorf("pool shutdown: %v", err)
		}
	})
	return p
}

// NewTestExecutor creates an executor over p. Outstanding requests are
// awaited when the test completes, before the pool is shut down.
func NewTestExecutor(t *testing.T, p *pool.Pool) *executor.Executor {
	t.Helper()

	exec := executor.New(executor.ForPool(p))
	t.Cleanup(exec.Wait)
	return exec
}
