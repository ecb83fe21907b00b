//go:build conntest

package conntest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/vvka-141/pgdispatch/internal/db"
	"github.com/vvka-141/pgdispatch/internal/executor"
	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/internal/pool"
	"github.com/vvka-141/pgdispatch/internal/retry"
	"github.com/vvka-141/pgdispatch/internal/testinfra"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

var (
	stdContainer  *testinfra.PostgresContainer
	mtlsContainer *testinfra.PostgresContainer
	certBundle    *testinfra.CertBundle
	certPaths     *testinfra.CertPaths
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	bundle, err := testinfra.GenerateCertBundle([]string{"localhost", "127.0.0.1"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate certs: %v\n", err)
		os.Exit(1)
	}
	certBundle = bundle

	dir, err := os.MkdirTemp("", "pgdispatch-conntest-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}

	paths, err := bundle.WriteToDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write certs: %v\n", err)
		os.Exit(1)
	}
	certPaths = paths

	std, err := testinfra.StartPostgres(ctx, certPaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres: %v\n", err)
		os.Exit(1)
	}
	stdContainer = std

	mtls, err := testinfra.StartMTLSPostgres(ctx, certPaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start mTLS postgres: %v\n", err)
		stdContainer.Terminate(ctx) //nolint:errcheck
		os.Exit(1)
	}
	mtlsContainer = mtls

	code := m.Run()

	stdContainer.Terminate(ctx)  //nolint:errcheck
	mtlsContainer.Terminate(ctx) //nolint:errcheck
	os.RemoveAll(dir)
	os.Exit(code)
}

// noRetry makes connect failures surface on the first attempt.
func noRetry() *retry.Executor {
	return retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(1))
}

// connectWithConfig builds a two-connection pool over config and an executor on top of it.
func connectWithConfig(t *testing.T, config *pgdispatch.ConnectionConfig) *executor.Executor {
	t.Helper()

	connector, err := db.NewConnector(config, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("create connector: %v", err)
	}

	p, err := pool.New(connector, pgdispatch.PoolConfig{MaxSize: 2, AcquireTimeout: 30 * time.Second},
		pool.WithRetryExecutor(noRetry()))
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}

	exec := executor.New(executor.ForPool(p))
	t.Cleanup(func() {
		exec.Wait()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p.Shutdown(ctx) //nolint:errcheck
	})
	return exec
}

// connectFails dials one connection through a fresh pool and returns the failure.
func connectFails(t *testing.T, config *pgdispatch.ConnectionConfig) error {
	t.Helper()

	exec := connectWithConfig(t, config)
	_, err := exec.Execute(context.Background(), "SELECT 1")
	if err == nil {
		t.Fatal("expected connection to fail")
	}
	return err
}

func pingSucceeds(t *testing.T, exec *executor.Executor) {
	t.Helper()
	if _, err := exec.Execute(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func queryVersion(t *testing.T, exec *executor.Executor) string {
	t.Helper()
	r, err := exec.Execute(context.Background(), "SELECT version()")
	if err != nil {
		t.Fatalf("query version: %v", err)
	}
	version, _ := r.Scalar().(string)
	return version
}

func parseStdConnString(t *testing.T) *pgdispatch.ConnectionConfig {
	t.Helper()
	config, err := db.ParseConnectionString(stdContainer.ConnString)
	if err != nil {
		t.Fatalf("parse connection string: %v", err)
	}
	return config
}
