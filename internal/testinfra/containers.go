package testinfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:17"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "postgres"

	containerCertDir  = "/tmp/testcontainers-go/postgres"
	sslEntrypointPath = "/usr/local/bin/docker-entrypoint-ssl.bash"
	startupTimeout    = 60 * time.Second
)

// PostgresContainer is a running server plus a ready-to-use connection string.
type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartPostgres starts a server that accepts password authentication over
// plain and TLS connections. The returned connection string disables SSL.
func StartPostgres(ctx context.Context, certPaths *CertPaths) (*PostgresContainer, error) {
	confPath, err := writeSSLConfig(filepath.Dir(certPaths.CACert))
	if err != nil {
		return nil, err
	}

	return start(ctx, "sslmode=disable",
		postgres.WithSSLCert(certPaths.CACert, certPaths.ServerCert, certPaths.ServerKey),
		postgres.WithConfigFile(confPath),
		// WithSSLCert sets entrypoint to "sh" which fails on Debian (dash doesn't support pipefail).
		testcontainers.WithEntrypoint("bash", sslEntrypointPath),
	)
}

// StartMTLSPostgres starts a server that only accepts TLS connections
// authenticated by a client certificate signed by the bundle's CA.
func StartMTLSPostgres(ctx context.Context, certPaths *CertPaths) (*PostgresContainer, error) {
	dir := filepath.Dir(certPaths.CACert)

	confPath, err := writeSSLConfig(dir)
	if err != nil {
		return nil, err
	}

	initScript, err := writeMTLSInitScript(dir)
	if err != nil {
		return nil, err
	}

	return start(ctx, "sslmode=verify-ca",
		postgres.WithSSLCert(certPaths.CACert, certPaths.ServerCert, certPaths.ServerKey),
		postgres.WithConfigFile(confPath),
		postgres.WithInitScripts(initScript),
		testcontainers.WithEntrypoint("bash", sslEntrypointPath),
	)
}

// StartSimplePostgres starts a server without TLS.
func StartSimplePostgres(ctx context.Context) (*PostgresContainer, error) {
	return start(ctx, "sslmode=disable")
}

func start(ctx context.Context, connArgs string, opts ...testcontainers.ContainerCustomizer) (*PostgresContainer, error) {
	base := []testcontainers.ContainerCustomizer{
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		),
	}

	ctr, err := postgres.Run(ctx, PostgresImage, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, connArgs)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

func writeSSLConfig(dir string) (string, error) {
	conf := fmt.Sprintf(`listen_addresses = '*'
max_connections = 50
ssl = on
ssl_cert_file = '%s/server.cert'
ssl_key_file = '%s/server.key'
ssl_ca_file = '%s/ca_cert.pem'
`, containerCertDir, containerCertDir, containerCertDir)

	path := filepath.Join(dir, "postgresql.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		return "", fmt.Errorf("write postgresql.conf: %w", err)
	}
	return path, nil
}

func writeMTLSInitScript(dir string) (string, error) {
	script := `#!/bin/bash
cat > "$PGDATA/pg_hba.conf" << 'PGEOF'
local   all all                trust
hostssl all all 0.0.0.0/0      cert clientcert=verify-full
hostssl all all ::/0            cert clientcert=verify-full
PGEOF
`
	path := filepath.Join(dir, "init-mtls.sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		return "", fmt.Errorf("write init script: %w", err)
	}
	return path, nil
}
