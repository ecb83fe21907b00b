package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// StandardConnector opens sessions with username/password authentication.
// Each Connect dials exactly one physical connection; retries are the pool's concern.
type StandardConnector struct {
	config *pgdispatch.ConnectionConfig
	logger pgdispatch.Logger
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *pgdispatch.ConnectionConfig, logger pgdispatch.Logger) *StandardConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &StandardConnector{config: config, logger: logger}
}

// Connect dials one session.
func (c *StandardConnector) Connect(ctx context.Context) (pgdispatch.Session, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(c.config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, pgdispatch.ErrInvalidConfig)
	}
	return connect(ctx, connConfig, c.config, c.logger)
}

// configureConn applies settings shared by every connector.
func configureConn(connConfig *pgx.ConnConfig, config *pgdispatch.ConnectionConfig, logger pgdispatch.Logger) {
	if config.ConnectTimeout == 0 {
		connConfig.ConnectTimeout = pgdispatch.DefaultConnectTimeout
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Info("%s: %s", notice.Severity, notice.Message)
	}
}

func connect(ctx context.Context, connConfig *pgx.ConnConfig, config *pgdispatch.ConnectionConfig, logger pgdispatch.Logger) (pgdispatch.Session, error) {
	configureConn(connConfig, config, logger)

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	return conn, nil
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
//
// Connectors holding external resources (GoogleCloudSQLConnector) implement
// io.Closer; callers close them after the pool has shut down.
func NewConnector(config *pgdispatch.ConnectionConfig, logger pgdispatch.Logger) (pgdispatch.Connector, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	switch config.AuthMethod {
	case pgdispatch.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case pgdispatch.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case pgdispatch.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case pgdispatch.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, pgdispatch.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or the connection string)
  - Wrong username
  - Expired cloud IAM token

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (check --sslrootcert)
  - Client certificates missing (check --sslcert, --sslkey)

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached in postgresql.conf
  - Pool --max-size larger than the server allows

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *pgdispatch.ConnectionConfig, logger pgdispatch.Logger) (pgdispatch.Connector, error) {
	tokenProvider, err := NewAWSIAMTokenProvider(config.Address(), config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w: %w", err, pgdispatch.ErrInvalidConfig)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *pgdispatch.ConnectionConfig, logger pgdispatch.Logger) (pgdispatch.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", pgdispatch.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", pgdispatch.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID token provider.
// If explicit credentials (tenant, client, secret) are provided, uses Service Principal auth.
// Otherwise, falls back to DefaultAzureCredential chain.
func newAzureConnector(config *pgdispatch.ConnectionConfig, logger pgdispatch.Logger) (pgdispatch.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
