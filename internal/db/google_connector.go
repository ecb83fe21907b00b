package db

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// GoogleCloudSQLConnector implements the Connector interface for Google Cloud SQL
// using IAM database authentication via the Cloud SQL Go Connector.
//
// One dialer is shared by every session the pool opens. Implements io.Closer:
// call Close after the pool has shut down to release the dialer.
type GoogleCloudSQLConnector struct {
	config   *pgdispatch.ConnectionConfig
	instance string
	logger   pgdispatch.Logger

	mu     sync.Mutex
	dialer *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector creates a connector for Google Cloud SQL IAM authentication.
// instance is the instance connection name in format: project:region:instance
func NewGoogleCloudSQLConnector(config *pgdispatch.ConnectionConfig, instance string, logger pgdispatch.Logger) *GoogleCloudSQLConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &GoogleCloudSQLConnector{
		config:   config,
		instance: instance,
		logger:   logger,
	}
}

func (c *GoogleCloudSQLConnector) getDialer(ctx context.Context) (*cloudsqlconn.Dialer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialer != nil {
		return c.dialer, nil
	}

	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}
	c.dialer = dialer
	return dialer, nil
}

// Connect dials one session through the Cloud SQL connector, which handles
// authentication and TLS.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (pgdispatch.Session, error) {
	dialer, err := c.getDialer(ctx)
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s dbname=%s sslmode=disable",
		c.instance,
		c.config.Username,
		c.config.Database,
	)

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, pgdispatch.ErrInvalidConfig)
	}

	connConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}

	return connect(ctx, connConfig, c.config, c.logger)
}

// Close releases the Cloud SQL dialer resources.
func (c *GoogleCloudSQLConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}
