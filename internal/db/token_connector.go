package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// tokenExpiryWarning is how close to expiry a freshly acquired token triggers a warning.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token is used as the PostgreSQL password of each new session.
type TokenBasedConnector struct {
	config        *pgdispatch.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        pgdispatch.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// Tokens are cached and refreshed shortly before they expire, so a pool dialing
// many sessions does not request a token per dial.
func NewTokenBasedConnector(config *pgdispatch.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger pgdispatch.Logger) *TokenBasedConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: NewCachingTokenProvider(tokenProvider, tokenExpiryWarning),
		providerName:  providerName,
		logger:        logger,
	}
}

// Connect acquires a token and dials one session with it.
func (c *TokenBasedConnector) Connect(ctx context.Context) (pgdispatch.Session, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
	}

	if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
		c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
	}

	configWithToken := *c.config
	configWithToken.Password = token

	connConfig, err := pgx.ParseConfig(BuildConnectionString(&configWithToken))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, pgdispatch.ErrInvalidConfig)
	}

	c.logger.Verbose("Dialing %s with %s", c.config.Address(), c.tokenProvider)
	return connect(ctx, connConfig, c.config, c.logger)
}
