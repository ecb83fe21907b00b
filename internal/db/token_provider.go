package db

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TokenProvider abstracts cloud token acquisition for database authentication.
type TokenProvider interface {
	// GetToken acquires a token used as the PostgreSQL password.
	// Returns the token string and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Should NOT include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// CachingTokenProvider reuses a token until it is within refreshBefore of expiry.
// Safe for concurrent use.
type CachingTokenProvider struct {
	inner         TokenProvider
	refreshBefore time.Duration
	now           func() time.Time

	mu        sync.Mutex
	token     string
	expiresOn time.Time
}

// NewCachingTokenProvider wraps inner with a token cache.
func NewCachingTokenProvider(inner TokenProvider, refreshBefore time.Duration) *CachingTokenProvider {
	return &CachingTokenProvider{
		inner:         inner,
		refreshBefore: refreshBefore,
		now:           time.Now,
	}
}

// GetToken returns the cached token or acquires a new one.
func (p *CachingTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.expiresOn.Sub(p.now()) > p.refreshBefore {
		return p.token, p.expiresOn, nil
	}

	token, expiresOn, err := p.inner.GetToken(ctx)
	if err != nil {
		return "", time.Time{}, err
	}
	p.token = token
	p.expiresOn = expiresOn
	return token, expiresOn, nil
}

func (p *CachingTokenProvider) String() string {
	return fmt.Sprintf("Cached(%s)", p.inner)
}
