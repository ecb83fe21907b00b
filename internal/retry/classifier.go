package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes for transient conditions
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnectionException   = "08"
	pgClassInsufficientResources = "53"
	pgClassOperatorIntervention  = "57"
	pgCodeSerializationFailure   = "40001"
	pgCodeDeadlockDetected       = "40P01"
	pgCodeLockNotAvailable       = "55P03"
	pgCodeAdminShutdown          = "57P01"
	pgCodeCrashShutdown          = "57P02"
	pgCodeCannotConnectNow       = "57P03"
	pgCodeIdleSessionTimeout     = "57P05"
	pgCodeIdleInTxSessionTimeout = "25P03"
)

// PostgreSQLErrorClassifier implements ErrorClassifier for PostgreSQL-specific errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if a dial error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return c.isTransientPgError(pgErr)
	}

	return c.isNetworkError(err) || c.hasConnectionMessage(err)
}

// IsConnectionLost reports whether a query error left the session unusable.
// Server-side statement errors (syntax, constraints, permissions) return false.
func (c *PostgreSQLErrorClassifier) IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// pgx closes the underlying connection when a query is interrupted.
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeAdminShutdown, pgCodeCrashShutdown, pgCodeCannotConnectNow,
			pgCodeIdleSessionTimeout, pgCodeIdleInTxSessionTimeout:
			return true
		}
		return strings.HasPrefix(pgErr.Code, pgClassConnectionException)
	}

	if pgconn.Timeout(err) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}

	return c.isNetworkError(err) || c.hasConnectionMessage(err)
}

func (c *PostgreSQLErrorClassifier) isTransientPgError(pgErr *pgconn.PgError) bool {
	code := pgErr.Code

	switch {
	case strings.HasPrefix(code, pgClassConnectionException),
		strings.HasPrefix(code, pgClassInsufficientResources),
		strings.HasPrefix(code, pgClassOperatorIntervention):
		return true
	}

	switch code {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
		return true
	}

	return false
}

func (c *PostgreSQLErrorClassifier) isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH, syscall.EPIPE} {
			if errors.Is(opErr.Err, errno) {
				return true
			}
		}
	}

	return false
}

var connectionErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"conn closed",
}

// hasConnectionMessage catches driver errors that only carry text.
func (c *PostgreSQLErrorClassifier) hasConnectionMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range connectionErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
