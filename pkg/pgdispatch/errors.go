package pgdispatch

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the dispatcher's failure taxonomy.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	res, err := exec.Execute(ctx, "SELECT 1")
//	if errors.Is(err, pgdispatch.ErrAcquireTimeout) {
//	    // pool saturated for longer than AcquireTimeout
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectFailure indicates a physical connection could not be established
	// after all retry attempts were exhausted.
	ErrConnectFailure = errors.New("connect failure")

	// ErrQueryFailure indicates the query reached the server and failed there,
	// or the session broke while it was running.
	ErrQueryFailure = errors.New("query failure")

	// ErrAcquireTimeout indicates no connection became available within the
	// pool's acquire timeout.
	ErrAcquireTimeout = errors.New("acquire timeout")

	// ErrPoolClosed indicates the pool is draining or closed.
	ErrPoolClosed = errors.New("pool closed")
)

// QueryError carries a failed query together with the driver error.
// It matches ErrQueryFailure via errors.Is and unwraps to the driver error,
// so *pgconn.PgError stays reachable with errors.As.
type QueryError struct {
	SQL string

	// SessionLost reports whether the failure destroyed the connection.
	SessionLost bool

	Err error
}

func (e *QueryError) Error() string {
	preview := e.SQL
	if len(preview) > MaxErrorPreviewLength {
		preview = preview[:MaxErrorPreviewLength] + "..."
	}
	if e.SessionLost {
		return fmt.Sprintf("query %q failed, session lost: %v", preview, e.Err)
	}
	return fmt.Sprintf("query %q failed: %v", preview, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Is reports ErrQueryFailure as a match.
func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailure
}

// usageErrorPatterns are the message prefixes cobra uses for CLI misuse.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectFailure):
		return ExitConnectionError
	case errors.Is(err, ErrQueryFailure):
		return ExitQueryFailed
	case errors.Is(err, ErrAcquireTimeout):
		return ExitAcquireTimeout
	case errors.Is(err, ErrPoolClosed):
		return ExitPoolClosed
	}

	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.HasPrefix(errStr, pattern) {
			return ExitUsageError
		}
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
