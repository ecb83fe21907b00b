package pgdispatch

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // All requests completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitQueryFailed     = 12 // A query failed on the server
	ExitAcquireTimeout  = 13 // Pool saturated beyond the acquire timeout
	ExitPoolClosed      = 14 // Pool was shut down while requests were pending
)

const (
	// DefaultMaxSize bounds the number of physical connections a pool opens.
	DefaultMaxSize = 5

	// DefaultAcquireTimeout bounds how long a request waits for a connection.
	DefaultAcquireTimeout = 30 * time.Second

	// DefaultConnectTimeout bounds a single dial attempt.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultShutdownTimeout bounds how long Shutdown waits for leased connections.
	DefaultShutdownTimeout = 15 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 5 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of dial retry attempts.
	DefaultRetryMaxAttempts = 3

	// MaxErrorPreviewLength is the maximum number of SQL characters quoted in
	// query error messages.
	MaxErrorPreviewLength = 200

	// DefaultProbeQuery is the statement used to verify a facade end to end.
	DefaultProbeQuery = "SELECT 1"

	// DefaultPort is the standard PostgreSQL port.
	DefaultPort = 5432

	// DefaultDatabase is used when no database is configured.
	DefaultDatabase = "postgres"
)
