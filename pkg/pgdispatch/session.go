package pgdispatch

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Session is one physical link to the database.
// *pgx.Conn satisfies it; tests substitute pgxmock connections.
//
// Thread-Safety: NOT safe for concurrent use. The pool guarantees a single
// in-flight query per session.
type Session interface {
	// Query sends a query and returns its rows. The rows must be closed.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// Ping checks the session is still usable.
	Ping(ctx context.Context) error

	// Close terminates the session.
	Close(ctx context.Context) error
}

// Connector opens new physical sessions.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, Cloud SQL dialer).
type Connector interface {
	// Connect opens one session. The caller owns it and must close it.
	Connect(ctx context.Context) (Session, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Session, error)

// Connect calls f(ctx).
func (f ConnectorFunc) Connect(ctx context.Context) (Session, error) {
	return f(ctx)
}

// Result is the fully read outcome of one query.
type Result struct {
	CommandTag pgconn.CommandTag
	Columns    []string
	Rows       [][]any
}

// RowsAffected returns the number of rows reported by the command tag.
func (r *Result) RowsAffected() int64 {
	if r == nil {
		return 0
	}
	return r.CommandTag.RowsAffected()
}

// Scalar returns the first column of the first row, or nil when the result is empty.
func (r *Result) Scalar() any {
	if r == nil || len(r.Rows) == 0 || len(r.Rows[0]) == 0 {
		return nil
	}
	return r.Rows[0][0]
}
