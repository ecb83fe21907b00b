package pool

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// ErrLeaseReleased is returned when a released lease is used again.
var ErrLeaseReleased = errors.New("lease already released")

// Lease is exclusive ownership of one Conn until Release.
type Lease struct {
	pool     *Pool
	conn     *Conn
	released atomic.Bool
}

// Conn returns the leased connection.
func (l *Lease) Conn() *Conn {
	return l.conn
}

// Execute runs sql on the leased connection.
func (l *Lease) Execute(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error) {
	if l.released.Load() {
		return nil, &pgdispatch.QueryError{SQL: sql, Err: ErrLeaseReleased}
	}
	return l.conn.Execute(ctx, sql, args...)
}

// Release returns the connection to the pool. Calls after the first are no-ops.
func (l *Lease) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.pool.put(l.conn)
}
