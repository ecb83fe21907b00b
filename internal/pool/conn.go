package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// State is the lifecycle position of a Conn.
type State int32

const (
	StateIdle State = iota
	StateLeased
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLeased:
		return "leased"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

const closeTimeout = 5 * time.Second

var (
	errNotLeased  = errors.New("connection is not leased")
	errConnClosed = errors.New("connection is closed")
)

// lossDetector decides whether a query error left the session unusable.
type lossDetector interface {
	IsConnectionLost(err error) bool
}

// closedReporter is implemented by sessions that track their own liveness (*pgx.Conn).
type closedReporter interface {
	IsClosed() bool
}

// Conn wraps one physical session.
//
// A Conn runs at most one query at a time; a second concurrent Execute is a
// programming error and panics.
type Conn struct {
	id        uuid.UUID
	session   pgdispatch.Session
	detector  lossDetector
	createdAt time.Time

	state atomic.Int32
	busy  atomic.Bool
}

func newConn(session pgdispatch.Session, detector lossDetector) *Conn {
	return &Conn{
		id:        uuid.New(),
		session:   session,
		detector:  detector,
		createdAt: time.Now(),
	}
}

// ID returns the session identifier assigned when the connection was opened.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// CreatedAt returns when the session was opened.
func (c *Conn) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Conn) setState(s State) {
	c.state.Store(int32(s))
}

// markClosed moves the connection to StateClosed and reports whether it was open.
func (c *Conn) markClosed() bool {
	return State(c.state.Swap(int32(StateClosed))) != StateClosed
}

// Execute runs sql and reads the full result.
// Errors are returned as *pgdispatch.QueryError. When the error indicates the
// session is gone the connection moves to StateClosed.
func (c *Conn) Execute(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error) {
	if !c.busy.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("pool: concurrent Execute on connection %s", c.id))
	}
	defer c.busy.Store(false)

	switch c.State() {
	case StateLeased:
	case StateClosed:
		return nil, &pgdispatch.QueryError{SQL: sql, SessionLost: true, Err: errConnClosed}
	default:
		return nil, &pgdispatch.QueryError{SQL: sql, Err: errNotLeased}
	}

	rows, err := c.session.Query(ctx, sql, args...)
	if err != nil {
		return nil, c.fail(sql, err)
	}

	result, err := collect(rows)
	if err != nil {
		return nil, c.fail(sql, err)
	}
	return result, nil
}

func (c *Conn) fail(sql string, err error) error {
	lost := c.detector.IsConnectionLost(err)
	if r, ok := c.session.(closedReporter); ok && r.IsClosed() {
		lost = true
	}
	if lost {
		c.setState(StateClosed)
	}
	return &pgdispatch.QueryError{SQL: sql, SessionLost: lost, Err: err}
}

// close terminates the physical session. Safe to call more than once.
func (c *Conn) close() error {
	c.markClosed()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return c.session.Close(ctx)
}

func collect(rows pgx.Rows) (*pgdispatch.Result, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		data = append(data, values)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &pgdispatch.Result{
		CommandTag: rows.CommandTag(),
		Columns:    columns,
		Rows:       data,
	}, nil
}
