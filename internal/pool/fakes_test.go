package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// fakeRows is a minimal in-memory pgx.Rows.
type fakeRows struct {
	columns []string
	rows    [][]any
	pos     int
	closed  bool
}

func newFakeRows(columns []string, rows ...[]any) *fakeRows {
	return &fakeRows{columns: columns, rows: rows}
}

func (r *fakeRows) Close()                        { r.closed = true }
func (r *fakeRows) Err() error                    { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT 1") }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Scan(dest ...any) error        { return errors.New("scan not supported") }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, name := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: name}
	}
	return fields
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.rows) {
		r.closed = true
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

// fakeSession answers every query with "SELECT 1" unless queryFn is set.
type fakeSession struct {
	queryFn func(ctx context.Context, sql string) (pgx.Rows, error)
	closed  atomic.Bool
}

func (s *fakeSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.queryFn != nil {
		return s.queryFn(ctx, sql)
	}
	return newFakeRows([]string{"?column?"}, []any{int32(1)}), nil
}

func (s *fakeSession) Ping(ctx context.Context) error { return nil }

func (s *fakeSession) Close(ctx context.Context) error {
	s.closed.Store(true)
	return nil
}

// fakeConnector hands out fakeSessions and records every dial.
type fakeConnector struct {
	mu       sync.Mutex
	sessions []*fakeSession
	dialErrs []error
	queryFn  func(ctx context.Context, sql string) (pgx.Rows, error)
	dials    atomic.Int32
}

func (c *fakeConnector) Connect(ctx context.Context) (pgdispatch.Session, error) {
	c.dials.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.dialErrs) > 0 {
		err := c.dialErrs[0]
		c.dialErrs = c.dialErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	s := &fakeSession{queryFn: c.queryFn}
	c.sessions = append(c.sessions, s)
	return s, nil
}

func (c *fakeConnector) session(i int) *fakeSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[i]
}
