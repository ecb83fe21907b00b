package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(logger pgdispatch.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Stats counts requests by outcome.
type Stats struct {
	Submitted int64
	Succeeded int64
	Failed    int64
	InFlight  int64
}

// Executor dispatches queries onto leased connections.
// Safe for concurrent use.
type Executor struct {
	acquirer Acquirer
	logger   pgdispatch.Logger
	wg       sync.WaitGroup

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// New creates an Executor over the given acquirer.
func New(acquirer Acquirer, opts ...Option) *Executor {
	if acquirer == nil {
		panic("acquirer cannot be nil")
	}
	e := &Executor{
		acquirer: acquirer,
		logger:   logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit runs sql asynchronously and completes sink exactly once.
//
// The lease is released before sink is invoked. Acquire failures
// (ErrAcquireTimeout, ErrPoolClosed, ErrConnectFailure, ctx errors) are
// delivered to sink without touching a connection.
func (e *Executor) Submit(ctx context.Context, sql string, sink Sink, args ...any) {
	s := once(sink)
	e.submitted.Add(1)
	e.wg.Add(1)

	go func() {
		defer e.wg.Done()

		result, err := e.run(ctx, sql, args...)
		if err != nil {
			e.failed.Add(1)
			e.logger.Verbose("Query failed: %v", err)
		} else {
			e.succeeded.Add(1)
		}
		s.Complete(result, err)
	}()
}

// Execute runs sql and waits for its outcome.
func (e *Executor) Execute(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error) {
	type outcome struct {
		result *pgdispatch.Result
		err    error
	}
	done := make(chan outcome, 1)

	e.Submit(ctx, sql, SinkFunc(func(result *pgdispatch.Result, err error) {
		done <- outcome{result, err}
	}), args...)

	o := <-done
	return o.result, o.err
}

// Wait blocks until every submitted request has completed its sink.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Stats returns request counters.
func (e *Executor) Stats() Stats {
	submitted := e.submitted.Load()
	succeeded := e.succeeded.Load()
	failed := e.failed.Load()
	return Stats{
		Submitted: submitted,
		Succeeded: succeeded,
		Failed:    failed,
		InFlight:  submitted - succeeded - failed,
	}
}

func (e *Executor) run(ctx context.Context, sql string, args ...any) (result *pgdispatch.Result, err error) {
	lease, err := e.acquirer.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &pgdispatch.QueryError{SQL: sql, Err: fmt.Errorf("panic during query: %v", r)}
		}
	}()

	return lease.Execute(ctx, sql, args...)
}
