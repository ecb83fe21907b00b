package facade

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/vvka-141/pgdispatch/internal/executor"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

var errBoom = errors.New("boom")

func scalarResult(v any) *pgdispatch.Result {
	return &pgdispatch.Result{Columns: []string{"?column?"}, Rows: [][]any{{v}}}
}

// fakeSubmitter completes every submission with a fixed outcome.
// With duplicate set it misbehaves and completes twice.
type fakeSubmitter struct {
	result    *pgdispatch.Result
	err       error
	async     bool
	duplicate bool
	calls     atomic.Int32
	lastSQL   atomic.Value
}

func (f *fakeSubmitter) Submit(ctx context.Context, sql string, sink executor.Sink, args ...any) {
	f.calls.Add(1)
	f.lastSQL.Store(sql)

	fire := func() {
		sink.Complete(f.result, f.err)
		if f.duplicate {
			sink.Complete(nil, errors.New("duplicate completion"))
		}
	}
	if f.async {
		go fire()
		return
	}
	fire()
}

// heldSubmitter parks every sink until the test completes it.
type heldSubmitter struct {
	sinks chan executor.Sink
}

func newHeldSubmitter() *heldSubmitter {
	return &heldSubmitter{sinks: make(chan executor.Sink, 8)}
}

func (h *heldSubmitter) Submit(ctx context.Context, sql string, sink executor.Sink, args ...any) {
	h.sinks <- sink
}

// submitterFunc observes the request context and never completes.
type submitterFunc func(ctx context.Context)

func (f submitterFunc) Submit(ctx context.Context, sql string, sink executor.Sink, args ...any) {
	f(ctx)
}
