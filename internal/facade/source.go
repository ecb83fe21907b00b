package facade

import (
	"context"
	"errors"
	"sync"

	"github.com/vvka-141/pgdispatch/internal/executor"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Submitter is the asynchronous query entry point facades translate.
// *executor.Executor satisfies it.
type Submitter interface {
	Submit(ctx context.Context, sql string, sink executor.Sink, args ...any)
}

// ErrNilStage is returned when a composition function yields no stage.
var ErrNilStage = errors.New("composition returned nil")

// source produces one (value, error) outcome per invocation.
type source[T any] func(ctx context.Context, emit func(T, error))

// run invokes the source and forwards only its first outcome.
func (s source[T]) run(ctx context.Context, emit func(T, error)) {
	s(ctx, onceEmit(emit))
}

func onceEmit[T any](emit func(T, error)) func(T, error) {
	var once sync.Once
	return func(v T, err error) {
		once.Do(func() { emit(v, err) })
	}
}

func querySource(sub Submitter, sql string, args []any) source[*pgdispatch.Result] {
	return func(ctx context.Context, emit func(*pgdispatch.Result, error)) {
		sub.Submit(ctx, sql, executor.SinkFunc(emit), args...)
	}
}

func mapSource[T, U any](s source[T], fn func(T) (U, error)) source[U] {
	return func(ctx context.Context, emit func(U, error)) {
		s.run(ctx, func(v T, err error) {
			if err != nil {
				var zero U
				emit(zero, err)
				return
			}
			emit(fn(v))
		})
	}
}

func recoverSource[T any](s source[T], fn func(error) (T, error)) source[T] {
	return func(ctx context.Context, emit func(T, error)) {
		s.run(ctx, func(v T, err error) {
			if err != nil {
				emit(fn(err))
				return
			}
			emit(v, nil)
		})
	}
}

// await runs the source and blocks for its outcome or until ctx is done.
func (s source[T]) await(ctx context.Context) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	s.run(ctx, func(v T, err error) {
		done <- outcome{v, err}
	})

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
