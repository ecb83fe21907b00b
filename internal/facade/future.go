package facade

import (
	"context"
	"sync"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Future is a value that resolves exactly once, successfully or with an error.
// Resolution starts when the future is created.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

func futureFrom[T any](ctx context.Context, s source[T]) *Future[T] {
	f := newFuture[T]()
	s.run(ctx, f.complete)
	return f
}

// Completed returns a future already resolved with v.
func Completed[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

// Failed returns a future already resolved with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// Done is closed when the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get waits for the outcome or until ctx is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Recover maps a failure through fn. Success passes through.
func (f *Future[T]) Recover(fn func(error) (T, error)) *Future[T] {
	return chain(f, func(v T, err error, next *Future[T]) {
		if err != nil {
			next.complete(fn(err))
			return
		}
		next.complete(v, nil)
	})
}

// Exceptionally replaces a failure with the value fn returns.
func (f *Future[T]) Exceptionally(fn func(error) T) *Future[T] {
	return f.Recover(func(err error) (T, error) {
		return fn(err), nil
	})
}

// Then maps a successful value through fn. Failures pass through.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	return chain(f, func(v T, err error, next *Future[U]) {
		if err != nil {
			var zero U
			next.complete(zero, err)
			return
		}
		next.complete(fn(v))
	})
}

// Compose continues a successful value with the future fn returns.
func Compose[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	return chain(f, func(v T, err error, next *Future[U]) {
		if err != nil {
			var zero U
			next.complete(zero, err)
			return
		}
		inner := fn(v)
		if inner == nil {
			var zero U
			next.complete(zero, ErrNilStage)
			return
		}
		<-inner.done
		next.complete(inner.value, inner.err)
	})
}

func chain[T, U any](f *Future[T], step func(T, error, *Future[U])) *Future[U] {
	next := newFuture[U]()
	go func() {
		<-f.done
		step(f.value, f.err, next)
	}()
	return next
}

// Futures is the future-composition client.
type Futures struct {
	sub Submitter
}

// NewFutures creates a future-composition client.
func NewFutures(sub Submitter) *Futures {
	return &Futures{sub: sub}
}

// Query submits sql immediately and returns its pending result.
func (c *Futures) Query(ctx context.Context, sql string, args ...any) *Future[*pgdispatch.Result] {
	return futureFrom(ctx, querySource(c.sub, sql, args))
}
