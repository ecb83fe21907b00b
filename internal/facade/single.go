package facade

import (
	"context"
	"sync/atomic"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Disposable cancels a subscription. After Dispose no further signal is delivered.
type Disposable interface {
	Dispose()
	IsDisposed() bool
}

type subscription struct {
	cancel   context.CancelFunc
	disposed atomic.Bool
}

func (s *subscription) Dispose() {
	if s.disposed.CompareAndSwap(false, true) {
		s.cancel()
	}
}

func (s *subscription) IsDisposed() bool {
	return s.disposed.Load()
}

func subscribe[T any](ctx context.Context, src source[T], deliver func(T, error)) Disposable {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel}

	src.run(ctx, func(v T, err error) {
		if sub.disposed.Swap(true) {
			return
		}
		cancel()
		deliver(v, err)
	})
	return sub
}

// Single is a lazy stream that emits one value or one error.
type Single[T any] struct {
	src source[T]
}

// Subscribe starts the stream. Exactly one of onSuccess and onError is called
// unless the subscription is disposed first.
func (s *Single[T]) Subscribe(ctx context.Context, onSuccess func(T), onError func(error)) Disposable {
	return subscribe(ctx, s.src, func(v T, err error) {
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(v)
		}
	})
}

// Blocking runs the stream and waits for its outcome.
func (s *Single[T]) Blocking(ctx context.Context) (T, error) {
	return s.src.await(ctx)
}

// OnErrorReturn replaces an error with the value fn returns.
func (s *Single[T]) OnErrorReturn(fn func(error) T) *Single[T] {
	return &Single[T]{src: recoverSource(s.src, func(err error) (T, error) {
		return fn(err), nil
	})}
}

// IgnoreElement drops the value, keeping only completion or error.
func (s *Single[T]) IgnoreElement() *Completable {
	return &Completable{src: mapSource(s.src, func(T) (struct{}, error) {
		return struct{}{}, nil
	})}
}

// Map transforms the value through fn. Errors pass through.
func Map[T, U any](s *Single[T], fn func(T) (U, error)) *Single[U] {
	return &Single[U]{src: mapSource(s.src, fn)}
}

// Completable is a lazy stream that only signals completion or error.
type Completable struct {
	src source[struct{}]
}

// Subscribe starts the stream. Exactly one of onComplete and onError is called
// unless the subscription is disposed first.
func (c *Completable) Subscribe(ctx context.Context, onComplete func(), onError func(error)) Disposable {
	return subscribe(ctx, c.src, func(_ struct{}, err error) {
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onComplete != nil {
			onComplete()
		}
	})
}

// OnErrorComplete turns an error into completion.
func (c *Completable) OnErrorComplete() *Completable {
	return &Completable{src: recoverSource(c.src, func(error) (struct{}, error) {
		return struct{}{}, nil
	})}
}

// Blocking runs the stream and waits for completion.
func (c *Completable) Blocking(ctx context.Context) error {
	_, err := c.src.await(ctx)
	return err
}

// Singles is the reactive-stream client.
type Singles struct {
	sub Submitter
}

// NewSingles creates a reactive-stream client.
func NewSingles(sub Submitter) *Singles {
	return &Singles{sub: sub}
}

// Query returns a Single that submits sql on each subscription.
func (c *Singles) Query(sql string, args ...any) *Single[*pgdispatch.Result] {
	return &Single[*pgdispatch.Result]{src: querySource(c.sub, sql, args)}
}
