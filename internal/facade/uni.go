package facade

import (
	"context"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Uni is a lazy pipeline producing one item or one failure.
// Nothing runs until Subscribe; every subscription re-runs the pipeline.
type Uni[T any] struct {
	src source[T]
}

// Subscribe starts the pipeline. Exactly one of onItem and onFailure is called.
func (u *Uni[T]) Subscribe(ctx context.Context, onItem func(T), onFailure func(error)) {
	u.src.run(ctx, func(v T, err error) {
		if err != nil {
			if onFailure != nil {
				onFailure(err)
			}
			return
		}
		if onItem != nil {
			onItem(v)
		}
	})
}

// SubscribeAsFuture starts the pipeline and exposes its outcome as a Future.
func (u *Uni[T]) SubscribeAsFuture(ctx context.Context) *Future[T] {
	return futureFrom(ctx, u.src)
}

// IgnoreItem discards the item and continues with an empty value.
func (u *Uni[T]) IgnoreItem() *Uni[struct{}] {
	return Transform(u, func(T) (struct{}, error) {
		return struct{}{}, nil
	})
}

// RecoverWithItem replaces a failure with the item fn returns.
func (u *Uni[T]) RecoverWithItem(fn func(error) T) *Uni[T] {
	return &Uni[T]{src: recoverSource(u.src, func(err error) (T, error) {
		return fn(err), nil
	})}
}

// RecoverWith continues a failure with the Uni fn returns.
func (u *Uni[T]) RecoverWith(fn func(error) *Uni[T]) *Uni[T] {
	return &Uni[T]{src: func(ctx context.Context, emit func(T, error)) {
		u.src.run(ctx, func(v T, err error) {
			if err == nil {
				emit(v, nil)
				return
			}
			next := fn(err)
			if next == nil {
				var zero T
				emit(zero, ErrNilStage)
				return
			}
			next.src.run(ctx, emit)
		})
	}}
}

// Transform maps the item through fn. Failures pass through.
func Transform[T, U any](u *Uni[T], fn func(T) (U, error)) *Uni[U] {
	return &Uni[U]{src: mapSource(u.src, fn)}
}

// Unis is the lazy-pipeline client.
type Unis struct {
	sub Submitter
}

// NewUnis creates a lazy-pipeline client.
func NewUnis(sub Submitter) *Unis {
	return &Unis{sub: sub}
}

// Query returns a Uni that submits sql on each subscription.
func (c *Unis) Query(sql string, args ...any) *Uni[*pgdispatch.Result] {
	return &Uni[*pgdispatch.Result]{src: querySource(c.sub, sql, args)}
}
