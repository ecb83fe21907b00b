package executor

import (
	"context"

	"github.com/vvka-141/pgdispatch/internal/pool"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Lease is exclusive use of one connection until Release.
type Lease interface {
	Execute(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error)
	Release()
}

// Acquirer hands out leases.
type Acquirer interface {
	Acquire(ctx context.Context) (Lease, error)
}

// AcquirerFunc adapts a function to the Acquirer interface.
type AcquirerFunc func(ctx context.Context) (Lease, error)

// Acquire calls f(ctx).
func (f AcquirerFunc) Acquire(ctx context.Context) (Lease, error) {
	return f(ctx)
}

// ForPool adapts a connection pool to the Acquirer interface.
func ForPool(p *pool.Pool) Acquirer {
	return AcquirerFunc(func(ctx context.Context) (Lease, error) {
		lease, err := p.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return lease, nil
	})
}
