package facade

import (
	"context"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Callback is the bare completion-callback client.
type Callback struct {
	sub Submitter
}

// NewCallback creates a callback client.
func NewCallback(sub Submitter) *Callback {
	return &Callback{sub: sub}
}

// Query runs sql and calls fn exactly once with the outcome.
func (c *Callback) Query(ctx context.Context, sql string, fn func(*pgdispatch.Result, error), args ...any) {
	if fn == nil {
		fn = func(*pgdispatch.Result, error) {}
	}
	querySource(c.sub, sql, args).run(ctx, fn)
}
