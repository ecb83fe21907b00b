package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/pgdispatch/internal/facade"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// facadeNames lists the calling conventions in probe order.
var facadeNames = []string{"callback", "future", "uni", "single"}

// queryFunc runs one query to completion through a facade.
type queryFunc func(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error)

// facadeQuery returns a blocking query function that goes through the named facade.
func facadeQuery(name string, sub facade.Submitter) (queryFunc, error) {
	switch name {
	case "callback":
		client := facade.NewCallback(sub)
		return func(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error) {
			type outcome struct {
				r   *pgdispatch.Result
				err error
			}
			ch := make(chan outcome, 1)
			client.Query(ctx, sql, func(r *pgdispatch.Result, err error) {
				ch <- outcome{r, err}
			}, args...)
			o := <-ch
			return o.r, o.err
		}, nil
	case "future":
		client := facade.NewFutures(sub)
		return func(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error) {
			return client.Query(ctx, sql, args...).Get(ctx)
		}, nil
	case "uni":
		client := facade.NewUnis(sub)
		return func(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error) {
			return client.Query(sql, args...).SubscribeAsFuture(ctx).Get(ctx)
		}, nil
	case "single":
		client := facade.NewSingles(sub)
		return func(ctx context.Context, sql string, args ...any) (*pgdispatch.Result, error) {
			return client.Query(sql, args...).Blocking(ctx)
		}, nil
	}
	return nil, fmt.Errorf("unknown facade %q (want one of: %s): %w",
		name, strings.Join(facadeNames, ", "), pgdispatch.ErrInvalidConfig)
}

// parseFacades expands "all" and validates each name.
func parseFacades(names []string) ([]string, error) {
	var out []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "all" {
			out = append(out, facadeNames...)
			continue
		}
		if _, err := facadeQuery(n, nil); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one facade is required: %w", pgdispatch.ErrInvalidConfig)
	}
	return out, nil
}
