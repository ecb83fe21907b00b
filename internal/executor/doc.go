// Package executor runs queries against pooled connections and reports each
// outcome to a completion sink exactly once.
//
// Submit is the canonical asynchronous entry point every facade builds on:
//
//	exec := executor.New(executor.ForPool(p))
//	exec.Submit(ctx, "SELECT 1", executor.SinkFunc(func(r *pgdispatch.Result, err error) {
//		...
//	}))
//
// The lease is always released before the sink runs, so a sink may submit
// follow-up work even on a pool of size one.
package executor
