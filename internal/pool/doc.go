// Package pool implements a bounded pool of physical PostgreSQL sessions.
//
// The pool opens connections lazily up to PoolConfig.MaxSize. When every
// slot is in use, Acquire enqueues the caller in a FIFO wait-queue; a
// released connection is handed directly to the longest-waiting caller.
//
// Connections that report a lost session are never returned to rotation.
// Their slot passes to the head waiter, which dials a replacement.
//
// Usage:
//
//	p, err := pool.New(connector, pgdispatch.DefaultPoolConfig(), pool.WithLogger(logger))
//	lease, err := p.Acquire(ctx)
//	defer lease.Release()
//	result, err := lease.Execute(ctx, "SELECT 1")
//
// All Pool and Lease methods are safe for concurrent use.
package pool
