package pool

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/internal/retry"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// grant is what a waiter receives: a live connection, permission to dial
// into a freed slot, or a terminal error.
type grant struct {
	conn *Conn
	dial bool
	err  error
}

type waiter struct {
	ch   chan grant
	elem *list.Element
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool logger.
func WithLogger(logger pgdispatch.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRetryExecutor sets the executor used to retry failed dials.
func WithRetryExecutor(executor *retry.Executor) Option {
	return func(p *Pool) {
		if executor != nil {
			p.retry = executor
		}
	}
}

// Pool is a bounded set of physical connections shared by concurrent callers.
//
// Invariant: leased + idle + opening == total <= MaxSize.
type Pool struct {
	connector pgdispatch.Connector
	cfg       pgdispatch.PoolConfig
	retry     *retry.Executor
	detector  lossDetector
	logger    pgdispatch.Logger

	mu       sync.Mutex
	idle     []*Conn
	waiters  list.List
	total    int
	leased   int
	opening  int
	closed   bool
	drained  chan struct{}
	finished bool
	counters counters
}

// New creates a pool. No connection is opened until the first Acquire.
func New(connector pgdispatch.Connector, cfg pgdispatch.PoolConfig, opts ...Option) (*Pool, error) {
	if connector == nil {
		return nil, fmt.Errorf("connector is required: %w", pgdispatch.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		connector: connector,
		cfg:       cfg,
		retry:     retry.NewDefaultExecutor(),
		detector:  retry.NewPostgreSQLErrorClassifier(),
		logger:    logging.NewNullLogger(),
		drained:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pool configuration.
func (p *Pool) Config() pgdispatch.PoolConfig {
	return p.cfg
}

// Acquire leases a connection.
//
// An idle connection is returned immediately. Otherwise a new one is dialed if
// the pool is below MaxSize, else the caller waits in FIFO order. Waiting ends
// with ErrAcquireTimeout after AcquireTimeout, with ctx.Err() when ctx is done,
// or with ErrPoolClosed when the pool shuts down.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.counters.acquire++

	if p.closed {
		p.mu.Unlock()
		return nil, pgdispatch.ErrPoolClosed
	}

	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		p.leased++
		c.setState(StateLeased)
		p.mu.Unlock()
		return p.newLease(c), nil
	}

	if p.total < p.cfg.MaxSize {
		p.total++
		p.opening++
		p.mu.Unlock()
		return p.dial(ctx)
	}

	w := &waiter{ch: make(chan grant, 1)}
	w.elem = p.waiters.PushBack(w)
	p.counters.wait++
	p.mu.Unlock()

	return p.wait(ctx, w)
}

func (p *Pool) wait(ctx context.Context, w *waiter) (*Lease, error) {
	start := time.Now()

	var timeout <-chan time.Time
	if p.cfg.AcquireTimeout > 0 {
		timer := time.NewTimer(p.cfg.AcquireTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case g := <-w.ch:
		p.recordWait(time.Since(start))
		return p.accept(ctx, g)

	case <-ctx.Done():
		p.abandon(w, &p.counters.canceled, time.Since(start))
		return nil, ctx.Err()

	case <-timeout:
		p.abandon(w, &p.counters.timeout, time.Since(start))
		p.logger.Verbose("Acquire timed out after %s", p.cfg.AcquireTimeout)
		return nil, fmt.Errorf("no connection available within %s: %w", p.cfg.AcquireTimeout, pgdispatch.ErrAcquireTimeout)
	}
}

func (p *Pool) recordWait(d time.Duration) {
	p.mu.Lock()
	p.counters.waitTime += d
	p.mu.Unlock()
}

func (p *Pool) accept(ctx context.Context, g grant) (*Lease, error) {
	switch {
	case g.err != nil:
		return nil, g.err
	case g.conn != nil:
		return p.newLease(g.conn), nil
	default:
		return p.dial(ctx)
	}
}

// abandon removes a waiter that gave up. A grant that raced the give-up is
// returned to the pool so no connection or slot leaks.
func (p *Pool) abandon(w *waiter, counter *int64, waited time.Duration) {
	p.mu.Lock()
	*counter++
	p.counters.waitTime += waited
	if w.elem != nil {
		p.waiters.Remove(w.elem)
		w.elem = nil
		p.mu.Unlock()
		return
	}
	g := <-w.ch
	p.mu.Unlock()

	switch {
	case g.conn != nil:
		p.put(g.conn)
	case g.dial:
		p.mu.Lock()
		p.total--
		p.opening--
		p.handOffSlotLocked()
		p.signalDrainedLocked()
		p.mu.Unlock()
	}
}

// dial opens a connection into a slot already reserved by the caller.
func (p *Pool) dial(ctx context.Context) (*Lease, error) {
	var session pgdispatch.Session
	err := p.retry.Execute(ctx, func(ctx context.Context) error {
		s, err := p.connector.Connect(ctx)
		if err != nil {
			return err
		}
		session = s
		return nil
	})

	p.mu.Lock()
	p.opening--

	if err != nil {
		p.total--
		p.handOffSlotLocked()
		p.signalDrainedLocked()
		p.mu.Unlock()
		p.logger.Verbose("Connection attempt failed: %v", err)
		return nil, fmt.Errorf("%w: %w", pgdispatch.ErrConnectFailure, err)
	}

	if p.closed {
		p.total--
		p.signalDrainedLocked()
		p.mu.Unlock()
		c := newConn(session, p.detector)
		_ = c.close()
		return nil, pgdispatch.ErrPoolClosed
	}

	c := newConn(session, p.detector)
	c.setState(StateLeased)
	p.leased++
	p.counters.opened++
	total := p.total
	p.mu.Unlock()

	p.logger.Verbose("Opened connection %s (%d/%d)", c.id, total, p.cfg.MaxSize)
	return p.newLease(c), nil
}

func (p *Pool) newLease(c *Conn) *Lease {
	return &Lease{pool: p, conn: c}
}

// put takes back a leased connection.
func (p *Pool) put(c *Conn) {
	p.mu.Lock()
	p.leased--

	if p.closed || c.State() == StateClosed {
		p.total--
		p.counters.destroyed++
		p.handOffSlotLocked()
		p.signalDrainedLocked()
		p.mu.Unlock()

		p.logger.Verbose("Destroying connection %s", c.id)
		if err := c.close(); err != nil {
			p.logger.Verbose("Closing connection %s: %v", c.id, err)
		}
		return
	}

	if front := p.waiters.Front(); front != nil {
		w := p.waiters.Remove(front).(*waiter)
		w.elem = nil
		p.leased++
		w.ch <- grant{conn: c}
		p.mu.Unlock()
		return
	}

	c.setState(StateIdle)
	p.idle = append(p.idle, c)
	p.mu.Unlock()
}

// handOffSlotLocked gives a freed slot to the head waiter as permission to dial.
func (p *Pool) handOffSlotLocked() {
	if p.closed {
		return
	}
	front := p.waiters.Front()
	if front == nil {
		return
	}
	w := p.waiters.Remove(front).(*waiter)
	w.elem = nil
	p.total++
	p.opening++
	w.ch <- grant{dial: true}
}

func (p *Pool) signalDrainedLocked() {
	if p.closed && p.total == 0 && !p.finished {
		p.finished = true
		close(p.drained)
	}
}

// Close stops the pool without waiting for leased connections.
// Waiters fail with ErrPoolClosed, idle connections are closed, and leased
// connections are closed when released. Safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true

	for front := p.waiters.Front(); front != nil; front = p.waiters.Front() {
		w := p.waiters.Remove(front).(*waiter)
		w.elem = nil
		w.ch <- grant{err: pgdispatch.ErrPoolClosed}
	}

	idle := p.idle
	p.idle = nil
	p.total -= len(idle)
	p.counters.destroyed += int64(len(idle))
	p.signalDrainedLocked()
	leased := p.leased
	p.mu.Unlock()

	p.logger.Verbose("Pool closing: %d idle closed, %d leased outstanding", len(idle), leased)
	for _, c := range idle {
		if err := c.close(); err != nil {
			p.logger.Verbose("Closing connection %s: %v", c.id, err)
		}
	}
}

// Shutdown closes the pool and waits until every leased connection was
// released, or until ctx is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.Close()

	select {
	case <-p.drained:
		p.logger.Verbose("Pool drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pool shutdown: %w", ctx.Err())
	}
}
