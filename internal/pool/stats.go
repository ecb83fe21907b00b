package pool

import "time"

// Stats is a point-in-time snapshot of pool state and cumulative counters.
type Stats struct {
	MaxSize int
	Total   int
	Idle    int
	Leased  int
	Opening int
	Waiting int

	AcquireCount   int64
	WaitCount      int64
	WaitDuration   time.Duration
	TimeoutCount   int64
	CanceledCount  int64
	OpenedCount    int64
	DestroyedCount int64
}

type counters struct {
	acquire   int64
	wait      int64
	waitTime  time.Duration
	timeout   int64
	canceled  int64
	opened    int64
	destroyed int64
}

// Stats returns a snapshot of the pool.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		MaxSize:        p.cfg.MaxSize,
		Total:          p.total,
		Idle:           len(p.idle),
		Leased:         p.leased,
		Opening:        p.opening,
		Waiting:        p.waiters.Len(),
		AcquireCount:   p.counters.acquire,
		WaitCount:      p.counters.wait,
		WaitDuration:   p.counters.waitTime,
		TimeoutCount:   p.counters.timeout,
		CanceledCount:  p.counters.canceled,
		OpenedCount:    p.counters.opened,
		DestroyedCount: p.counters.destroyed,
	}
}
