package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vvka-141/pgdispatch/internal/executor"
	"github.com/vvka-141/pgdispatch/internal/pool"
)

const namespace = "pgdispatch"

// PoolSource supplies pool snapshots. *pool.Pool satisfies it.
type PoolSource interface {
	Stats() pool.Stats
}

// ExecutorSource supplies executor counters. *executor.Executor satisfies it.
type ExecutorSource interface {
	Stats() executor.Stats
}

// Collector reads a fresh snapshot on every scrape, so gauges never lag the pool.
type Collector struct {
	pool     PoolSource
	executor ExecutorSource

	maxSize     *prometheus.Desc
	connections *prometheus.Desc
	waiting     *prometheus.Desc
	acquires    *prometheus.Desc
	waits       *prometheus.Desc
	waitSeconds *prometheus.Desc
	timeouts    *prometheus.Desc
	canceled    *prometheus.Desc
	opened      *prometheus.Desc
	destroyed   *prometheus.Desc
	requests    *prometheus.Desc
	inFlight    *prometheus.Desc
}

// NewCollector creates a collector. exec may be nil when only the pool is exported.
func NewCollector(p PoolSource, exec ExecutorSource) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		pool:        p,
		executor:    exec,
		maxSize:     desc("pool_max_connections", "Configured upper bound of physical connections."),
		connections: desc("pool_connections", "Physical connections by state.", "state"),
		waiting:     desc("pool_waiting_requests", "Acquirers queued for a connection."),
		acquires:    desc("pool_acquires_total", "Successful acquisitions."),
		waits:       desc("pool_waits_total", "Acquisitions that had to queue."),
		waitSeconds: desc("pool_wait_seconds_total", "Cumulative time spent queued."),
		timeouts:    desc("pool_acquire_timeouts_total", "Acquisitions that failed with the acquire timeout."),
		canceled:    desc("pool_acquire_canceled_total", "Acquisitions abandoned by their context."),
		opened:      desc("pool_connections_opened_total", "Physical connections dialed."),
		destroyed:   desc("pool_connections_destroyed_total", "Physical connections closed."),
		requests:    desc("executor_requests_total", "Finished requests by outcome.", "outcome"),
		inFlight:    desc("executor_requests_in_flight", "Requests submitted but not yet completed."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxSize
	ch <- c.connections
	ch <- c.waiting
	ch <- c.acquires
	ch <- c.waits
	ch <- c.waitSeconds
	ch <- c.timeouts
	ch <- c.canceled
	ch <- c.opened
	ch <- c.destroyed
	if c.executor != nil {
		ch <- c.requests
		ch <- c.inFlight
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stats()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}

	gauge(c.maxSize, float64(s.MaxSize))
	gauge(c.connections, float64(s.Idle), "idle")
	gauge(c.connections, float64(s.Leased), "leased")
	gauge(c.connections, float64(s.Opening), "opening")
	gauge(c.waiting, float64(s.Waiting))
	counter(c.acquires, float64(s.AcquireCount))
	counter(c.waits, float64(s.WaitCount))
	counter(c.waitSeconds, s.WaitDuration.Seconds())
	counter(c.timeouts, float64(s.TimeoutCount))
	counter(c.canceled, float64(s.CanceledCount))
	counter(c.opened, float64(s.OpenedCount))
	counter(c.destroyed, float64(s.DestroyedCount))

	if c.executor == nil {
		return
	}
	e := c.executor.Stats()
	counter(c.requests, float64(e.Succeeded), "success")
	counter(c.requests, float64(e.Failed), "failure")
	gauge(c.inFlight, float64(e.InFlight))
}
