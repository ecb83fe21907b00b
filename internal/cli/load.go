package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/internal/metrics"
	"github.com/vvka-141/pgdispatch/internal/pool"
	"github.com/vvka-141/pgdispatch/internal/tui"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

type loadOptions struct {
	requests    int
	concurrency int
	facades     []string
	query       string
	metricsAddr string
	timeout     time.Duration
}

var loadFlags struct {
	conn connectionFlags
	pool poolFlags
	opts loadOptions
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Drive concurrent traffic through the pool and report statistics",
	Long: `Load submits --requests queries, keeping at most --concurrency in flight,
rotating across the selected facades. Requests beyond the pool size queue
in FIFO order; the report shows how long they waited.

With --metrics-addr the pool and executor statistics are served in the
Prometheus exposition format at /metrics while the run lasts.

Examples:
  pgdispatch load --requests 1000 --concurrency 50 --max-size 5
  pgdispatch load --facade future --query "SELECT pg_sleep(0.01)" --metrics-addr :9187`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	registerConnectionFlags(loadCmd, &loadFlags.conn)
	registerPoolFlags(loadCmd, &loadFlags.pool)
	f := loadCmd.Flags()
	f.IntVar(&loadFlags.opts.requests, "requests", 100, "Total number of requests")
	f.IntVar(&loadFlags.opts.concurrency, "concurrency", 10, "Maximum requests in flight")
	f.StringSliceVar(&loadFlags.opts.facades, "facade", []string{"all"},
		"Facades to rotate through: callback|future|uni|single|all")
	f.StringVar(&loadFlags.opts.query, "query", pgdispatch.DefaultProbeQuery, "Query each request runs")
	f.StringVar(&loadFlags.opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.DurationVar(&loadFlags.opts.timeout, "timeout", 10*time.Minute, "Overall run deadline")
	rootCmd.AddCommand(loadCmd)
}

func (o loadOptions) validate() error {
	if o.requests < 1 {
		return fmt.Errorf("--requests must be at least 1, got %d: %w", o.requests, pgdispatch.ErrInvalidConfig)
	}
	if o.concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d: %w", o.concurrency, pgdispatch.ErrInvalidConfig)
	}
	return nil
}

func runLoad(cmd *cobra.Command, _ []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	opts := loadFlags.opts
	if err := opts.validate(); err != nil {
		return err
	}
	names, err := parseFacades(opts.facades)
	if err != nil {
		return err
	}

	d, err := openDispatcher(loadFlags.conn, loadFlags.pool, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(opts.timeout)
	defer cancel()

	if opts.metricsAddr != "" {
		metricsCtx, stopMetrics := context.WithCancel(ctx)
		metricsDone, err := serveMetrics(metricsCtx, d, opts.metricsAddr, logger)
		if err != nil {
			stopMetrics()
			d.Close() //nolint:errcheck
			return err
		}
		defer func() {
			stopMetrics()
			if err := <-metricsDone; err != nil {
				logger.Error("%v", err)
			}
		}()
	}

	report, loadErr := runLoadWith(ctx, d, names, opts)
	if err := d.Close(); err != nil {
		logger.Error("%v", err)
	}
	report.Pool = d.pool.Stats()

	fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
	return loadErr
}

func serveMetrics(ctx context.Context, d *dispatcher, addr string, logger pgdispatch.Logger) (chan error, error) {
	registry, err := metrics.NewRegistry(metrics.NewCollector(d.pool, d.exec))
	if err != nil {
		return nil, err
	}
	srv, err := metrics.Listen(addr, registry, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Metrics available at http://%s/metrics", srv.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	return done, nil
}

// loadReport summarizes one load run.
type loadReport struct {
	Requests  int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
	ByFacade  map[string]int
	Errors    map[string]int
	Pool      pool.Stats
}

// runLoadWith issues opts.requests queries with at most opts.concurrency in flight.
// Returns the first failure, if any, after every request has terminated.
func runLoadWith(ctx context.Context, d *dispatcher, names []string, opts loadOptions) (loadReport, error) {
	queries := make([]queryFunc, len(names))
	for i, n := range names {
		q, err := facadeQuery(n, d.exec)
		if err != nil {
			return loadReport{}, err
		}
		queries[i] = q
	}

	report := loadReport{ByFacade: make(map[string]int), Errors: make(map[string]int)}
	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, opts.concurrency)
	start := time.Now()

	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.Requests++
		report.ByFacade[name]++
		if err == nil {
			report.Succeeded++
			return
		}
		report.Failed++
		report.Errors[errorClass(err)]++
		if firstErr == nil {
			firstErr = err
		}
	}

issue:
	for i := 0; i < opts.requests; i++ {
		if ctx.Err() != nil {
			record(names[i%len(names)], ctx.Err())
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			record(names[i%len(names)], ctx.Err())
			break issue
		}

		idx := i % len(names)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			_, err := queries[idx](ctx, opts.query)
			record(names[idx], err)
		}()
	}
	wg.Wait()
	report.Elapsed = time.Since(start)

	if firstErr != nil {
		return report, fmt.Errorf("%d of %d requests failed: %w", report.Failed, report.Requests, firstErr)
	}
	return report, nil
}

// errorClass buckets an error by its sentinel for the report.
func errorClass(err error) string {
	switch pgdispatch.ExitCodeForError(err) {
	case pgdispatch.ExitAcquireTimeout:
		return "acquire timeout"
	case pgdispatch.ExitPoolClosed:
		return "pool closed"
	case pgdispatch.ExitConnectionError:
		return "connect failure"
	case pgdispatch.ExitQueryFailed:
		return "query failure"
	}
	return "other"
}

func renderReport(r loadReport) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, tui.LabelStyle.Render(label), value)
	}

	throughput := 0.0
	if r.Elapsed > 0 {
		throughput = float64(r.Requests) / r.Elapsed.Seconds()
	}
	avgWait := time.Duration(0)
	if r.Pool.WaitCount > 0 {
		avgWait = r.Pool.WaitDuration / time.Duration(r.Pool.WaitCount)
	}

	status := tui.SuccessStyle.Render(fmt.Sprintf("%s %d succeeded", tui.SymbolCheck, r.Succeeded))
	if r.Failed > 0 {
		status += "  " + tui.ErrorStyle.Render(fmt.Sprintf("%s %d failed", tui.SymbolCross, r.Failed))
	}

	lines := []string{
		tui.TitleStyle.Render("pgdispatch load"),
		row("requests", fmt.Sprintf("%d in %s (%.1f/s)", r.Requests, r.Elapsed.Round(time.Millisecond), throughput)),
		row("outcome", status),
		row("facades", formatCounts(r.ByFacade)),
	}
	if len(r.Errors) > 0 {
		lines = append(lines, row("errors", formatCounts(r.Errors)))
	}
	lines = append(lines,
		row("connections", fmt.Sprintf("max %d, opened %d, destroyed %d", r.Pool.MaxSize, r.Pool.OpenedCount, r.Pool.DestroyedCount)),
		row("acquires", fmt.Sprintf("%d, %d waited (avg %s)", r.Pool.AcquireCount, r.Pool.WaitCount, avgWait.Round(time.Microsecond))),
		row("wait failures", fmt.Sprintf("%d timed out, %d canceled", r.Pool.TimeoutCount, r.Pool.CanceledCount)),
	)
	return tui.BoxStyle.Render(strings.Join(lines, "\n"))
}

// formatCounts renders counts in facade order, then any remaining keys sorted.
func formatCounts(counts map[string]int) string {
	var parts []string
	seen := make(map[string]bool)
	for _, n := range facadeNames {
		if c, ok := counts[n]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", n, c))
			seen[n] = true
		}
	}
	var rest []string
	for k := range counts {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
