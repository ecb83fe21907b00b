package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/internal/tui"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

var probeFlags struct {
	conn    connectionFlags
	pool    poolFlags
	query   string
	timeout time.Duration
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run one query through every facade and check the outcomes agree",
	Long: `Probe submits the same query once through each facade (callback, future,
uni, single) against a shared pool and prints each outcome.

It fails when any facade fails or when facades disagree on the first value.

Examples:
  pgdispatch probe --connection postgresql://postgres@localhost/postgres
  pgdispatch probe -h localhost -U postgres --max-size 1`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	registerConnectionFlags(probeCmd, &probeFlags.conn)
	registerPoolFlags(probeCmd, &probeFlags.pool)
	probeCmd.Flags().StringVar(&probeFlags.query, "query", pgdispatch.DefaultProbeQuery, "Query to run through each facade")
	probeCmd.Flags().DurationVar(&probeFlags.timeout, "timeout", time.Minute, "Overall probe deadline")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, _ []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	d, err := openDispatcher(probeFlags.conn, probeFlags.pool, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(probeFlags.timeout)
	defer cancel()

	probeErr := probe(ctx, d, probeFlags.query, facadeNames, os.Stderr, cmd.OutOrStdout())
	if err := d.Close(); err != nil {
		logger.Error("%v", err)
	}
	return probeErr
}

// probe runs query once per facade and reports the agreed value on out.
func probe(ctx context.Context, d *dispatcher, query string, names []string, progress, out io.Writer) error {
	tasks := make([]tui.Task, 0, len(names))
	for _, name := range names {
		q, err := facadeQuery(name, d.exec)
		if err != nil {
			return err
		}
		tasks = append(tasks, tui.Task{
			Name: name,
			Run: func(ctx context.Context) (string, error) {
				r, err := q(ctx, query)
				if err != nil {
					return "", err
				}
				return fmt.Sprint(r.Scalar()), nil
			},
		})
	}

	outcomes := tui.RunTasks(ctx, "pgdispatch probe: "+query, tasks, progress)
	if len(outcomes) == 0 {
		return nil
	}

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Name, o.Err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("probe failed for %d of %d facades: %w", len(errs), len(outcomes), errors.Join(errs...))
	}

	for _, o := range outcomes[1:] {
		if o.Result != outcomes[0].Result {
			return fmt.Errorf("facades disagree: %s returned %q, %s returned %q",
				outcomes[0].Name, outcomes[0].Result, o.Name, o.Result)
		}
	}

	fmt.Fprintf(out, "%d facades returned %s\n", len(outcomes), outcomes[0].Result)
	return nil
}

// signalContext is canceled on Ctrl+C, SIGTERM or after timeout.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stop()
		cancel()
	}
}
