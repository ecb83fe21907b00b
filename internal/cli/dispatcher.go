package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/pgdispatch/internal/config"
	"github.com/vvka-141/pgdispatch/internal/db"
	"github.com/vvka-141/pgdispatch/internal/executor"
	"github.com/vvka-141/pgdispatch/internal/pool"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// dispatcher is the explicitly wired pool and executor a command runs against.
type dispatcher struct {
	connector       pgdispatch.Connector
	pool            *pool.Pool
	exec            *executor.Executor
	logger          pgdispatch.Logger
	shutdownTimeout time.Duration
}

func newDispatcher(
	connector pgdispatch.Connector,
	poolCfg pgdispatch.PoolConfig,
	shutdownTimeout time.Duration,
	logger pgdispatch.Logger,
) (*dispatcher, error) {
	p, err := pool.New(connector, poolCfg, pool.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &dispatcher{
		connector:       connector,
		pool:            p,
		exec:            executor.New(executor.ForPool(p), executor.WithLogger(logger)),
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// openDispatcher resolves configuration and builds a dispatcher. No
// connection is dialed until the first request.
func openDispatcher(connFlags connectionFlags, pf poolFlags, logger pgdispatch.Logger) (*dispatcher, error) {
	projectCfg, err := loadProjectConfig(connFlags)
	if err != nil {
		return nil, err
	}
	if projectCfg != nil {
		logger.Verbose("Loaded %s from %s", config.ConfigFileName, connFlags.configDir)
	}

	connConfig, err := resolveConnectionFromFlags(connFlags, projectCfg)
	if err != nil {
		return nil, err
	}

	poolCfg, shutdownTimeout, err := resolvePoolConfig(pf, projectCfg)
	if err != nil {
		return nil, err
	}
	logConnectionVerbose(logger, connConfig, poolCfg)

	connector, err := db.NewConnector(connConfig, logger)
	if err != nil {
		return nil, err
	}

	return newDispatcher(connector, poolCfg, shutdownTimeout, logger)
}

// Close waits for outstanding requests, then drains the pool within the shutdown timeout.
func (d *dispatcher) Close() error {
	d.exec.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), d.shutdownTimeout)
	defer cancel()
	if err := d.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("close dispatcher: %w", err)
	}
	// The Cloud SQL dialer holds background refresh goroutines.
	if closer, ok := d.connector.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
