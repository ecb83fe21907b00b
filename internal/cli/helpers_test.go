package cli

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgdispatch/internal/logging"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// newMockDispatcher wires a single-connection dispatcher over one pgxmock session.
func newMockDispatcher(t *testing.T, acquireTimeout time.Duration) (*dispatcher, pgxmock.PgxConnIface) {
	t.Helper()

	mock, err := pgxmock.NewConn()
	require.NoError(t, err)

	connector := pgdispatch.ConnectorFunc(func(context.Context) (pgdispatch.Session, error) {
		return mock, nil
	})
	d, err := newDispatcher(connector,
		pgdispatch.PoolConfig{MaxSize: 1, AcquireTimeout: acquireTimeout},
		5*time.Second, logging.NewNullLogger())
	require.NoError(t, err)
	return d, mock
}

func expectSelectOne(mock pgxmock.PgxConnIface, times int, value any) {
	for i := 0; i < times; i++ {
		mock.ExpectQuery("SELECT 1").
			WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(value))
	}
}
