package testing

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgdispatch/internal/db"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// NewNoticeConnector returns a connector whose sessions report their NOTICE
// messages to capture.
func NewNoticeConnector(t *testing.T, connString string, capture *NoticeCapture) pgdispatch.Connector {
	t.Helper()

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	connConfig, err := pgx.ParseConfig(db.BuildConnectionString(config))
	if err != nil {
		t.Fatalf("Failed to parse session config: %v", err)
	}
	connConfig.OnNotice = capture.Handler()

	return pgdispatch.ConnectorFunc(func(ctx context.Context) (pgdispatch.Session, error) {
		return pgx.ConnectConfig(ctx, connConfig.Copy())
	})
}
