//go:build conntest

package conntest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgdispatch/internal/config"
	"github.com/vvka-141/pgdispatch/internal/db"
)

func TestPrecedence_FlagOverridesEnv(t *testing.T) {
	cfg := parseStdConnString(t)

	t.Setenv("PGPASSWORD", "wrong-password-from-env")
	t.Setenv("PGHOST", "env-host-that-does-not-exist")

	flags := &db.GranularConnFlags{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
	}

	resolved, err := db.ResolveConnectionParams("", flags, nil, nil, db.LoadFromEnvironment(), nil)
	require.NoError(t, err)

	assert.Equal(t, cfg.Host, resolved.Host)
	assert.Equal(t, "wrong-password-from-env", resolved.Password)

	resolved.Password = cfg.Password
	resolved.Database = cfg.Database
	resolved.SSLMode = "disable"

	exec := connectWithConfig(t, resolved)
	pingSucceeds(t, exec)
}

func TestPrecedence_CertFlagOverridesEnv(t *testing.T) {
	cfg := parseMTLSConnString(t)

	t.Setenv("PGSSLCERT", "/nonexistent/wrong.crt")
	t.Setenv("PGSSLKEY", "/nonexistent/wrong.key")

	certFlags := &db.CertFlags{
		SSLCert:     certPaths.ClientCert,
		SSLKey:      certPaths.ClientKey,
		SSLRootCert: certPaths.CACert,
	}

	resolved, err := db.ResolveConnectionParams(
		db.BuildConnectionString(cfg), nil, nil, certFlags, db.LoadFromEnvironment(), nil)
	require.NoError(t, err)

	assert.Equal(t, certPaths.ClientCert, resolved.SSLCert, "flag should override PGSSLCERT env")
	assert.Equal(t, certPaths.ClientKey, resolved.SSLKey, "flag should override PGSSLKEY env")

	exec := connectWithConfig(t, resolved)
	pingSucceeds(t, exec)
}

func TestPrecedence_EnvFallback(t *testing.T) {
	cfg := parseStdConnString(t)

	t.Setenv("PGHOST", cfg.Host)
	t.Setenv("PGUSER", cfg.Username)
	t.Setenv("PGPASSWORD", cfg.Password)
	t.Setenv("PGSSLMODE", "disable")

	resolved, err := db.ResolveConnectionParams(
		"", &db.GranularConnFlags{Port: cfg.Port}, nil, nil, db.LoadFromEnvironment(), nil)
	require.NoError(t, err)

	assert.Equal(t, cfg.Host, resolved.Host)
	assert.Equal(t, cfg.Username, resolved.Username)

	resolved.Database = cfg.Database

	exec := connectWithConfig(t, resolved)
	pingSucceeds(t, exec)
}

func TestPrecedence_ProjectFileFallback(t *testing.T) {
	cfg := parseStdConnString(t)

	t.Setenv("PGHOST", "")
	t.Setenv("PGUSER", "")
	t.Setenv("PGPASSWORD", cfg.Password)

	project := &config.ProjectConfig{Connection: config.ConnectionConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Database: cfg.Database,
		SSLMode:  "disable",
	}}

	resolved, err := db.ResolveConnectionParams("", nil, nil, nil, db.LoadFromEnvironment(), project)
	require.NoError(t, err)
	assert.Equal(t, cfg.Port, resolved.Port)

	exec := connectWithConfig(t, resolved)
	pingSucceeds(t, exec)
}
