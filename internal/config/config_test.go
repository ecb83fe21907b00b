package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	return dir
}

func TestLoad_AllFields(t *testing.T) {
	dir := writeConfig(t, `connection:
  host: myhost
  port: 5433
  username: myuser
  database: mydb
  sslmode: require
  sslcert: /path/client.crt
  sslkey: /path/client.key
  sslrootcert: /path/ca.crt
  application_name: loadgen
  auth_method: aws
  aws_region: eu-west-1

pool:
  max_size: 8
  acquire_timeout: 250ms
  shutdown_timeout: 5s
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "myhost", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "myuser", cfg.Connection.Username)
	assert.Equal(t, "mydb", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "/path/client.crt", cfg.Connection.SSLCert)
	assert.Equal(t, "/path/client.key", cfg.Connection.SSLKey)
	assert.Equal(t, "/path/ca.crt", cfg.Connection.SSLRootCert)
	assert.Equal(t, "loadgen", cfg.Connection.AppName)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "eu-west-1", cfg.Connection.AWSRegion)
	assert.Equal(t, 8, cfg.Pool.MaxSize)
	assert.Equal(t, "250ms", cfg.Pool.AcquireTimeout)
	assert.Equal(t, "5s", cfg.Pool.ShutdownTimeout)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := writeConfig(t, "pool:\n  max_size: 2\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Empty(t, cfg.Connection.Host)
	assert.Equal(t, 2, cfg.Pool.MaxSize)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "connection: [unclosed")

	_, err := Load(dir)
	assert.ErrorIs(t, err, pgdispatch.ErrInvalidConfig)
}

func TestApplyPool(t *testing.T) {
	base := pgdispatch.DefaultPoolConfig()

	t.Run("nil config keeps base", func(t *testing.T) {
		var cfg *ProjectConfig
		got, err := cfg.ApplyPool(base)
		require.NoError(t, err)
		assert.Equal(t, base, got)
	})

	t.Run("overrides set fields", func(t *testing.T) {
		cfg := &ProjectConfig{Pool: PoolConfig{MaxSize: 1, AcquireTimeout: "50ms"}}
		got, err := cfg.ApplyPool(base)
		require.NoError(t, err)
		assert.Equal(t, 1, got.MaxSize)
		assert.Equal(t, 50*time.Millisecond, got.AcquireTimeout)
	})

	t.Run("rejects bad duration", func(t *testing.T) {
		cfg := &ProjectConfig{Pool: PoolConfig{AcquireTimeout: "soon"}}
		_, err := cfg.ApplyPool(base)
		assert.ErrorIs(t, err, pgdispatch.ErrInvalidConfig)
	})

	t.Run("rejects invalid size", func(t *testing.T) {
		cfg := &ProjectConfig{Pool: PoolConfig{MaxSize: -3}}
		_, err := cfg.ApplyPool(base)
		assert.ErrorIs(t, err, pgdispatch.ErrInvalidConfig)
	})
}

func TestShutdownTimeout(t *testing.T) {
	var nilCfg *ProjectConfig
	d, err := nilCfg.ShutdownTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	cfg := &ProjectConfig{Pool: PoolConfig{ShutdownTimeout: "3s"}}
	d, err = cfg.ShutdownTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	cfg.Pool.ShutdownTimeout = "later"
	_, err = cfg.ShutdownTimeout(time.Second)
	assert.ErrorIs(t, err, pgdispatch.ErrInvalidConfig)
}
