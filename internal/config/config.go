package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	SSLCert        string `yaml:"sslcert,omitempty"`
	SSLKey         string `yaml:"sslkey,omitempty"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	AppName        string `yaml:"application_name,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// PoolConfig is the pool section. Durations use time.ParseDuration syntax.
type PoolConfig struct {
	MaxSize         int    `yaml:"max_size,omitempty"`
	AcquireTimeout  string `yaml:"acquire_timeout,omitempty"`
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Pool       PoolConfig       `yaml:"pool"`
}

const ConfigFileName = "pgdispatch.yaml"

func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file from an explicit path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, err, pgdispatch.ErrInvalidConfig)
	}
	return &cfg, nil
}

// ApplyPool overlays the pool section onto base. Unset fields keep base values.
func (c *ProjectConfig) ApplyPool(base pgdispatch.PoolConfig) (pgdispatch.PoolConfig, error) {
	if c == nil {
		return base, nil
	}

	if c.Pool.MaxSize != 0 {
		base.MaxSize = c.Pool.MaxSize
	}
	if c.Pool.AcquireTimeout != "" {
		d, err := time.ParseDuration(c.Pool.AcquireTimeout)
		if err != nil {
			return base, fmt.Errorf("pool.acquire_timeout %q: %w", c.Pool.AcquireTimeout, pgdispatch.ErrInvalidConfig)
		}
		base.AcquireTimeout = d
	}
	return base, base.Validate()
}

// ShutdownTimeout returns the configured shutdown timeout or fallback.
func (c *ProjectConfig) ShutdownTimeout(fallback time.Duration) (time.Duration, error) {
	if c == nil || c.Pool.ShutdownTimeout == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(c.Pool.ShutdownTimeout)
	if err != nil {
		return fallback, fmt.Errorf("pool.shutdown_timeout %q: %w", c.Pool.ShutdownTimeout, pgdispatch.ErrInvalidConfig)
	}
	return d, nil
}
