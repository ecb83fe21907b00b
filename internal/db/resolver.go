package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pgdispatch/internal/config"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is NOT a CLI flag. Use $PGPASSWORD or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided by the user.
// Database is excluded: it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CertFlags carries client certificate paths from CLI flags.
type CertFlags struct {
	SSLCert     string
	SSLKey      string
	SSLRootCert string
}

// CloudFlags selects and parameterizes cloud IAM authentication.
// Azure client secret is NOT a flag; it comes from AZURE_CLIENT_SECRET.
type CloudFlags struct {
	AuthMethod     string
	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

// EnvVars represents PostgreSQL standard and cloud SDK environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGDISPATCH_CONNECTION_STRING string
	DATABASE_URL                 string

	PGHOST        string
	PGPORT        string
	PGUSER        string
	PGPASSWORD    string
	PGDATABASE    string
	PGSSLMODE     string
	PGSSLCERT     string
	PGSSLKEY      string
	PGSSLROOTCERT string
	PGAPPNAME     string

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads the variables EnvVars describes.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGDISPATCH_CONNECTION_STRING: os.Getenv("PGDISPATCH_CONNECTION_STRING"),
		DATABASE_URL:                 os.Getenv("DATABASE_URL"),
		PGHOST:                       os.Getenv("PGHOST"),
		PGPORT:                       os.Getenv("PGPORT"),
		PGUSER:                       os.Getenv("PGUSER"),
		PGPASSWORD:                   os.Getenv("PGPASSWORD"),
		PGDATABASE:                   os.Getenv("PGDATABASE"),
		PGSSLMODE:                    os.Getenv("PGSSLMODE"),
		PGSSLCERT:                    os.Getenv("PGSSLCERT"),
		PGSSLKEY:                     os.Getenv("PGSSLKEY"),
		PGSSLROOTCERT:                os.Getenv("PGSSLROOTCERT"),
		PGAPPNAME:                    os.Getenv("PGAPPNAME"),
		AWS_REGION:                   os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:              os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:              os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:          os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ConnectionString returns the first connection string found in the environment.
func (e *EnvVars) ConnectionString() string {
	if e.PGDISPATCH_CONNECTION_STRING != "" {
		return e.PGDISPATCH_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// ResolveConnectionParams resolves connection parameters using PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection)
//  2. $PGDISPATCH_CONNECTION_STRING, then $DATABASE_URL, when no granular flags are set
//  3. Granular flags (-h, -p, -U, -d)
//  4. PG* environment variables
//  5. pgdispatch.yaml connection section
//  6. Defaults (localhost:5432, prefer SSL)
//
// A --database flag overrides the database of a connection string.
// Certificate and cloud settings follow flag > environment > pgdispatch.yaml.
//
// Returns an error if both --connection and granular flags are provided.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	certFlags *CertFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgdispatch.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if certFlags == nil {
		certFlags = &CertFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/postgres\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d mydb\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			pgdispatch.ErrInvalidConfig,
		)
	}

	var cfg *pgdispatch.ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.ConnectionString() != "":
		cfg, err = resolveFromConnectionString(envVars.ConnectionString(), envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, err
	}

	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	applyCerts(cfg, certFlags, envVars, pc)
	if err := applyCloudAuth(cfg, cloudFlags, envVars, pc); err != nil {
		return nil, err
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func applyCerts(cfg *pgdispatch.ConnectionConfig, flags *CertFlags, env *EnvVars, pc config.ConnectionConfig) {
	cfg.SSLCert = firstNonEmpty(flags.SSLCert, cfg.SSLCert, env.PGSSLCERT, pc.SSLCert)
	cfg.SSLKey = firstNonEmpty(flags.SSLKey, cfg.SSLKey, env.PGSSLKEY, pc.SSLKey)
	cfg.SSLRootCert = firstNonEmpty(flags.SSLRootCert, cfg.SSLRootCert, env.PGSSLROOTCERT, pc.SSLRootCert)
}

// applyCloudAuth selects the auth method and attaches cloud parameters.
// Without an explicit method, Azure credentials in flags or environment select Azure Entra ID.
func applyCloudAuth(cfg *pgdispatch.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	tenantID := firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	clientID := firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)

	methodName := firstNonEmpty(flags.AuthMethod, pc.AuthMethod)
	method, err := pgdispatch.ParseAuthMethod(methodName)
	if err != nil {
		return err
	}
	if methodName == "" && (tenantID != "" || clientID != "") {
		method = pgdispatch.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case pgdispatch.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case pgdispatch.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	case pgdispatch.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

// resolveFromConnectionString parses a connection string. PGSSLMODE fills
// in a missing sslmode, following libpq.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*pgdispatch.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	cfg.SSLMode = firstNonEmpty(cfg.SSLMode, envVars.PGSSLMODE, "prefer")
	return cfg, nil
}

// resolveFromGranularParams builds ConnectionConfig with per-field precedence
// flag > environment > pgdispatch.yaml > default.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	pc config.ConnectionConfig,
) (*pgdispatch.ConnectionConfig, error) {
	cfg := &pgdispatch.ConnectionConfig{
		AuthMethod:       pgdispatch.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, pgdispatch.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = pgdispatch.DefaultPort
	}

	// Username falls back to the current OS user, as libpq does.
	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database, pgdispatch.DefaultDatabase)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")
	cfg.AppName = firstNonEmpty(envVars.PGAPPNAME, pc.AppName)

	return cfg, nil
}
