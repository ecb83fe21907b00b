package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgdispatch/internal/config"
	"github.com/vvka-141/pgdispatch/internal/db"
	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	configDir      string
	envFile        string
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	authMethod     string
	azureTenantID  string
	azureClientID  string
	awsRegion      string
	googleInstance string
	sslCert        string
	sslKey         string
	sslRootCert    string
}

// poolFlags holds pool sizing flags. Zero values defer to pgdispatch.yaml.
type poolFlags struct {
	maxSize         int
	acquireTimeout  time.Duration
	shutdownTimeout time.Duration
}

func registerConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.configDir, "config-dir", ".",
		"Directory containing pgdispatch.yaml")
	flags.StringVar(&f.envFile, "env-file", "",
		"Load environment variables from this file (default: .env when present)")
	flags.StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format)\n"+
			"Falls back to $PGDISPATCH_CONNECTION_STRING, then $DATABASE_URL")

	flags.StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host (default: $PGHOST or localhost)")
	flags.IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port (default: $PGPORT or 5432)")
	flags.StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	flags.StringVarP(&f.database, "database", "d", "",
		"Database name (overrides the connection string database)")
	flags.StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full (default: $PGSSLMODE or prefer)")
	flags.StringVar(&f.sslCert, "sslcert", "", "Client certificate file (default: $PGSSLCERT)")
	flags.StringVar(&f.sslKey, "sslkey", "", "Client private key file (default: $PGSSLKEY)")
	flags.StringVar(&f.sslRootCert, "sslrootcert", "", "Root CA certificate file (default: $PGSSLROOTCERT)")

	flags.StringVar(&f.authMethod, "auth", "",
		"Authentication method: standard|aws|google|azure (default: pgdispatch.yaml or standard)")
	flags.StringVar(&f.azureTenantID, "azure-tenant-id", "", "Azure tenant ID (default: $AZURE_TENANT_ID)")
	flags.StringVar(&f.azureClientID, "azure-client-id", "", "Azure client ID (default: $AZURE_CLIENT_ID)")
	flags.StringVar(&f.awsRegion, "aws-region", "", "AWS region for RDS IAM tokens (default: $AWS_REGION)")
	flags.StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
}

func registerPoolFlags(cmd *cobra.Command, f *poolFlags) {
	flags := cmd.Flags()
	flags.IntVar(&f.maxSize, "max-size", 0,
		fmt.Sprintf("Maximum physical connections (default: pgdispatch.yaml or %d)", pgdispatch.DefaultMaxSize))
	flags.DurationVar(&f.acquireTimeout, "acquire-timeout", 0,
		fmt.Sprintf("How long a request waits for a connection (default: pgdispatch.yaml or %s)", pgdispatch.DefaultAcquireTimeout))
	flags.DurationVar(&f.shutdownTimeout, "shutdown-timeout", 0,
		fmt.Sprintf("How long shutdown waits for leased connections (default: pgdispatch.yaml or %s)", pgdispatch.DefaultShutdownTimeout))
}

// loadProjectConfig loads the .env file and pgdispatch.yaml.
// Returns nil config if pgdispatch.yaml does not exist (not an error).
func loadProjectConfig(flags connectionFlags) (*config.ProjectConfig, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w: %w", flags.envFile, err, pgdispatch.ErrInvalidConfig)
		}
	} else {
		_ = godotenv.Load()
	}

	projectCfg, err := config.Load(flags.configDir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// resolveConnectionFromFlags resolves connection configuration from flags,
// environment and project config.
func resolveConnectionFromFlags(flags connectionFlags, projectCfg *config.ProjectConfig) (*pgdispatch.ConnectionConfig, error) {
	granularFlags := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	cloudFlags := &db.CloudFlags{
		AuthMethod:     flags.authMethod,
		AWSRegion:      flags.awsRegion,
		GoogleInstance: flags.googleInstance,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
	}

	certFlags := &db.CertFlags{
		SSLCert:     flags.sslCert,
		SSLKey:      flags.sslKey,
		SSLRootCert: flags.sslRootCert,
	}

	return db.ResolveConnectionParams(
		flags.connection,
		granularFlags,
		cloudFlags,
		certFlags,
		db.LoadFromEnvironment(),
		projectCfg,
	)
}

// resolvePoolConfig applies precedence flag > pgdispatch.yaml > defaults.
func resolvePoolConfig(flags poolFlags, projectCfg *config.ProjectConfig) (pgdispatch.PoolConfig, time.Duration, error) {
	cfg, err := projectCfg.ApplyPool(pgdispatch.DefaultPoolConfig())
	if err != nil {
		return cfg, 0, err
	}
	if flags.maxSize != 0 {
		cfg.MaxSize = flags.maxSize
	}
	if flags.acquireTimeout != 0 {
		cfg.AcquireTimeout = flags.acquireTimeout
	}
	if err := cfg.Validate(); err != nil {
		return cfg, 0, err
	}

	shutdown, err := projectCfg.ShutdownTimeout(pgdispatch.DefaultShutdownTimeout)
	if err != nil {
		return cfg, 0, err
	}
	if flags.shutdownTimeout != 0 {
		shutdown = flags.shutdownTimeout
	}
	return cfg, shutdown, nil
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(logger pgdispatch.Logger, connConfig *pgdispatch.ConnectionConfig, poolCfg pgdispatch.PoolConfig) {
	logger.Verbose("Connection resolved: %s/%s as %s (sslmode=%s, auth=%s)",
		connConfig.Address(), connConfig.Database, connConfig.Username, connConfig.SSLMode, connConfig.AuthMethod)
	if connConfig.SSLCert != "" {
		logger.Verbose("  SSL Cert: %s", connConfig.SSLCert)
	}
	if connConfig.SSLRootCert != "" {
		logger.Verbose("  SSL Root Cert: %s", connConfig.SSLRootCert)
	}
	logger.Verbose("Pool: max %d connections, acquire timeout %s", poolCfg.MaxSize, poolCfg.AcquireTimeout)
}
