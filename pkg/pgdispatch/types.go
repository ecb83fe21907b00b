package pgdispatch

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConnectionConfig represents parsed connection parameters for one physical session.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Client certificate authentication (sslmode verify-ca / verify-full with mTLS)
	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance)
	// used with AuthMethodGoogleIAM.
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Address returns host:port.
func (c *ConnectionConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod converts a configuration name to an AuthMethod.
// An empty name selects AuthMethodStandard.
func ParseAuthMethod(name string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam", "awsiam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp", "cloudsql":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id", "entra", "entraid":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", name, ErrUnsupportedAuthMethod)
	}
}

// PoolConfig bounds the pool's physical connections and wait time.
type PoolConfig struct {
	// MaxSize bounds concurrent physical connections.
	MaxSize int

	// AcquireTimeout bounds the wait for a connection per request.
	// Zero means wait until the caller's context is done.
	AcquireTimeout time.Duration
}

// DefaultPoolConfig returns the pool defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxSize:        DefaultMaxSize,
		AcquireTimeout: DefaultAcquireTimeout,
	}
}

// Validate checks if the PoolConfig has valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *PoolConfig) Validate() error {
	var errs []error

	if c.MaxSize < 1 {
		errs = append(errs, fmt.Errorf("MaxSize must be at least 1, got %d: %w", c.MaxSize, ErrInvalidConfig))
	}

	if c.AcquireTimeout < 0 {
		errs = append(errs, fmt.Errorf("AcquireTimeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
