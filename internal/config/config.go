package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvPrefix is the default prefix for environment variables
const (
	DefaultEnvPrefix = "SUBSTRATE_"

	DefaultNodeName       = "substrate-node"
	DefaultVersion        = "0.9.0"
	DefaultLogLevel       = "info"
	DefaultRequestTimeout = 5 * time.Second
)

// Config represents the node configuration
type Config struct {
	// Node identity
	NodeName string // Implementation name reported to status callers
	Version  string // Semantic version string
	Roles    []string

	// Chain configuration
	ChainSpecPath string // Path to the chain specification JSON file
	Dev           bool   // Development mode: no peers expected

	// Logging
	LogLevel      string // Base level for targets without a directive
	LogDirectives string // Startup log filter, "target=level,target=level"

	// Status service
	RequestTimeout time.Duration // Bound on network subsystem round-trips

	// Observability
	MetricsAddr string // Prometheus listen address, empty disables
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.NodeName == "" {
		return fmt.Errorf("node name is required")
	}
	if err := ValidateSemver(c.Version); err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if c.ChainSpecPath == "" {
		return fmt.Errorf("chain spec path is required")
	}
	if len(c.Roles) == 0 {
		return fmt.Errorf("at least one node role is required")
	}
	if err := ValidateLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	loader := NewEnvLoader(DefaultEnvPrefix)
	loader.LoadAll()

	cfg := &Config{}
	var err error

	if cfg.NodeName, err = loader.GetStringValidated("NODE_NAME", DefaultNodeName, ValidateNotEmpty); err != nil {
		return nil, fmt.Errorf("invalid node name: %w", err)
	}

	if cfg.Version, err = loader.GetStringValidated("VERSION", DefaultVersion, ValidateSemver); err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}

	if cfg.ChainSpecPath, err = loader.Required("CHAIN_SPEC"); err != nil {
		return nil, err
	}

	cfg.Dev = loader.GetBool("DEV", false)
	cfg.Roles = loader.GetStringList("ROLES", []string{"Full"})

	if cfg.LogLevel, err = loader.GetStringValidated("LOG_LEVEL", DefaultLogLevel, ValidateLogLevel); err != nil {
		return nil, err
	}
	cfg.LogDirectives = strings.TrimSpace(loader.GetString("LOG_DIRECTIVES", ""))

	if cfg.RequestTimeout, err = loader.GetDuration("REQUEST_TIMEOUT", DefaultRequestTimeout); err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}

	cfg.MetricsAddr = loader.GetString("METRICS_ADDR", "")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
