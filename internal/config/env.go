package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"
)

// EnvLoader provides type-safe environment variable loading with validation
type EnvLoader struct {
	prefix string
	vars   map[string]string
}

// NewEnvLoader creates a new environment variable loader with the given prefix
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		vars:   make(map[string]string),
	}
}

// LoadAll loads all environment variables with the configured prefix
func (e *EnvLoader) LoadAll() {
	for _, env := range os.Environ() {
		if parts := strings.SplitN(env, "=", 2); len(parts) == 2 {
			key := parts[0]
			if strings.HasPrefix(key, e.prefix) {
				e.vars[key] = parts[1]
			}
		}
	}
}

// GetString returns a string value from environment variables
func (e *EnvLoader) GetString(key string, defaultValue string) string {
	fullKey := e.prefix + key
	if val, ok := e.vars[fullKey]; ok {
		return val
	}
	return defaultValue
}

// GetBool returns a boolean value from environment variables
func (e *EnvLoader) GetBool(key string, defaultValue bool) bool {
	if val := e.GetString(key, ""); val != "" {
		return strings.ToLower(val) == "true" || val == "1"
	}
	return defaultValue
}

// GetDuration returns a duration value from environment variables
func (e *EnvLoader) GetDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if val := e.GetString(key, ""); val != "" {
		return time.ParseDuration(val)
	}
	return defaultValue, nil
}

// GetStringList returns a comma-separated list value from environment variables
func (e *EnvLoader) GetStringList(key string, defaultValue []string) []string {
	if val := e.GetString(key, ""); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// Required ensures that a required environment variable is set
func (e *EnvLoader) Required(key string) (string, error) {
	fullKey := e.prefix + key
	if val, ok := e.vars[fullKey]; ok && val != "" {
		return val, nil
	}
	return "", fmt.Errorf("required environment variable %s not set", fullKey)
}

// Validate checks if a value meets certain validation criteria
type Validate func(string) error

// GetStringValidated returns a validated string value from environment variables
func (e *EnvLoader) GetStringValidated(key string, defaultValue string, validators ...Validate) (string, error) {
	val := e.GetString(key, defaultValue)
	for _, validate := range validators {
		if err := validate(val); err != nil {
			return "", fmt.Errorf("validation failed for %s: %w", key, err)
		}
	}
	return val, nil
}

// Common validators
var (
	ValidateNotEmpty = func(val string) error {
		if val == "" {
			return fmt.Errorf("value cannot be empty")
		}
		return nil
	}

	ValidateSemver = func(val string) error {
		if _, err := version.NewSemver(val); err != nil {
			return fmt.Errorf("invalid semantic version %q: %w", val, err)
		}
		return nil
	}

	ValidateLogLevel = func(val string) error {
		if _, err := logrus.ParseLevel(val); err != nil {
			return fmt.Errorf("invalid log level %q", val)
		}
		return nil
	}
)
