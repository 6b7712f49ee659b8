package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for validating caller tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// Enabled reports whether caller tokens should be verified.
func (c *JWTConfig) Enabled() bool {
	return c != nil && c.Secret != ""
}

// NewJWTConfig creates a JWT configuration from environment variables.
// JWT_SECRET is optional; when unset every caller is anonymous.
// JWT_EXPIRATION_HOURS defaults to 24.
func NewJWTConfig() (*JWTConfig, error) {
	expirationStr := os.Getenv("JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24" // default
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	config := &JWTConfig{
		Secret:          os.Getenv("JWT_SECRET"),
		ExpirationHours: expirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
