package token

import (
	"errors"
	"time"
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

// Config configures the token service.
//
// The secret is process-wide, loaded once at startup, and never mutated.
// It is passed here explicitly rather than read from ambient state.
type Config struct {
	// Secret is the HMAC signing key. Required: startup fails without it,
	// there is no insecure fallback.
	Secret string `mapstructure:"secret"`

	// TTL is the lifetime of issued tokens (default: 24h).
	TTL time.Duration `mapstructure:"ttl"`

	// Issuer is the "iss" claim (optional).
	Issuer string `mapstructure:"issuer"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("token: secret is required")
	}
	if c.TTL < 0 {
		return errors.New("token: ttl must be non-negative")
	}
	return nil
}
