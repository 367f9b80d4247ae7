// Package config loads and validates the service configuration from a YAML
// file, a .env file, and environment variables.
package config

import (
	"fmt"

	"github.com/kbukum/studentms/internal/auth/password"
	"github.com/kbukum/studentms/internal/auth/token"
	"github.com/kbukum/studentms/internal/database"
	"github.com/kbukum/studentms/internal/logger"
	"github.com/kbukum/studentms/internal/observability"
	"github.com/kbukum/studentms/internal/server"
)

// BaseConfig contains essential fields that every service needs.
type BaseConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "studentms"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	for _, v := range []string{"development", "staging", "production"} {
		if c.Environment == v {
			return nil
		}
	}
	return fmt.Errorf("base.environment must be one of [development, staging, production] (got: %s)", c.Environment)
}

// AuthConfig composes the authentication sub-configurations.
type AuthConfig struct {
	// JWT configures the token service. The secret is required.
	JWT token.Config `mapstructure:"jwt"`

	// Password configures password hashing.
	Password password.Config `mapstructure:"password"`
}

// SeedConfig optionally creates an initial admin account at startup.
// Skipped when the email is empty or an account with it already exists.
type SeedConfig struct {
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// AppConfig is the root configuration for the service.
type AppConfig struct {
	Base          BaseConfig           `mapstructure:"base"`
	Server        server.Config        `mapstructure:"server"`
	Database      database.Config      `mapstructure:"database"`
	Auth          AuthConfig           `mapstructure:"auth"`
	Logger        logger.Config        `mapstructure:"logger"`
	Observability observability.Config `mapstructure:"observability"`
	Seed          SeedConfig           `mapstructure:"seed"`
}

// ApplyDefaults walks all sub-configurations.
func (c *AppConfig) ApplyDefaults() {
	c.Base.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.JWT.ApplyDefaults()
	c.Auth.Password.ApplyDefaults()
	c.Logger.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate walks all sub-configurations. A missing JWT secret is a hard
// startup failure — there is no insecure fallback key.
func (c *AppConfig) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Auth.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if err := c.Auth.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	return nil
}
