package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string // explicit config file path
	EnvFile    string // explicit .env file path
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads the configuration into cfg. Precedence, lowest to highest:
// config.yml, .env file, process environment. Keys map to environment
// variables by joining with underscores and uppercasing
// (auth.jwt.secret -> AUTH_JWT_SECRET).
func Load(serviceName string, cfg *AppConfig, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = findFile(configSearchPaths(serviceName))
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFile([]string{".env", fmt.Sprintf(".env.%s", serviceName)})
	}

	// .env first so viper's env binding sees its variables.
	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load .env file %s: %v\n", lc.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", lc.ConfigFile, err)
		}
	}

	bindEnvKeys(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnvKeys explicitly binds every known configuration key so environment
// variables override even keys absent from the config file.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"base.name", "base.environment", "base.version", "base.debug",
		"server.host", "server.port", "server.read_timeout", "server.write_timeout", "server.idle_timeout",
		"database.dsn", "database.max_open_conns", "database.max_idle_conns", "database.max_retries", "database.auto_migrate",
		"auth.jwt.secret", "auth.jwt.ttl", "auth.jwt.issuer",
		"auth.password.cost", "auth.password.min_length",
		"logger.level", "logger.format", "logger.output", "logger.no_color", "logger.timestamp",
		"observability.enabled", "observability.endpoint", "observability.insecure",
		"observability.sample_rate", "observability.metric_interval",
		"seed.admin_name", "seed.admin_email", "seed.admin_password",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	for _, k := range v.AllKeys() {
		_ = v.BindEnv(k)
	}
}

func configSearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		"./config/config.yml",
		"./config.yml",
	}
}

func findFile(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
