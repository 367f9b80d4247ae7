package logger

// Config holds logger configuration.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Level is the minimum level to emit: trace, debug, info, warn, error (default: "info").
	Level string `mapstructure:"level"`

	// Format selects the output encoding: "json" or "console" (default: "json").
	Format string `mapstructure:"format"`

	// Output selects the destination: "stdout" or "stderr" (default: "stdout").
	Output string `mapstructure:"output"`

	// NoColor disables ANSI colors in console format.
	NoColor bool `mapstructure:"no_color"`

	// Timestamp controls whether entries carry a timestamp (default: true).
	Timestamp bool `mapstructure:"timestamp"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}
