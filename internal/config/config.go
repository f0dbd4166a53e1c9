package config

import "time"

// Config is the full container configuration.
type Config struct {
	Addr   string `env:"ROVERLINK_ADDR" yaml:"addr"`
	LogDir string `env:"ROVERLINK_LOG_DIR" yaml:"log_dir"`

	ReadTimeout  time.Duration `env:"ROVERLINK_READ_TIMEOUT" yaml:"read_timeout"`
	WriteTimeout time.Duration `env:"ROVERLINK_WRITE_TIMEOUT" yaml:"write_timeout"`
	IdleTimeout  time.Duration `env:"ROVERLINK_IDLE_TIMEOUT" yaml:"idle_timeout"`

	Auth      AuthConfig      `envPrefix:"ROVERLINK_AUTH_" yaml:"auth"`
	Telemetry TelemetryConfig `envPrefix:"ROVERLINK_TELEMETRY_" yaml:"telemetry"`
	Script    ScriptConfig    `envPrefix:"ROVERLINK_SCRIPT_" yaml:"script"`
	Intent    IntentConfig    `envPrefix:"ROVERLINK_INTENT_" yaml:"intent"`
}

// AuthConfig configures the bearer-token middleware. Disabled by default so
// a bench setup works out of the box; deployments enable it.
type AuthConfig struct {
	Enabled          bool   `env:"ENABLED" yaml:"enabled"`
	Algorithm        string `env:"ALGORITHM" yaml:"algorithm"`
	SecretKey        string `env:"SECRET_KEY" yaml:"secret_key"`
	PublicKeyPEMFile string `env:"PUBLIC_KEY_FILE" yaml:"public_key_file"`
}

// TelemetryConfig configures the SSE hub.
type TelemetryConfig struct {
	BufferSize        int           `env:"BUFFER_SIZE" yaml:"buffer_size"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" yaml:"heartbeat_interval"`
}

// ScriptConfig extends the script contract without code changes.
type ScriptConfig struct {
	// ExtraCapabilities adds method->capability-group entries to the
	// documented set.
	ExtraCapabilities map[string]string `yaml:"extra_capabilities"`
	// Denylist adds substrings that reject any script containing them.
	Denylist []string `env:"DENYLIST" envSeparator:"," yaml:"denylist"`
}

// IntentConfig points at the external intent oracle. Empty URL disables the
// interpret endpoint.
type IntentConfig struct {
	URL     string        `env:"URL" yaml:"url"`
	Timeout time.Duration `env:"TIMEOUT" yaml:"timeout"`
}

// Default returns the baked-in configuration baseline.
func Default() *Config {
	return &Config{
		Addr:         ":8000",
		LogDir:       "logs",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		Auth: AuthConfig{
			Enabled:   false,
			Algorithm: "HS256",
		},
		Telemetry: TelemetryConfig{
			BufferSize:        64,
			HeartbeatInterval: 15 * time.Second,
		},
		Intent: IntentConfig{
			Timeout: 120 * time.Second,
		},
	}
}
