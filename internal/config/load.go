package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is picked up from the working directory when
// ROVERLINK_CONFIG is unset.
const DefaultConfigFile = "roverlink.yaml"

// Load merges defaults, the optional YAML config file, and ROVERLINK_* env
// overrides, then validates the result. Env wins over file wins over
// defaults.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("ROVERLINK_CONFIG")
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyFile unmarshals the YAML file over cfg, keeping defaults for any keys
// the file omits.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}

// Validate rejects configurations the container cannot run with.
func Validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if cfg.LogDir == "" {
		return fmt.Errorf("log_dir must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if cfg.Telemetry.BufferSize <= 0 {
		return fmt.Errorf("telemetry buffer_size must be positive")
	}
	if cfg.Telemetry.HeartbeatInterval <= 0 {
		return fmt.Errorf("telemetry heartbeat_interval must be positive")
	}

	if cfg.Auth.Enabled {
		switch cfg.Auth.Algorithm {
		case "HS256":
			if cfg.Auth.SecretKey == "" {
				return fmt.Errorf("auth: HS256 requires secret_key")
			}
		case "RS256":
			if cfg.Auth.PublicKeyPEMFile == "" {
				return fmt.Errorf("auth: RS256 requires public_key_file")
			}
		default:
			return fmt.Errorf("auth: unsupported algorithm %q", cfg.Auth.Algorithm)
		}
	}

	if cfg.Intent.URL != "" && cfg.Intent.Timeout <= 0 {
		return fmt.Errorf("intent timeout must be positive when an oracle URL is set")
	}
	return nil
}
