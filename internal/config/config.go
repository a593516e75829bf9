// Package config loads and validates the IssueBuddy TOML configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	General General `toml:"general"`
	Server  Server  `toml:"server"`
	Store   Store   `toml:"store"`
}

type General struct {
	LogLevel string `toml:"log_level"`
}

type Server struct {
	Bind           string   `toml:"bind"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type Store struct {
	Path string `toml:"path"`
}

// Load reads and validates a TOML configuration file. A missing file
// is not an error: the service runs on defaults alone. A file that
// exists but does not parse or validate fails startup.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = ":8080"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "issuebuddy.json"
	}
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.General.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("general.log_level: unknown level %q", cfg.General.LogLevel)
	}

	for _, origin := range cfg.Server.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("server.allowed_origins: empty origin entry")
		}
	}

	if strings.TrimSpace(cfg.Store.Path) == "" {
		return fmt.Errorf("store.path: must not be blank")
	}

	return nil
}
