package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "issuebuddy.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Bind != ":8080" {
		t.Errorf("Bind = %q", cfg.Server.Bind)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Store.Path != "issuebuddy.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.General.LogLevel)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[general]
log_level = "debug"

[server]
bind = "127.0.0.1:9090"
allowed_origins = ["https://app.example.com", "http://localhost:5173"]

[store]
path = "/var/lib/issuebuddy/tickets.json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Bind != "127.0.0.1:9090" {
		t.Errorf("Bind = %q", cfg.Server.Bind)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Store.Path != "/var/lib/issuebuddy/tickets.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.General.LogLevel)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
bind = ":3000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Bind != ":3000" {
		t.Errorf("Bind = %q", cfg.Server.Bind)
	}
	if cfg.Store.Path != "issuebuddy.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed toml", `[server` + "\n"},
		{"unknown log level", "[general]\nlog_level = \"verbose\"\n"},
		{"blank origin entry", "[server]\nallowed_origins = [\" \"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
