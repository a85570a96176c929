package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("TASKDECK_SERVER_URL", "")
	t.Setenv("TASKDECK_LOG_LEVEL", "")

	cfg := DefaultConfig()
	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("unexpected default server url: %q", cfg.ServerURL)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("unexpected default log level: %q", cfg.LogLevel)
	}
	if !cfg.ConfirmDelete {
		t.Error("delete confirmation should default on")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TASKDECK_SERVER_URL", "https://tasks.example.com")
	t.Setenv("TASKDECK_LOG_LEVEL", "DEBUG")
	t.Setenv("TASKDECK_LOG_CONSOLE", "true")

	cfg := DefaultConfig()
	if cfg.ServerURL != "https://tasks.example.com" {
		t.Errorf("env server url not honored: %q", cfg.ServerURL)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("env log level not honored: %q", cfg.LogLevel)
	}
	if !cfg.LogConsole {
		t.Error("env console flag not honored")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKDECK_SERVER_URL", "")

	// No file yet: defaults come back.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("expected defaults, got %q", cfg.ServerURL)
	}

	cfg.ServerURL = "https://tasks.example.com"
	cfg.ConfirmDelete = false
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".taskdeck", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ServerURL != "https://tasks.example.com" {
		t.Errorf("server url not round-tripped: %q", loaded.ServerURL)
	}
	if loaded.ConfirmDelete {
		t.Error("confirm_delete not round-tripped")
	}
}
