package daemon

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8990 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8990)
	}
	if cfg.Auth.Mode != "static" {
		t.Errorf("Auth.Mode = %q, want %q", cfg.Auth.Mode, "static")
	}
	if cfg.Database.Dir == "" {
		t.Error("Database.Dir should default to the data directory")
	}
	if cfg.Telemetry.Prometheus {
		t.Error("Telemetry.Prometheus should default to off")
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("CASHMIND_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 8990 {
		t.Errorf("API.Port = %d, want default 8990", cfg.API.Port)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("CASHMIND_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 9001
	cfg.Auth.Mode = "jwt"
	cfg.Auth.Secret = "s3cret"
	cfg.Telemetry.Prometheus = true

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.API.Port != 9001 {
		t.Errorf("API.Port = %d, want 9001", loaded.API.Port)
	}
	if loaded.Auth.Mode != "jwt" || loaded.Auth.Secret != "s3cret" {
		t.Errorf("Auth = %+v, want jwt/s3cret", loaded.Auth)
	}
	if !loaded.Telemetry.Prometheus {
		t.Error("Telemetry.Prometheus should round-trip as true")
	}
}

func TestCashmindHome_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CASHMIND_HOME", dir)

	if got := CashmindHome(); got != dir {
		t.Errorf("CashmindHome() = %q, want %q", got, dir)
	}
}
