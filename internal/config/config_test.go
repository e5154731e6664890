package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/segtrack/carnets/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Ensure environment does not interfere
	_ = os.Unsetenv("CARNETS_ADDR")
	_ = os.Unsetenv("CARNETS_DATABASE_PATH")
	_ = os.Unsetenv("CARNETS_JWT_SECRET")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.DatabasePath != "carnets.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "carnets.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.Auth.Enabled {
		t.Fatalf("auth should be disabled by default")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("addr: \":9090\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\nalert_interval: \"1h\"\ndefaults:\n  employer: \"ACME SA\"\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.AlertInterval != time.Hour {
		t.Fatalf("unexpected AlertInterval: got %v", cfg.AlertInterval)
	}
	if cfg.Defaults.Employer != "ACME SA" {
		t.Fatalf("unexpected default employer: got %q", cfg.Defaults.Employer)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := &config.Config{Addr: ":8080", DatabasePath: "carnets.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.Defaults.MedicalFitness != "Fit" {
		t.Fatalf("medical fitness default not filled: %q", cfg.Defaults.MedicalFitness)
	}
	if cfg.Defaults.Employer == "" || cfg.Defaults.AuthorizationType == "" || cfg.Defaults.ResolutionReference == "" {
		t.Fatalf("authorization defaults not filled: %+v", cfg.Defaults)
	}
	if cfg.APITimeout <= 0 {
		t.Fatalf("expected APITimeout default, got %v", cfg.APITimeout)
	}
}

func TestValidate_AuthRequiresCredentials(t *testing.T) {
	cfg := &config.Config{
		Addr:         ":8080",
		DatabasePath: "carnets.db",
		Auth:         config.AuthConfig{Enabled: true, JWTSecret: "secret"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail without admin credentials")
	}

	cfg.Auth.Username = "admin"
	cfg.Auth.PasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed with full auth config: %v", err)
	}
	if cfg.Auth.TokenDuration <= 0 {
		t.Fatalf("expected TokenDuration default, got %v", cfg.Auth.TokenDuration)
	}
}

func TestValidate_RejectsEmptyAddr(t *testing.T) {
	cfg := &config.Config{DatabasePath: "carnets.db"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for empty addr")
	}
}
