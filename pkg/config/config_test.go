package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 8790 || cfg.GRPCPort != 50061 {
		t.Fatalf("unexpected ports %d/%d", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.DebounceDelay != 100*time.Millisecond {
		t.Fatalf("debounce = %v, want 100ms", cfg.DebounceDelay)
	}
	if len(cfg.DetectLanguages) != 10 || cfg.DetectLanguages[0] != "en" {
		t.Fatalf("unexpected detect languages %v", cfg.DetectLanguages)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GLANCE_HTTP_PORT", "9000")
	t.Setenv("GLANCE_DEBOUNCE", "250ms")
	t.Setenv("GLANCE_CLIPBOARD", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 9000 || cfg.DebounceDelay != 250*time.Millisecond || !cfg.Clipboard {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GLANCE_LOCALE=fr\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GLANCE_LOCALE") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Locale != "fr" {
		t.Fatalf("locale = %q, want fr", cfg.Locale)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}

func TestValidateRejectsClashingPorts(t *testing.T) {
	t.Setenv("GLANCE_HTTP_PORT", "7000")
	t.Setenv("GLANCE_GRPC_PORT", "7000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestOverrideFixesInvalidEnvironment(t *testing.T) {
	t.Setenv("GLANCE_HTTP_PORT", "70000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load should leave validation to the caller, got %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected out-of-range port to be rejected")
	}

	cfg.HTTPPort = 8080
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overridden config should validate, got %v", err)
	}
}
