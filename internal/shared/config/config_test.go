package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"GATEWAY", "DATABASE_URL", "AUGMENT_PROVIDER", "AUGMENT_RATE_PER_SEC", "CHROME_PDF"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Gateway != "memory" {
		t.Fatalf("expected memory gateway, got %q", cfg.Gateway)
	}
	if cfg.AugmentProvider != "remote" {
		t.Fatalf("expected remote provider, got %q", cfg.AugmentProvider)
	}
	if cfg.APIBaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected base URL %q", cfg.APIBaseURL)
	}
	if cfg.AugmentRatePerSec != 2 || cfg.ChromePDF {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadGatewayFollowsDatabaseURL(t *testing.T) {
	t.Setenv("GATEWAY", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/resume")
	if got := Load().Gateway; got != "postgres" {
		t.Fatalf("expected postgres gateway, got %q", got)
	}
	t.Setenv("GATEWAY", "rest")
	if got := Load().Gateway; got != "remote" {
		t.Fatalf("expected remote gateway, got %q", got)
	}
}

func TestLoadParsesNumbersAndBools(t *testing.T) {
	t.Setenv("AUGMENT_RATE_PER_SEC", "0.5")
	t.Setenv("AUGMENT_BURST", "nope")
	t.Setenv("CHROME_PDF", "true")
	t.Setenv("AUGMENT_PROVIDER", "Google")
	cfg := Load()
	if cfg.AugmentRatePerSec != 0.5 {
		t.Fatalf("unexpected rate %v", cfg.AugmentRatePerSec)
	}
	if cfg.AugmentBurst != 4 {
		t.Fatalf("expected default burst on parse failure, got %d", cfg.AugmentBurst)
	}
	if !cfg.ChromePDF || cfg.AugmentProvider != "gemini" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RB_TEST_A=from-file\nRB_TEST_B=\"quoted\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("RB_TEST_A", "from-env")
	t.Setenv("RB_TEST_B", "")
	os.Unsetenv("RB_TEST_B")

	t.Setenv("ENV_FILE", "")
	loaded := loadEnvFiles(filepath.Join(dir, "missing.env"), path)
	t.Cleanup(func() { os.Unsetenv("RB_TEST_B") })

	if len(loaded) != 1 || loaded[0] != path {
		t.Fatalf("expected only %s to load, got %v", path, loaded)
	}

	if got := os.Getenv("RB_TEST_A"); got != "from-env" {
		t.Fatalf("expected env to win, got %q", got)
	}
	if got := os.Getenv("RB_TEST_B"); got != "quoted" {
		t.Fatalf("expected value from file, got %q", got)
	}
}

func TestLoadEnvFilesReadsEnvFileFirst(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	if err := os.WriteFile(first, []byte("RB_TEST_C=first\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	if err := os.WriteFile(second, []byte("RB_TEST_C=second\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", first)
	os.Unsetenv("RB_TEST_C")
	t.Cleanup(func() { os.Unsetenv("RB_TEST_C") })

	loaded := loadEnvFiles(second)
	if len(loaded) != 2 || loaded[0] != first {
		t.Fatalf("unexpected load order %v", loaded)
	}
	if got := os.Getenv("RB_TEST_C"); got != "first" {
		t.Fatalf("expected ENV_FILE to win, got %q", got)
	}
}

func TestLoadSessionAndIdentitySettings(t *testing.T) {
	t.Setenv("SESSION_IDLE_TIMEOUT", "")
	t.Setenv("DISABLE_GUESTS", "")
	if cfg := Load(); cfg.SessionIdleTimeout != 2*time.Hour || cfg.DisableGuests {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	t.Setenv("SESSION_IDLE_TIMEOUT", "45m")
	t.Setenv("DISABLE_GUESTS", "1")
	t.Setenv("JWT_SECRET", "s3cret")
	cfg := Load()
	if cfg.SessionIdleTimeout != 45*time.Minute || !cfg.DisableGuests || cfg.JWTSecret != "s3cret" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("SESSION_IDLE_TIMEOUT", "-5m")
	if got := Load().SessionIdleTimeout; got != 2*time.Hour {
		t.Fatalf("expected fallback for negative duration, got %s", got)
	}
}
