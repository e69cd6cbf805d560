package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"GUARDIAN_API_BASE_URL", "GUARDIAN_API_TIMEOUT", "GUARDIAN_REDIRECT_URI",
		"GUARDIAN_STORE", "GUARDIAN_STORE_PATH", "GUARDIAN_REDIS_URL",
		"GUARDIAN_CLEAR_ATTEMPTS", "GUARDIAN_HTTP_ADDR", "GUARDIAN_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Fatalf("expected default base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.API.RedirectURI != "guardianapp://" {
		t.Fatalf("expected guardianapp:// redirect, got %s", cfg.API.RedirectURI)
	}
	if cfg.Store.Backend != StoreFile {
		t.Fatalf("expected file backend, got %s", cfg.Store.Backend)
	}
	if filepath.Base(cfg.Store.Path) != "store.json" {
		t.Fatalf("expected store.json default path, got %s", cfg.Store.Path)
	}
	if cfg.Session.ClearAttempts != 2 {
		t.Fatalf("expected 2 clear attempts, got %d", cfg.Session.ClearAttempts)
	}
	if cfg.HTTPAddr != "127.0.0.1:8765" {
		t.Fatalf("expected loopback default addr, got %s", cfg.HTTPAddr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GUARDIAN_API_BASE_URL", "http://localhost:9000/")
	t.Setenv("GUARDIAN_API_TIMEOUT", "2s")
	t.Setenv("GUARDIAN_STORE", "REDIS")
	t.Setenv("GUARDIAN_STORE_PATH", "/tmp/guardian.json")
	t.Setenv("GUARDIAN_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("GUARDIAN_REDIS_KEY_PREFIX", "dev:")
	t.Setenv("GUARDIAN_REDIS_POOL_SIZE", "8")
	t.Setenv("GUARDIAN_CLEAR_ATTEMPTS", "3")
	t.Setenv("GUARDIAN_HTTP_ADDR", ":18765")
	t.Setenv("GUARDIAN_LOG_LEVEL", "DEBUG")
	t.Setenv("GUARDIAN_LOG_FORMAT", "json")

	cfg := FromEnv()
	if cfg.API.BaseURL != "http://localhost:9000" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.Store.Backend != StoreRedis {
		t.Fatalf("expected redis backend, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Path != "/tmp/guardian.json" {
		t.Fatalf("expected store path override, got %s", cfg.Store.Path)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" || cfg.Redis.KeyPrefix != "dev:" || cfg.Redis.PoolSize != 8 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Session.ClearAttempts != 3 {
		t.Fatalf("expected 3 clear attempts, got %d", cfg.Session.ClearAttempts)
	}
	if cfg.HTTPAddr != ":18765" {
		t.Fatalf("expected addr override, got %s", cfg.HTTPAddr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GUARDIAN_STORE", "sqlite")
	t.Setenv("GUARDIAN_CLEAR_ATTEMPTS", "0")
	t.Setenv("GUARDIAN_API_TIMEOUT", "soon")

	cfg := FromEnv()
	if cfg.Store.Backend != StoreFile {
		t.Fatalf("expected unknown backend to fall back to file, got %s", cfg.Store.Backend)
	}
	if cfg.Session.ClearAttempts != 1 {
		t.Fatalf("expected clear attempts clamped to 1, got %d", cfg.Session.ClearAttempts)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected unparsable timeout to fall back, got %s", cfg.API.Timeout)
	}
}

func TestFromEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// Registers the restore, then unsets so godotenv does not treat it as set.
	t.Setenv("GUARDIAN_HTTP_ADDR", "")
	os.Unsetenv("GUARDIAN_HTTP_ADDR")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GUARDIAN_HTTP_ADDR=127.0.0.1:9999\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg := FromEnv()
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("expected .env value, got %s", cfg.HTTPAddr)
	}
}
