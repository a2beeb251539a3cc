package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Cache.TTL != 300*time.Second {
		t.Fatalf("expected 300s cache ttl, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend != CacheBackendRedis {
		t.Fatalf("expected redis backend by default, got %q", cfg.Cache.Backend)
	}
	if cfg.Database.Backend != StoreBackendPostgres {
		t.Fatalf("expected postgres store by default, got %q", cfg.Database.Backend)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Fatalf("expected 2h token ttl, got %v", cfg.Auth.TokenTTL)
	}
}

func TestLoadRejectsUnknownCacheBackend(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown cache backend")
	}
}

func TestLoadStoreBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Database.Backend != StoreBackendMemory {
		t.Fatalf("expected memory store, got %q", cfg.Database.Backend)
	}

	t.Setenv("STORE_BACKEND", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown store backend")
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing in production")
	}
}

func TestParseCSVEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	got := parseCSVEnv("CORS_ALLOWED_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", got)
	}
}
