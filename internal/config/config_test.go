package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Database.Backend != BackendMongo {
		t.Fatalf("default backend = %q, want %q", cfg.Database.Backend, BackendMongo)
	}
	if cfg.MongoDB.URI == "" || cfg.MongoDB.Database == "" {
		t.Fatalf("unexpected empty mongo config: %+v", cfg.MongoDB)
	}
	if cfg.Cache.TTL != 300*time.Second {
		t.Fatalf("default cache TTL = %v, want 300s", cfg.Cache.TTL)
	}
	if !cfg.Auth.Enabled {
		t.Fatal("auth should be enabled by default")
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DB_BACKEND", "MEMORY")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "16379")
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Database.Backend != BackendMemory {
		t.Fatalf("backend = %q, want memory (case folded)", cfg.Database.Backend)
	}
	if got := cfg.Redis.Addr(); got != "localhost:16379" {
		t.Fatalf("redis addr = %q", got)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Fatalf("cache TTL = %v, want 2m", cfg.Cache.TTL)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RPS != 2.5 {
		t.Fatalf("rate limit config not picked up: %+v", cfg.RateLimit)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("DB_BACKEND", "cassandra")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestLoadConfigRequiresPostgresURL(t *testing.T) {
	t.Setenv("DB_BACKEND", "postgres")
	t.Setenv("POSTGRES_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error when POSTGRES_URL is missing")
	}
}

func TestRedisAddrEmptyWhenUnconfigured(t *testing.T) {
	var r RedisConfig
	if got := r.Addr(); got != "" {
		t.Fatalf("addr = %q, want empty", got)
	}
}
