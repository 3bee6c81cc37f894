package unit

import (
	"testing"
	"time"

	"github.com/lendcore/backend/internal/config"
)

func TestConfigDefaults(t *testing.T) {
	cfg := config.Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected addr :8080, got %q", cfg.Addr())
	}
	if cfg.DefaultProductRateBPS != 1000 {
		t.Fatalf("expected default product rate 1000 bps, got %d", cfg.DefaultProductRateBPS)
	}
	if cfg.WorkerBatchSize != 50 {
		t.Fatalf("expected worker batch size 50, got %d", cfg.WorkerBatchSize)
	}
	if cfg.JWTAccessTTL != 8*time.Hour {
		t.Fatalf("expected 8h access TTL, got %s", cfg.JWTAccessTTL)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_PRODUCT_RATE_BPS", "1450")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("WORKER_POLL_INTERVAL", "1s")

	cfg := config.Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.DefaultProductRateBPS != 1450 {
		t.Fatalf("expected 1450 bps, got %d", cfg.DefaultProductRateBPS)
	}
	if cfg.JWTAccessTTL != 30*time.Minute {
		t.Fatalf("expected 30m TTL, got %s", cfg.JWTAccessTTL)
	}
	if cfg.WorkerPollInterval != time.Second {
		t.Fatalf("expected 1s poll interval, got %s", cfg.WorkerPollInterval)
	}
}

func TestConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("JWT_ACCESS_TTL", "soon")

	cfg := config.Load()

	if cfg.DBMaxConns != 25 {
		t.Fatalf("expected fallback 25, got %d", cfg.DBMaxConns)
	}
	if cfg.JWTAccessTTL != 8*time.Hour {
		t.Fatalf("expected fallback 8h, got %s", cfg.JWTAccessTTL)
	}
}
