package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if cfg.Checkout.DeliveryFee != 150 {
		t.Fatalf("expected default delivery fee 150, got %d", cfg.Checkout.DeliveryFee)
	}
	if cfg.Checkout.DeliveryWindowDays != 5 {
		t.Fatalf("expected default delivery window of 5 days, got %d", cfg.Checkout.DeliveryWindowDays)
	}
	if cfg.Manager.CheckTimeout != 10*time.Second {
		t.Fatalf("expected 10s manager check timeout, got %v", cfg.Manager.CheckTimeout)
	}
	if cfg.Poller.Interval != 30*time.Second {
		t.Fatalf("expected 30s poll interval, got %v", cfg.Poller.Interval)
	}
	if !cfg.Poller.Enabled {
		t.Fatal("expected polling enabled by default")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsNegativeDeliveryFee(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDeliveryFee, "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected negative delivery fee to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvJWTSecret, "secret")
	t.Setenv(EnvJWTIssuer, "bazarline")
	t.Setenv(EnvUpstreamBaseURL, "https://shop-api.example.com")
	t.Setenv(EnvDeliveryFee, "150")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
