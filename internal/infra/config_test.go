package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaultsToFileStore(t *testing.T) {
	t.Setenv("CREDITS_STORE", "")
	t.Setenv("CREDITS_FILE_PATH", "")
	t.Setenv("STEP_DELAY_MILLIS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.CreditsStore != CreditsStoreFile {
		t.Fatalf("CreditsStore = %q, want %q", cfg.CreditsStore, CreditsStoreFile)
	}
	if cfg.CreditsFilePath != "data/credits.json" {
		t.Fatalf("CreditsFilePath = %q", cfg.CreditsFilePath)
	}
	if cfg.StepDelay != 300*time.Millisecond {
		t.Fatalf("StepDelay = %s, want 300ms", cfg.StepDelay)
	}
	if cfg.VideoPollEvery != 10*time.Second {
		t.Fatalf("VideoPollEvery = %s, want 10s", cfg.VideoPollEvery)
	}
}

func TestLoadConfigPostgresStoreRequiresDatabaseURL(t *testing.T) {
	t.Setenv("CREDITS_STORE", CreditsStorePostgres)
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for postgres store without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://example")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoadConfigRedisStoreRequiresRedisURL(t *testing.T) {
	t.Setenv("CREDITS_STORE", CreditsStoreRedis)
	t.Setenv("REDIS_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for redis store without REDIS_URL")
	}
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	t.Setenv("CREDITS_STORE", "dynamo")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown store backend")
	}
}

func TestLoadConfigStepDelayOverride(t *testing.T) {
	t.Setenv("CREDITS_STORE", "")
	t.Setenv("STEP_DELAY_MILLIS", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StepDelay != 0 {
		t.Fatalf("StepDelay = %s, want 0", cfg.StepDelay)
	}
}
