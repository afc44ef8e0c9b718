package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
log:
  format: console
storage:
  driver: postgres
postgres:
  max_conns: 25
reconciler:
  max_retries: 7
  backoff_initial: 20ms
limits:
  swipes_per_minute: 90
outbox:
  stream: drift:test-events
  batch_size: 10
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Storage.Driver != StorageDriverPostgres {
		t.Fatalf("unexpected storage driver: %s", cfg.Storage.Driver)
	}
	if cfg.Log.Format != "console" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Postgres.MaxConns != 25 {
		t.Fatalf("unexpected postgres max_conns: %d", cfg.Postgres.MaxConns)
	}
	if cfg.Reconciler.MaxRetries != 7 {
		t.Fatalf("unexpected reconciler max_retries: %d", cfg.Reconciler.MaxRetries)
	}
	if cfg.Reconciler.BackoffInitial != 20*time.Millisecond {
		t.Fatalf("unexpected reconciler backoff_initial: %s", cfg.Reconciler.BackoffInitial)
	}
	if cfg.Limits.SwipesPerMinute != 90 {
		t.Fatalf("unexpected swipes per minute: %d", cfg.Limits.SwipesPerMinute)
	}
	if cfg.Outbox.Stream != "drift:test-events" || cfg.Outbox.BatchSize != 10 {
		t.Fatalf("unexpected outbox config: %+v", cfg.Outbox)
	}

	if cfg.Reconciler.BackoffMax != time.Second {
		t.Fatalf("reconciler backoff_max default should stay 1s")
	}
	if cfg.Limits.SwipesPer10Seconds != 12 {
		t.Fatalf("swipes per 10s default should stay 12")
	}
	if !cfg.Postgres.AutoMigrate {
		t.Fatalf("postgres auto_migrate default should stay true")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Storage.Driver != StorageDriverMemory {
		t.Fatalf("unexpected default storage driver: %s", cfg.Storage.Driver)
	}
	if cfg.Reconciler.MaxRetries != 4 {
		t.Fatalf("unexpected default max retries: %d", cfg.Reconciler.MaxRetries)
	}
	if cfg.Outbox.Interval != 2*time.Second {
		t.Fatalf("unexpected default outbox interval: %s", cfg.Outbox.Interval)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("RECONCILER_MAX_RETRIES", "2")
	t.Setenv("RECONCILER_BACKOFF_MAX", "250ms")
	t.Setenv("SWIPES_PER_10_SECONDS", "3")
	t.Setenv("OUTBOX_INTERVAL", "5s")
	t.Setenv("JWT_AUDIENCE", "drift-app")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Storage.Driver != StorageDriverPostgres {
		t.Fatalf("unexpected storage driver: %s", cfg.Storage.Driver)
	}
	if cfg.Reconciler.MaxRetries != 2 || cfg.Reconciler.BackoffMax != 250*time.Millisecond {
		t.Fatalf("unexpected reconciler config: %+v", cfg.Reconciler)
	}
	if cfg.Limits.SwipesPer10Seconds != 3 {
		t.Fatalf("unexpected swipes per 10s: %d", cfg.Limits.SwipesPer10Seconds)
	}
	if cfg.Outbox.Interval != 5*time.Second {
		t.Fatalf("unexpected outbox interval: %s", cfg.Outbox.Interval)
	}
	if cfg.Auth.JWTAudience != "drift-app" {
		t.Fatalf("unexpected jwt audience: %s", cfg.Auth.JWTAudience)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "bad duration", env: map[string]string{"OUTBOX_INTERVAL": "soon"}},
		{name: "bad int", env: map[string]string{"REDIS_DB": "zero"}},
		{name: "zero batch", env: map[string]string{"OUTBOX_BATCH_SIZE": "0"}},
		{name: "default secret in production", env: map[string]string{"APP_ENV": "prod", "STORAGE_DRIVER": "postgres"}},
		{name: "memory driver in production", env: map[string]string{"APP_ENV": "prod", "JWT_SECRET": "s3cr3t"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearConfigEnv(t)
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadAcceptsProductionWithSecretAndPostgres(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("STORAGE_DRIVER", "postgres")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production config")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"STORAGE_DRIVER",
		"POSTGRES_DSN",
		"POSTGRES_AUTO_MIGRATE",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_AUDIENCE",
		"JWT_ACCESS_TTL",
		"RECONCILER_MAX_RETRIES",
		"RECONCILER_BACKOFF_INITIAL",
		"RECONCILER_BACKOFF_MAX",
		"SWIPES_PER_MINUTE",
		"SWIPES_PER_10_SECONDS",
		"OUTBOX_STREAM",
		"OUTBOX_INTERVAL",
		"OUTBOX_BATCH_SIZE",
	} {
		t.Setenv(key, "")
	}
}
