package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio-secret")
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("CLAMD_ADDR", "tcp://clamd:3310")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Fatalf("expected port 9090 got %d", cfg.API.Port)
	}
	if len(cfg.API.AllowedOrigins) != 2 || cfg.API.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %#v", cfg.API.AllowedOrigins)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("expected ttl 30m got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Name != "resume_builder" {
		t.Fatalf("expected default database name got %q", cfg.Database.Name)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr())
	}
	if cfg.Clamd.Addr != "tcp://clamd:3310" {
		t.Fatalf("unexpected clamd addr %q", cfg.Clamd.Addr)
	}
	if cfg.Worker.MaxRetry != 5 {
		t.Fatalf("expected default max retry 5 got %d", cfg.Worker.MaxRetry)
	}
}

func TestLoad_MissingMinIOCredentials(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY_ID", "")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when minio credentials are missing")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "resumes", User: "u", Password: "p", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=resumes sslmode=disable"
	if got := d.DSN(); got != want {
		t.Fatalf("dsn mismatch\nwant %s\ngot  %s", want, got)
	}
}
