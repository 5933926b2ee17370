package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoad_DefaultsWithSecret(t *testing.T) {
	t.Setenv("BOOKMART_SECRET", "env-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("token ttl = %s, want 1h", cfg.Auth.TokenTTL)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("storage type = %q, want memory", cfg.Storage.Type)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("metrics config = %+v, want enabled at /metrics", cfg.Observability.Metrics)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("secret = %q, want env override", cfg.Auth.Secret)
	}
}

// A process without a signing secret refuses to start.
func TestLoad_MissingSecretFails(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "auth.secret") {
		t.Errorf("error %q does not name auth.secret", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
auth:
  secret: file-secret
  token_ttl: 30m
storage:
  type: memory
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "file-secret" {
		t.Errorf("secret = %q, want file-secret", cfg.Auth.Secret)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("token ttl = %s, want 30m", cfg.Auth.TokenTTL)
	}
	// Unset fields keep their defaults.
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("read timeout = %s, want default 30s", cfg.Server.ReadTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
auth:
  secret: file-secret
`)

	t.Setenv("BOOKMART_PORT", "7070")
	t.Setenv("BOOKMART_SECRET", "env-secret")
	t.Setenv("BOOKMART_TOKEN_TTL", "15m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("secret = %q, want env override", cfg.Auth.Secret)
	}
	if cfg.Auth.TokenTTL != 15*time.Minute {
		t.Errorf("token ttl = %s, want 15m", cfg.Auth.TokenTTL)
	}
}

func TestLoad_SecretFileReference(t *testing.T) {
	dir := t.TempDir()
	secretPath := writeFile(t, dir, "secret", "trimmed-secret\n")
	cfgPath := writeFile(t, dir, "config.yaml", `
auth:
  secret_file: `+secretPath+`
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if cfg.Auth.Secret != "trimmed-secret" {
		t.Errorf("secret = %q, want trimmed file content", cfg.Auth.Secret)
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("BOOKMART_SECRET", "s")
	t.Setenv("BOOKMART_STORAGE", "postgres")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "dsn") {
		t.Errorf("error %q does not name the dsn", err)
	}
}

func TestLoad_UnknownStorageType(t *testing.T) {
	t.Setenv("BOOKMART_SECRET", "s")
	t.Setenv("BOOKMART_STORAGE", "cassandra")

	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = -1
	cfg.Auth.TokenTTL = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, want := range []string{"server.port", "auth.secret", "auth.token_ttl"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
