package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("OIDC_ISSUER", "https://issuer.example.com")
	t.Setenv("OIDC_JWKS_URL", "https://issuer.example.com/.well-known/jwks.json")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.MongoDatabase != "qmflow" {
		t.Errorf("MongoDatabase = %q, want qmflow", cfg.MongoDatabase)
	}
	if cfg.RateLimit != "10-S" {
		t.Errorf("RateLimit = %q, want 10-S", cfg.RateLimit)
	}
	if cfg.RabbitMQPrefetch != 1 {
		t.Errorf("RabbitMQPrefetch = %d, want 1", cfg.RabbitMQPrefetch)
	}
}

func TestLoad_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{name: "missing mongo uri", unset: "MONGO_URI"},
		{name: "missing oidc issuer", unset: "OIDC_ISSUER"},
		{name: "missing jwks url", unset: "OIDC_JWKS_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")
			if _, err := Load(); err == nil {
				t.Errorf("Load succeeded without %s", tt.unset)
			}
		})
	}
}

func TestLoad_YAMLOverlayEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qmflow.yaml")
	yaml := `server_port: "9999"
mongo_uri: "mongodb://from-file:27017"
bootstrap_admin_email: "boss@example.com"
rabbitmq_prefetch: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	setRequiredEnv(t)
	t.Setenv("QMFLOW_CONFIG", path)
	// Env MONGO_URI must win over the file value.
	t.Setenv("MONGO_URI", "mongodb://from-env:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerPort != "9999" {
		t.Errorf("ServerPort = %q, want file value 9999", cfg.ServerPort)
	}
	if cfg.MongoURI != "mongodb://from-env:27017" {
		t.Errorf("MongoURI = %q, want env value to win", cfg.MongoURI)
	}
	if cfg.BootstrapAdminEmail != "boss@example.com" {
		t.Errorf("BootstrapAdminEmail = %q, want file value", cfg.BootstrapAdminEmail)
	}
	if cfg.RabbitMQPrefetch != 5 {
		t.Errorf("RabbitMQPrefetch = %d, want 5", cfg.RabbitMQPrefetch)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "true", want: true},
		{value: "1", want: true},
		{value: "yes", want: true},
		{value: "false", want: false},
		{value: "0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("QMFLOW_TEST_BOOL", tt.value)
			if got := getEnvBool("QMFLOW_TEST_BOOL", !tt.want); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
