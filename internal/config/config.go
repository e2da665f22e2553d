package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort          string `yaml:"server_port"`
	FrontendURL         string `yaml:"frontend_url"`
	MongoURI            string `yaml:"mongo_uri"`
	MongoDatabase       string `yaml:"mongo_database"`
	BootstrapAdminEmail string `yaml:"bootstrap_admin_email"`
	OIDCIssuer          string `yaml:"oidc_issuer"`
	OIDCJWKSURL         string `yaml:"oidc_jwks_url"`
	OpenAIKey           string `yaml:"openai_api_key"`
	AIModel             string `yaml:"ai_model"`
	AIBaseURL           string `yaml:"ai_base_url"`
	RedisURL            string `yaml:"redis_url"`
	RateLimit           string `yaml:"rate_limit"`
	RabbitMQURL         string `yaml:"rabbitmq_url"`
	RabbitMQPrefetch    int    `yaml:"rabbitmq_prefetch"`
	MinioEndpoint       string `yaml:"minio_endpoint"`
	MinioAccessKey      string `yaml:"minio_access_key"`
	MinioSecretKey      string `yaml:"minio_secret_key"`
	MinioBucket         string `yaml:"minio_bucket"`
	MinioUseSSL         bool   `yaml:"minio_use_ssl"`
	EnableHSTS          bool   `yaml:"enable_hsts"`
	ServerDebugMode     bool   `yaml:"server_debug_mode"`
	WorkerDebugMode     bool   `yaml:"worker_debug_mode"`
	OTELEnabled         bool   `yaml:"otel_enabled"`
	OTELEndpoint        string `yaml:"otel_endpoint"`
}

// Load loads configuration from the optional YAML file named by QMFLOW_CONFIG,
// then overlays environment variables. Env always wins.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("QMFLOW_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.ServerPort = getEnv("SERVER_PORT", defaultStr(cfg.ServerPort, "8080"))
	cfg.FrontendURL = getEnv("FRONTEND_URL", defaultStr(cfg.FrontendURL, "http://localhost:3000"))
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", defaultStr(cfg.MongoDatabase, "qmflow"))
	cfg.BootstrapAdminEmail = getEnv("BOOTSTRAP_ADMIN_EMAIL", cfg.BootstrapAdminEmail)
	cfg.OIDCIssuer = getEnv("OIDC_ISSUER", cfg.OIDCIssuer)
	cfg.OIDCJWKSURL = getEnv("OIDC_JWKS_URL", cfg.OIDCJWKSURL)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", defaultStr(cfg.RedisURL, "redis://localhost:6379/0"))
	cfg.RateLimit = getEnv("RATE_LIMIT", defaultStr(cfg.RateLimit, "10-S"))
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", defaultInt(cfg.RabbitMQPrefetch, 1))
	cfg.MinioEndpoint = getEnv("MINIO_ENDPOINT", cfg.MinioEndpoint)
	cfg.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinioAccessKey)
	cfg.MinioSecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinioSecretKey)
	cfg.MinioBucket = getEnv("MINIO_BUCKET", defaultStr(cfg.MinioBucket, "qmflow-attachments"))
	cfg.MinioUseSSL = getEnvBool("MINIO_USE_SSL", cfg.MinioUseSSL)
	cfg.EnableHSTS = getEnvBool("ENABLE_HSTS", cfg.EnableHSTS)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.OIDCIssuer == "" || cfg.OIDCJWKSURL == "" {
		return nil, fmt.Errorf("OIDC_ISSUER and OIDC_JWKS_URL are required")
	}

	return cfg, nil
}

func defaultStr(current, fallback string) string {
	if current != "" {
		return current
	}
	return fallback
}

func defaultInt(current, fallback int) int {
	if current != 0 {
		return current
	}
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
