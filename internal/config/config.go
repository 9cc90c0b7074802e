package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// PublicBaseURL is the externally reachable server address;
	// presigned upload URLs are built against it.
	PublicBaseURL string
	// Object storage
	StorageBasePath string
	StorageBaseURL  string
	UploadSecret    string
	// Generation
	GenerationProvider string // "anthropic" or "lorem"
	GenerationModel    string
	AnthropicAPIKey    string
	// Analysis queue
	RedisURL string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWKSURL:         getEnv("JWKS_URL", ""),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		StorageBasePath: getEnv("STORAGE_PATH", "_output"),
		StorageBaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
		UploadSecret:    getEnv("UPLOAD_SECRET", ""),
		// Lorem keeps dev and CI off the metered provider.
		GenerationProvider: getEnv("GENERATION_PROVIDER", "lorem"),
		GenerationModel:    getEnv("GENERATION_MODEL", "claude-sonnet-4-20250514"),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		Debug:              getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
