package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays settings from the environment. A .env file is loaded
// first when present (path overridable via ENV_FILE); real environment
// variables win over file contents, which is godotenv's default.
func parseEnv(config *Config) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	setString(&config.EndpointAddr, "ADDRESS")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.StorageBackend, "STORAGE_BACKEND")
	setString(&config.StorageRoot, "STORAGE_ROOT")
	setString(&config.S3AccessKey, "S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.JWTSecret, "JWT_SECRET")
	setString(&config.CronSecret, "CRON_SECRET")

	if v, ok := os.LookupEnv("CLEANUP_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.CleanupInterval = d
		}
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		config.CORSAllowedOrigins = splitAndTrim(v)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
