package config

import (
	"encoding/json"
	"os"

	"github.com/ADevelopere/storagegate/internal/flagx"
	"github.com/ADevelopere/storagegate/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Durations accept both
// strings ("15m") and integer nanoseconds via timex.Duration.
type JsonConfig struct {
	EndpointAddr       string         `json:"endpoint_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	StorageBackend     string         `json:"storage_backend"`
	StorageRoot        string         `json:"storage_root"`
	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	JWTSecret          string         `json:"jwt_secret"`
	CronSecret         string         `json:"cron_secret"`
	CleanupInterval    timex.Duration `json:"cleanup_interval"`
	CORSAllowedOrigins []string       `json:"cors_allowed_origins"`
}

// parseJson overlays values from the JSON file named by -c/-config, when
// given. Unset (zero) fields leave the current value alone. A file that
// cannot be read or parsed is a startup failure, hence the panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddr, c.EndpointAddr)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.StorageBackend, c.StorageBackend)
	overlayString(&config.StorageRoot, c.StorageRoot)
	overlayString(&config.S3AccessKey, c.S3AccessKey)
	overlayString(&config.S3SecretKey, c.S3SecretKey)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlayString(&config.JWTSecret, c.JWTSecret)
	overlayString(&config.CronSecret, c.CronSecret)
	if c.CleanupInterval.Duration != 0 {
		config.CleanupInterval = c.CleanupInterval.Duration
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
