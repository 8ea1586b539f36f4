package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	// Blob storage
	BlobRoot              string
	BlobBaseURL           string
	BlobDeleteConcurrency int
	BlobOpTimeout         time.Duration
	// Folder tree
	MaxFolderDepth int
	// Capability policy override (empty = embedded default)
	PolicyFile string
	// Logging
	LogDir        string
	LogMaxSizeMB  int
	LogMaxBackups int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           env,
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWKSURL:               getEnv("JWKS_URL", ""),
		CORSOrigins:           getEnv("CORS_ORIGINS", "http://localhost:3000"),
		BlobRoot:              getEnv("BLOB_ROOT", "./data/blobs"),
		BlobBaseURL:           getEnv("BLOB_BASE_URL", "http://localhost:8080/blobs"),
		BlobDeleteConcurrency: getEnvInt("BLOB_DELETE_CONCURRENCY", DefaultBlobDeleteConcurrency),
		BlobOpTimeout:         getEnvDuration("BLOB_OP_TIMEOUT", DefaultBlobOpTimeout),
		MaxFolderDepth:        getEnvInt("MAX_FOLDER_DEPTH", DefaultMaxFolderDepth),
		PolicyFile:            getEnv("POLICY_FILE", ""),
		LogDir:                getEnv("LOG_DIR", ""),
		LogMaxSizeMB:          getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups:         getEnvInt("LOG_MAX_BACKUPS", 5),
	}
}

// IsDev reports whether dev-only conveniences (debug logging, header auth) apply
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
