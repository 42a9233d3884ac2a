// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for the session database and model artifacts
	ModelPath   string // Path to the serialized risk model artifact
	ColumnsPath string // Path to the ordered feature-column descriptor
	LogLevel    string
	Port        int
	DevMode     bool

	// SessionTTLHours controls how long sticky session rows are retained
	// before the cleanup job prunes them.
	SessionTTLHours int

	// Optional S3-compatible artifact store. When Bucket is set the model
	// artifacts are fetched from object storage before the local load.
	ArtifactStore ArtifactStoreConfig
}

// ArtifactStoreConfig holds S3-compatible object storage settings for model
// artifact distribution (endpoint-style access, e.g. R2 or MinIO).
type ArtifactStoreConfig struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether an artifact store is configured.
func (c ArtifactStoreConfig) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("MICROINVEST_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		ModelPath:       getEnv("MODEL_PATH", filepath.Join(absDataDir, "model.bin")),
		ColumnsPath:     getEnv("MODEL_COLUMNS_PATH", filepath.Join(absDataDir, "columns.json")),
		Port:            getEnvAsInt("GO_PORT", 8001),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SessionTTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24),
		ArtifactStore: ArtifactStoreConfig{
			Bucket:    getEnv("ARTIFACT_S3_BUCKET", ""),
			Prefix:    getEnv("ARTIFACT_S3_PREFIX", "models"),
			Endpoint:  getEnv("ARTIFACT_S3_ENDPOINT", ""),
			Region:    getEnv("ARTIFACT_S3_REGION", "auto"),
			AccessKey: getEnv("ARTIFACT_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("ARTIFACT_S3_SECRET_KEY", ""),
		},
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
