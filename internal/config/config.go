package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Storage
	StorageBackend string // "json" or "sqlite"
	DataDir        string
	UploadDir      string
	DBPath         string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dataDir := getEnv("DATA_DIR", "data")

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Storage
		StorageBackend: getEnv("STORAGE_BACKEND", BackendJSON),
		DataDir:        dataDir,
		UploadDir:      getEnv("UPLOAD_DIR", filepath.Join(dataDir, "uploads")),
		DBPath:         getEnv("DB_PATH", filepath.Join(dataDir, "momolens.db")),
	}

	if config.StorageBackend != BackendJSON && config.StorageBackend != BackendSQLite {
		log.Printf("Warning: unknown STORAGE_BACKEND '%s', falling back to json\n", config.StorageBackend)
		config.StorageBackend = BackendJSON
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
