package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string

	// Object storage service
	StorageURL    string
	StorageBucket string
	StorageKey    string

	// Template rendering service
	RenderURL string

	Debug bool
}

// fileConfig is the optional YAML overlay (CONFIG_FILE). Environment
// variables win over file values; the file only fills gaps.
type fileConfig struct {
	Port    string `yaml:"port"`
	Storage struct {
		URL    string `yaml:"url"`
		Bucket string `yaml:"bucket"`
	} `yaml:"storage"`
	Render struct {
		URL string `yaml:"url"`
	} `yaml:"render"`
	CORSOrigins string `yaml:"cors_origins"`
}

func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   env,
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		JWKSURL:       getEnv("JWKS_URL", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:   getTablePrefix(env),
		StorageURL:    getEnv("STORAGE_URL", ""),
		StorageBucket: getEnv("STORAGE_BUCKET", "documents"),
		StorageKey:    getEnv("STORAGE_SERVICE_KEY", ""),
		RenderURL:     getEnv("RENDER_SERVICE_URL", ""),
		// Debug defaults to true outside production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if os.Getenv("PORT") == "" && fc.Port != "" {
		c.Port = fc.Port
	}
	if os.Getenv("STORAGE_URL") == "" && fc.Storage.URL != "" {
		c.StorageURL = fc.Storage.URL
	}
	if os.Getenv("STORAGE_BUCKET") == "" && fc.Storage.Bucket != "" {
		c.StorageBucket = fc.Storage.Bucket
	}
	if os.Getenv("RENDER_SERVICE_URL") == "" && fc.Render.URL != "" {
		c.RenderURL = fc.Render.URL
	}
	if os.Getenv("CORS_ORIGINS") == "" && fc.CORSOrigins != "" {
		c.CORSOrigins = fc.CORSOrigins
	}

	return nil
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
