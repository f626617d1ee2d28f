// Package config provides configuration for the FMU web service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names for the artifact store.
const (
	BackendMemory = "memory"
	BackendDisk   = "disk"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Directories
	StaticDir string `yaml:"static_dir"`
	UploadDir string `yaml:"upload_dir"`

	// Artifact store backend: "memory" (default) or "disk"
	StoreBackend string `yaml:"store_backend"`

	// Retention for files in UploadDir
	MaxUploadAge time.Duration `yaml:"max_upload_age"`

	// Engine sidecar
	EngineURL string `yaml:"engine_url"`

	// Run history database path; empty disables recording
	RunLogPath string `yaml:"runlog_path"`

	// Logging
	Debug bool `yaml:"debug"`
}

// Load builds the configuration: defaults, then the optional YAML file
// named by FMUWEB_CONFIG, then environment variable overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Host:         "0.0.0.0",
		Port:         8000,
		StaticDir:    "static",
		UploadDir:    "uploads",
		StoreBackend: BackendMemory,
		MaxUploadAge: 24 * time.Hour,
		EngineURL:    "http://localhost:8100",
		Debug:        true,
	}

	if path := os.Getenv("FMUWEB_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Host = getEnv("FMUWEB_HOST", cfg.Host)
	cfg.Port = getEnvInt("FMUWEB_PORT", cfg.Port)
	cfg.StaticDir = getEnv("FMUWEB_STATIC_DIR", cfg.StaticDir)
	cfg.UploadDir = getEnv("FMUWEB_UPLOAD_DIR", cfg.UploadDir)
	cfg.StoreBackend = getEnv("FMUWEB_STORE_BACKEND", cfg.StoreBackend)
	cfg.MaxUploadAge = time.Duration(getEnvInt("FMUWEB_MAX_UPLOAD_AGE_HOURS", int(cfg.MaxUploadAge/time.Hour))) * time.Hour
	cfg.EngineURL = getEnv("FMUWEB_ENGINE_URL", cfg.EngineURL)
	cfg.RunLogPath = getEnv("FMUWEB_RUNLOG", cfg.RunLogPath)
	cfg.Debug = getEnvBool("FMUWEB_DEBUG", cfg.Debug)

	if cfg.StoreBackend != BackendMemory && cfg.StoreBackend != BackendDisk {
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	switch val {
	case "1", "true", "yes", "on", "TRUE", "True":
		return true
	default:
		return false
	}
}
