package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Model artifacts, loaded once at startup.
	GatekeeperModelPath string
	DiseaseModelPath    string
	ClassNamesPath      string
	ImageSize           int

	// External conversational model (OpenAI-compatible endpoint).
	AdvisoryAPIKey  string
	AdvisoryBaseURL string
	AdvisoryModel   string
	AdvisoryTimeout time.Duration

	// Optional blob archiving of accepted uploads. Disabled when account
	// name is empty.
	ArchiveAccountName string
	ArchiveAccountKey  string
	ArchiveContainer   string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// ArchiveEnabled reports whether accepted uploads should be copied to blob storage.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveAccountName != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		GatekeeperModelPath: getEnvOrDefault("GATEKEEPER_MODEL_PATH", "models/gatekeeper_for_plant.onnx"),
		DiseaseModelPath:    getEnvOrDefault("DISEASE_MODEL_PATH", "models/crop_disease_detector.onnx"),
		ClassNamesPath:      getEnvOrDefault("CLASS_NAMES_PATH", "models/class_names.json"),
		ImageSize:           int(parseIntOrDefault("IMAGE_SIZE", 224)),

		AdvisoryAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		AdvisoryBaseURL: getEnvOrDefault("ADVISORY_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		AdvisoryModel:   getEnvOrDefault("ADVISORY_MODEL", "gemini-2.0-flash"),
		AdvisoryTimeout: parseDurationOrDefault("ADVISORY_TIMEOUT", 60*time.Second),

		ArchiveAccountName: os.Getenv("ARCHIVE_ACCOUNT_NAME"),
		ArchiveAccountKey:  os.Getenv("ARCHIVE_ACCOUNT_KEY"),
		ArchiveContainer:   getEnvOrDefault("ARCHIVE_CONTAINER", "leaf-uploads"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.AdvisoryTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, advisory=%s)",
			cfg.RequestTimeout, cfg.AdvisoryTimeout)
	}
	if cfg.ImageSize <= 0 {
		return nil, fmt.Errorf("IMAGE_SIZE must be > 0 (got %d)", cfg.ImageSize)
	}
	if cfg.AdvisoryAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if cfg.ArchiveEnabled() && cfg.ArchiveAccountKey == "" {
		return nil, fmt.Errorf("ARCHIVE_ACCOUNT_KEY is required when ARCHIVE_ACCOUNT_NAME is set")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
