// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Port             string
	AllowedOrigin    string
	AWSRegion        string
	S3Bucket         string
	CloudfrontDomain string

	PresetsPath       string
	FontPath          string
	CaptionModelID    string
	BackgroundModelID string
	UseAIBackground   bool

	MaxUploadMB   int
	RateLimit     float64 // requests per second per IP
	RateBurst     int
	BackgroundTTL time.Duration
	BuildTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		AWSRegion:        getEnv("AWS_REGION", "ap-northeast-1"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		CloudfrontDomain: getEnv("CLOUDFRONT_DOMAIN", ""),

		PresetsPath:       getEnv("COLLAGE_PRESETS", ""),
		FontPath:          getEnv("FONT_PATH", ""),
		CaptionModelID:    getEnv("CAPTION_MODEL_ID", ""),
		BackgroundModelID: getEnv("BACKGROUND_MODEL_ID", ""),
	}

	var err error
	if cfg.UseAIBackground, err = strconv.ParseBool(getEnv("USE_AI_BACKGROUND", "true")); err != nil {
		return nil, fmt.Errorf("invalid USE_AI_BACKGROUND: %w", err)
	}
	if cfg.MaxUploadMB, err = strconv.Atoi(getEnv("MAX_UPLOAD_MB", "32")); err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}
	if cfg.RateLimit, err = strconv.ParseFloat(getEnv("RATE_LIMIT", "2"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	if cfg.RateBurst, err = strconv.Atoi(getEnv("RATE_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid RATE_BURST: %w", err)
	}
	if cfg.BackgroundTTL, err = time.ParseDuration(getEnv("BACKGROUND_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid BACKGROUND_CACHE_TTL: %w", err)
	}
	if cfg.BuildTimeout, err = time.ParseDuration(getEnv("BUILD_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("invalid BUILD_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate port is a number
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("invalid port: must be a number")
	}

	if c.MaxUploadMB <= 0 {
		return errors.New("invalid max upload size: must be positive")
	}

	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("invalid rate limit: limit and burst must be positive")
	}

	if c.S3Bucket != "" && c.CloudfrontDomain == "" {
		return errors.New("CLOUDFRONT_DOMAIN is required when S3_BUCKET is set")
	}

	return nil
}

// StorageEnabled reports whether S3 backgrounds and uploads are configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// AllowedOrigins returns the comma separated ALLOWED_ORIGIN values.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// MaxUploadBytes returns the request body limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
