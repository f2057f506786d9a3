// Package config provides configuration management for the roadfix client.
//
// This package handles loading configuration from environment variables,
// validating settings, and providing sensible defaults. Configuration is
// loaded once at startup and remains immutable during runtime.
//
// Configuration sources (in order of precedence):
//  1. Command-line flags (applied by main after LoadConfig)
//  2. Environment variables
//  3. External .env file in the working directory
//  4. Embedded .env file (fallback, included in binary)
//  5. Hard-coded defaults
package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// embeddedEnv contains the .env file embedded at build time.
//
// It only carries non-secret defaults so the binary works standalone.
//
//go:embed .env
var embeddedEnv string

// Config holds all application configuration.
type Config struct {
	// Complaint service
	APIBaseURL   string        // Base URL of the REST API, e.g. http://localhost:5000
	HTTPTimeout  time.Duration // Per-request timeout
	HTTPMaxConns int           // Maximum idle connections in pool

	// Local state
	StateFile string // Durable key-value store (token, profile, remembered email)
	LogFile   string // Log destination while the TUI owns the terminal

	// Notification queue
	NotificationTTL      time.Duration // How long a toast stays visible
	NotificationCapacity int           // Max queued toasts, 0 = unbounded

	// View model
	FetchDebounce time.Duration // Window in which identical view fetches are coalesced

	// Report form location fallback
	DefaultLocation  string
	DefaultLatitude  float64
	DefaultLongitude float64

	// Device geolocation through a headless browser (optional)
	BrowserGeolocation bool
	GeolocationTimeout time.Duration
	DeviceLatitude     float64 // Fixed device position fed to the browser, 0 = none
	DeviceLongitude    float64

	// Photo preparation
	MaxPhotoBytes     int // Upload limit after preparation
	PhotoMaxDimension int // Longest edge in pixels before downscaling
	PhotoJPEGQuality  int

	// Telegram alert relay (optional)
	TelegramBotToken string
	TelegramChatID   string

	// Google Cloud Translation (optional)
	TranslateAPIKey string
	TranslateTarget string // BCP 47 tag, e.g. "mr" for Marathi

	// Admin report export directory
	ReportDir string

	// Debug mode - logs requests verbosely
	DebugMode bool
}

// LoadConfig loads configuration from environment variables with defaults.
//
// Loading process:
//  1. Parse embedded .env file and set as fallback environment variables
//  2. Try to load external .env file
//  3. Read environment variables
//  4. Apply hard-coded defaults for any missing values
//  5. Validate
func LoadConfig() (*Config, error) {
	envMap, err := godotenv.Unmarshal(embeddedEnv)
	if err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:   getEnvOrDefault("API_BASE_URL", "http://localhost:5000"),
		HTTPTimeout:  getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPMaxConns: getEnvInt("HTTP_MAX_CONNS", 100),

		StateFile: getEnvOrDefault("STATE_FILE", ".roadfix/state.csv"),
		LogFile:   getEnvOrDefault("LOG_FILE", "roadfix.log"),

		NotificationTTL:      getEnvDuration("NOTIFICATION_TTL", 5*time.Second),
		NotificationCapacity: getEnvInt("NOTIFICATION_CAPACITY", 50),

		FetchDebounce: getEnvDuration("FETCH_DEBOUNCE", 300*time.Millisecond),

		DefaultLocation:  getEnvOrDefault("DEFAULT_LOCATION", "Solapur, Maharashtra"),
		DefaultLatitude:  getEnvFloat("DEFAULT_LATITUDE", 17.6599),
		DefaultLongitude: getEnvFloat("DEFAULT_LONGITUDE", 75.9064),

		BrowserGeolocation: getEnvBool("BROWSER_GEOLOCATION", false),
		GeolocationTimeout: getEnvDuration("GEOLOCATION_TIMEOUT", 15*time.Second),
		DeviceLatitude:     getEnvFloat("DEVICE_LATITUDE", 0),
		DeviceLongitude:    getEnvFloat("DEVICE_LONGITUDE", 0),

		MaxPhotoBytes:     getEnvInt("MAX_PHOTO_BYTES", 5*1024*1024),
		PhotoMaxDimension: getEnvInt("PHOTO_MAX_DIMENSION", 2048),
		PhotoJPEGQuality:  getEnvInt("PHOTO_JPEG_QUALITY", 85),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		TranslateAPIKey: os.Getenv("TRANSLATE_API_KEY"),
		TranslateTarget: getEnvOrDefault("TRANSLATE_TARGET", "mr"),

		ReportDir: getEnvOrDefault("REPORT_DIR", "."),

		DebugMode: getEnvBool("DEBUG_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are present and sensible.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}

	if c.StateFile == "" {
		return fmt.Errorf("STATE_FILE cannot be empty")
	}

	if c.NotificationTTL <= 0 {
		return fmt.Errorf("NOTIFICATION_TTL must be positive, got %v", c.NotificationTTL)
	}
	if c.NotificationCapacity < 0 {
		return fmt.Errorf("NOTIFICATION_CAPACITY must not be negative, got %d", c.NotificationCapacity)
	}
	if c.MaxPhotoBytes < 1 {
		return fmt.Errorf("MAX_PHOTO_BYTES must be at least 1, got %d", c.MaxPhotoBytes)
	}
	if c.PhotoMaxDimension < 1 {
		return fmt.Errorf("PHOTO_MAX_DIMENSION must be at least 1, got %d", c.PhotoMaxDimension)
	}
	if c.PhotoJPEGQuality < 1 || c.PhotoJPEGQuality > 100 {
		return fmt.Errorf("PHOTO_JPEG_QUALITY must be between 1 and 100, got %d", c.PhotoJPEGQuality)
	}

	return nil
}

// TelegramEnabled reports whether the alert relay is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// Helper functions for environment variable parsing

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as a float or a default if not set/invalid
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool accepts anything strconv.ParseBool does ("1", "true", "FALSE", ...)
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
