package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"treats/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP configuration
	HTTPAddr string

	// NATS configuration; empty disables event publishing
	NATSServers string

	// Collaborator service base URLs
	PhotoServiceURL    string
	IdentityServiceURL string

	// Daily bonus size in treats
	DailyBonusAmount int64

	// Cron spec for the reconciliation pass
	ReconcileSchedule string

	// Environment is "development" or "production"
	Environment string
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// SetTestConfig replaces the global configuration for tests
func SetTestConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// ResetConfig clears the global configuration so the next Get reloads it
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig returns a configuration suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:          ":0",
		DailyBonusAmount:  5,
		ReconcileSchedule: "@hourly",
		Environment:       "test",
	}
}

// GetDatabaseURL constructs the full database URL from base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		PhotoServiceURL:    getEnvWithDefault("PHOTO_SERVICE_URL", "http://photos:8080"),
		IdentityServiceURL: getEnvWithDefault("IDENTITY_SERVICE_URL", "http://identity:8080"),

		DailyBonusAmount:  5,
		ReconcileSchedule: getEnvWithDefault("RECONCILE_SCHEDULE", "@hourly"),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if bonus := os.Getenv("DAILY_BONUS_AMOUNT"); bonus != "" {
		parsed, err := strconv.ParseInt(bonus, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DAILY_BONUS_AMOUNT: %w", err)
		}
		config.DailyBonusAmount = parsed
	}

	return config, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
