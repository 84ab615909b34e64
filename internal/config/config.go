package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Gripp    GrippConfig
	App      AppConfig
	Sync     SyncConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// GrippConfig holds upstream API configuration
type GrippConfig struct {
	BaseURL string
	APIKey  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type SyncConfig struct {
	Interval time.Duration
	// How far back and forward the periodic sync pulls range-scoped
	// entities (contracts, absences, hour entries).
	RangeMonthsBack    int
	RangeMonthsForward int
}

type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

func Load() (*Config, error) {
	// .env is optional in deployed environments
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "gripp-dashboard"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
	}

	// Upstream API configuration
	config.Gripp = GrippConfig{
		BaseURL: getEnv("GRIPP_API_URL", "https://api.gripp.com/public/api3.php"),
		APIKey:  getEnv("GRIPP_API_KEY", ""),
	}

	// Sync configuration
	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	monthsBack, err := strconv.Atoi(getEnv("SYNC_RANGE_MONTHS_BACK", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_RANGE_MONTHS_BACK: %w", err)
	}
	monthsForward, err := strconv.Atoi(getEnv("SYNC_RANGE_MONTHS_FORWARD", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_RANGE_MONTHS_FORWARD: %w", err)
	}
	config.Sync = SyncConfig{
		Interval:           syncInterval,
		RangeMonthsBack:    monthsBack,
		RangeMonthsForward: monthsForward,
	}

	// Cache configuration
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cacheMaxSize, err := strconv.Atoi(getEnv("CACHE_MAX_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_MAX_SIZE: %w", err)
	}
	config.Cache = CacheConfig{
		TTL:     cacheTTL,
		MaxSize: cacheMaxSize,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Gripp.APIKey == "" {
		return fmt.Errorf("GRIPP_API_KEY is required")
	}
	if c.Gripp.BaseURL == "" {
		return fmt.Errorf("GRIPP_API_URL is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
