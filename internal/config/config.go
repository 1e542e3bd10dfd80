package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Browser   BrowserConfig
	Collector CollectorConfig
	Scraper   ScraperConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	// APIKey is checked against the auth-key header on every intake request.
	APIKey string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type BrowserConfig struct {
	WSEndpoint     string
	Headless       bool
	TimeoutSeconds int
}

type CollectorConfig struct {
	BaseURL string
	APIKey  string
}

type ScraperConfig struct {
	SettleDelay      time.Duration
	ArchiveLinkLimit int
	MaxAttempts      int
	BackoffBase      time.Duration

	ProductWorkers  int
	ArchiveWorkers  int
	FastSyncWorkers int

	ArchiveRateMax     int
	ArchiveRateWindow  time.Duration
	FastSyncRateMax    int
	FastSyncRateWindow time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Auth: AuthConfig{
			APIKey: getEnv("AUTH_KEY_API", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("DB_ENABLED", true),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "trendyol_scraper"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Browser: BrowserConfig{
			WSEndpoint:     getEnv("BROWSER_WS_ENDPOINT", ""),
			Headless:       getEnvBool("BROWSER_HEADLESS", true),
			TimeoutSeconds: getEnvInt("BROWSER_TIMEOUT", 30),
		},
		Collector: CollectorConfig{
			BaseURL: getEnv("KE_BASE_API_URL", ""),
			APIKey:  getEnv("KE_API_KEY", ""),
		},
		Scraper: ScraperConfig{
			SettleDelay:      getEnvDuration("SCRAPER_SETTLE_DELAY", 3500*time.Millisecond),
			ArchiveLinkLimit: getEnvInt("SCRAPER_ARCHIVE_LINK_LIMIT", 200),
			MaxAttempts:      getEnvInt("SCRAPER_MAX_ATTEMPTS", 3),
			BackoffBase:      getEnvDuration("SCRAPER_BACKOFF_BASE", 5*time.Second),

			ProductWorkers:  getEnvInt("SCRAPER_PRODUCT_WORKERS", 5),
			ArchiveWorkers:  getEnvInt("SCRAPER_ARCHIVE_WORKERS", 1),
			FastSyncWorkers: getEnvInt("SCRAPER_FAST_SYNC_WORKERS", 3),

			ArchiveRateMax:     getEnvInt("SCRAPER_ARCHIVE_RATE_MAX", 5),
			ArchiveRateWindow:  getEnvDuration("SCRAPER_ARCHIVE_RATE_WINDOW", time.Minute),
			FastSyncRateMax:    getEnvInt("SCRAPER_FAST_SYNC_RATE_MAX", 3),
			FastSyncRateWindow: getEnvDuration("SCRAPER_FAST_SYNC_RATE_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("AUTH_KEY_API is required")
	}

	if c.Collector.BaseURL == "" {
		return fmt.Errorf("KE_BASE_API_URL is required")
	}

	if c.Scraper.MaxAttempts < 1 {
		return fmt.Errorf("at least 1 attempt is required")
	}

	if c.Scraper.ProductWorkers < 1 || c.Scraper.ArchiveWorkers < 1 || c.Scraper.FastSyncWorkers < 1 {
		return fmt.Errorf("at least 1 worker per job kind is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
