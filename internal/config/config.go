package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/sources"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Database configuration
	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string

	// Ingestion configuration
	RSSFeeds              []string
	EnableScheduler       bool
	ScrapeIntervalMinutes int
	HTTPTimeout           time.Duration

	// Language model configuration
	OpenRouterAPIKey      string
	OpenRouterBaseURL     string
	OpenRouterModel       string
	EnableLLMLocation     bool
	EnableRelevanceFilter bool

	// Search configuration
	ExaAPIKey         string
	ExaBaseURL        string
	SearchMaxResults  int
	SearchRecencyDays int

	// Run lock
	RedisURL string

	// Run archive
	StorageAccount   string
	StorageContainer string
	ArchiveDir       string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RSSFeeds:              getSliceEnv("RSS_FEEDS", sources.DefaultFeeds),
		EnableScheduler:       getBoolEnv("ENABLE_SCHEDULER", true),
		ScrapeIntervalMinutes: getIntEnv("SCRAPE_INTERVAL_MINUTES", 30),
		HTTPTimeout:           time.Duration(getIntEnv("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		OpenRouterAPIKey:      getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL:     getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:       getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		EnableLLMLocation:     getBoolEnv("ENABLE_LLM_LOCATION", true),
		EnableRelevanceFilter: getBoolEnv("ENABLE_RELEVANCE_FILTER", false),

		ExaAPIKey:         getEnv("EXA_API_KEY", ""),
		ExaBaseURL:        getEnv("EXA_BASE_URL", sources.DefaultExaBaseURL),
		SearchMaxResults:  getIntEnv("SEARCH_MAX_RESULTS", 10),
		SearchRecencyDays: getIntEnv("SEARCH_RECENCY_DAYS", 0),

		RedisURL: getEnv("REDIS_URL", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "mentions"),
		ArchiveDir:       getEnv("ARCHIVE_DIR", ""),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w: %w", models.ErrConfiguration, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER must be 'postgres' or 'sqlite'")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ScrapeIntervalMinutes <= 0 {
		return fmt.Errorf("SCRAPE_INTERVAL_MINUTES must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// LLMEnabled reports whether a language model key is configured
func (c *Config) LLMEnabled() bool {
	return c.OpenRouterAPIKey != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
