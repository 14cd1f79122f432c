package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Upstream shop API
	ShopAPIURL string // e.g. "https://shop.example.com/api"
	ShopAPIKey string // webservice key, sent as the Basic auth username
	ShopURL    string // public storefront base, used to build product page URLs

	// Webhook signing
	WebhookSecret string // shared secret for HMAC-SHA256 body signatures

	// Timeouts
	UpstreamTimeout time.Duration // per upstream call
	SlowToolWarn    time.Duration // log a warning when a tool handler exceeds this

	// Rate limiting
	RateLimitMax    int           // admitted requests per window per client
	RateLimitWindow time.Duration // sliding window length
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:        getEnv("ENV", "development"),
		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:3000"),

		ShopAPIURL: getEnv("SHOP_API_URL", ""),
		ShopAPIKey: getEnv("SHOP_API_KEY", ""),
		ShopURL:    getEnv("SHOP_URL", ""),

		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		UpstreamTimeout: getDurationMs("UPSTREAM_TIMEOUT_MS", 5000),
		SlowToolWarn:    getDurationMs("SLOW_TOOL_WARN_MS", 2000),

		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDurationMs("RATE_LIMIT_WINDOW_MS", 60000),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDurationMs(key string, fallbackMs int) time.Duration {
	return time.Duration(getInt(key, fallbackMs)) * time.Millisecond
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
