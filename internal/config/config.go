package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds everything read from the environment at startup
type Config struct {
	Port     string
	AppURL   string
	LogLevel zerolog.Level

	ShopifyAPIKey     string
	ShopifyAPISecret  string
	ShopifyScopes     []string
	ShopifyAPIVersion string
	ShopifyThemeID    uint64
	ShopDomainSuffix  string
	HTTPTimeout       time.Duration

	// Optional pre-installed shop, replaces a completed OAuth install
	SeedShop        string
	SeedAccessToken string

	EncryptionKey string

	MongoURI      string
	MongoDatabase string
	RedisURL      string

	StaticDir         string
	UploadConcurrency int
	UploadMaxBytes    int64
}

// Load reads .env (if present) and the process environment
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found, using process environment")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:              get("PORT", "3030"),
		AppURL:            strings.TrimSuffix(get("APP_URL", "http://localhost:3030"), "/"),
		ShopifyAPIKey:     get("SHOPIFY_API_KEY", ""),
		ShopifyAPISecret:  get("SHOPIFY_API_SECRET", ""),
		ShopifyScopes:     splitScopes(get("SHOPIFY_SCOPES", "write_themes")),
		ShopifyAPIVersion: get("SHOPIFY_API_VERSION", ""),
		ShopDomainSuffix:  get("SHOP_DOMAIN_SUFFIX", "myshopify.com"),
		SeedShop:          get("SHOPIFY_SHOP", ""),
		SeedAccessToken:   get("SHOPIFY_ACCESS_TOKEN", ""),
		EncryptionKey:     get("ENCRYPTION_KEY", ""),
		MongoURI:          get("MONGODB_URI", ""),
		MongoDatabase:     get("MONGODB_DATABASE", "theme_images_manager"),
		RedisURL:          get("REDIS_URL", ""),
		StaticDir:         get("STATIC_DIR", "./dist"),
	}

	if cfg.ShopifyAPIKey == "" {
		return nil, fmt.Errorf("SHOPIFY_API_KEY environment variable is required")
	}
	if cfg.ShopifyAPISecret == "" {
		return nil, fmt.Errorf("SHOPIFY_API_SECRET environment variable is required")
	}
	if cfg.EncryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY environment variable is required")
	}
	if (cfg.SeedShop == "") != (cfg.SeedAccessToken == "") {
		return nil, fmt.Errorf("SHOPIFY_SHOP and SHOPIFY_ACCESS_TOKEN must be set together")
	}

	level, err := zerolog.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if v := get("SHOPIFY_THEME_ID", ""); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SHOPIFY_THEME_ID: %w", err)
		}
		cfg.ShopifyThemeID = id
	}

	cfg.HTTPTimeout, err = time.ParseDuration(get("SHOPIFY_HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHOPIFY_HTTP_TIMEOUT: %w", err)
	}

	cfg.UploadConcurrency, err = strconv.Atoi(get("UPLOAD_CONCURRENCY", "4"))
	if err != nil || cfg.UploadConcurrency < 1 {
		return nil, fmt.Errorf("invalid UPLOAD_CONCURRENCY %q", getenv("UPLOAD_CONCURRENCY"))
	}

	cfg.UploadMaxBytes, err = strconv.ParseInt(get("UPLOAD_MAX_BYTES", "33554432"), 10, 64)
	if err != nil || cfg.UploadMaxBytes < 1 {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES %q", getenv("UPLOAD_MAX_BYTES"))
	}

	return cfg, nil
}

// RedirectURI is the fixed OAuth callback registered with Shopify
func (c *Config) RedirectURI() string {
	return c.AppURL + "/callback"
}

// WebhookURL is where Shopify delivers app webhooks
func (c *Config) WebhookURL() string {
	return c.AppURL + "/webhooks/shopify"
}

func splitScopes(s string) []string {
	var scopes []string
	for _, scope := range strings.Split(s, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}
