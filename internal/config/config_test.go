package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"SHOPIFY_API_KEY":    "key",
		"SHOPIFY_API_SECRET": "secret",
		"ENCRYPTION_KEY":     "0123456789abcdef0123456789abcdef",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "3030", cfg.Port)
	assert.Equal(t, []string{"write_themes"}, cfg.ShopifyScopes)
	assert.Equal(t, "myshopify.com", cfg.ShopDomainSuffix)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.UploadConcurrency)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "http://localhost:3030/callback", cfg.RedirectURI())
	assert.Zero(t, cfg.ShopifyThemeID)
}

func TestFromEnv_Overrides(t *testing.T) {
	env := baseEnv()
	env["APP_URL"] = "https://images.example.com/"
	env["SHOPIFY_SCOPES"] = "read_themes, write_themes"
	env["SHOPIFY_THEME_ID"] = "46142128176"
	env["LOG_LEVEL"] = "debug"

	cfg, err := FromEnv(envMap(env))
	require.NoError(t, err)

	assert.Equal(t, "https://images.example.com/callback", cfg.RedirectURI())
	assert.Equal(t, "https://images.example.com/webhooks/shopify", cfg.WebhookURL())
	assert.Equal(t, []string{"read_themes", "write_themes"}, cfg.ShopifyScopes)
	assert.Equal(t, uint64(46142128176), cfg.ShopifyThemeID)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing api key", func(m map[string]string) { delete(m, "SHOPIFY_API_KEY") }},
		{"missing api secret", func(m map[string]string) { delete(m, "SHOPIFY_API_SECRET") }},
		{"missing encryption key", func(m map[string]string) { delete(m, "ENCRYPTION_KEY") }},
		{"bad theme id", func(m map[string]string) { m["SHOPIFY_THEME_ID"] = "main" }},
		{"zero concurrency", func(m map[string]string) { m["UPLOAD_CONCURRENCY"] = "0" }},
		{"seed shop without token", func(m map[string]string) { m["SHOPIFY_SHOP"] = "a.myshopify.com" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := baseEnv()
			tc.mutate(env)
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}
