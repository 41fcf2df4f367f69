package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/infrastructure/metrics"
	"theme-images-manager/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// Options configures the Shopify client adapter
type Options struct {
	APIVersion  string
	HTTPClient  *http.Client
	RateLimiter *RateLimiter
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

type client struct {
	apiKey      string
	apiSecret   string
	app         goshopify.App
	apiVersion  string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewClient creates a new Shopify client adapter
func NewClient(apiKey, apiSecret string) ports.ShopifyClient {
	return NewClientWithOptions(apiKey, apiSecret, Options{Logger: zerolog.Nop()})
}

// NewClientWithOptions creates a client with rate limiting, metrics and a custom transport
func NewClientWithOptions(apiKey, apiSecret string, opts Options) ports.ShopifyClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		apiVersion:  opts.APIVersion,
		httpClient:  httpClient,
		rateLimiter: opts.RateLimiter,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(ctx context.Context, shopDomain string, accessToken string) (*goshopify.Client, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx, shopDomain); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	opts := []goshopify.Option{goshopify.WithHTTPClient(c.httpClient)}
	if c.apiVersion != "" {
		opts = append(opts, goshopify.WithVersion(c.apiVersion))
	}
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// shopHost is the host every request for shop goes to. The Admin API client
// appends .myshopify.com to any other domain, so the OAuth endpoints follow suit.
func shopHost(shop string) string {
	return goshopify.ShopFullName(shop)
}

// Authentication methods

func (c *client) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	if shop == "" {
		return "", fmt.Errorf("shop is required")
	}
	// Shopify expects scopes to be comma-separated (no spaces)
	scopesStr := strings.Join(scopes, ",")

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&state=%s&redirect_uri=%s",
		shopHost(shop),
		url.QueryEscape(c.apiKey),
		url.QueryEscape(scopesStr),
		url.QueryEscape(state),
		url.QueryEscape(redirectURI),
	)

	c.logger.Debug().
		Str("shop", shop).
		Str("scopes", scopesStr).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

// ExchangeToken posts the authorization code to the shop's token endpoint.
// Errors carry the shop and HTTP status only, never the request body.
func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (grant *ports.TokenGrant, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveShopifyCall("exchange_token", start, err) }()

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.apiKey,
		"client_secret": c.apiSecret,
		"code":          code,
	})
	if err != nil {
		return nil, &domain.TokenExchangeError{Shop: shop, Err: fmt.Errorf("failed to encode request")}
	}

	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shopHost(shop))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.TokenExchangeError{Shop: shop, Err: fmt.Errorf("failed to create token request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TokenExchangeError{Shop: shop, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.TokenExchangeError{Shop: shop, Status: resp.StatusCode}
	}

	var tokenResponse ports.TokenGrant
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, &domain.TokenExchangeError{Shop: shop, Err: fmt.Errorf("failed to decode token response: %w", err)}
	}
	if tokenResponse.AccessToken == "" {
		return nil, &domain.TokenExchangeError{Shop: shop, Err: fmt.Errorf("token response has no access_token")}
	}

	return &tokenResponse, nil
}

// Theme API

func (c *client) MainThemeID(ctx context.Context, shopDomain string, accessToken string) (id uint64, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveShopifyCall("list_themes", start, err) }()

	client, err := c.createClient(ctx, shopDomain, accessToken)
	if err != nil {
		return 0, err
	}
	themes, err := client.Theme.List(ctx, goshopify.ThemeListOptions{Role: "main"})
	if err != nil {
		return 0, remoteError("list themes", err)
	}
	for _, theme := range themes {
		if theme.Role == "main" {
			return theme.Id, nil
		}
	}
	return 0, &domain.RemoteAPIError{Op: "list themes", Err: fmt.Errorf("shop %s has no main theme", shopDomain)}
}

// Asset API

func (c *client) ListAssets(ctx context.Context, shopDomain string, accessToken string, themeID uint64) (assets []goshopify.Asset, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveShopifyCall("list_assets", start, err) }()

	client, err := c.createClient(ctx, shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	assets, err = client.Asset.List(ctx, themeID, nil)
	if err != nil {
		return nil, remoteError("list assets", err)
	}
	return assets, nil
}

// RawAssets returns the asset listing exactly as Shopify sent it
func (c *client) RawAssets(ctx context.Context, shopDomain string, accessToken string, themeID uint64) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveShopifyCall("list_assets_raw", start, err) }()

	client, err := c.createClient(ctx, shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("themes/%d/assets.json", themeID)
	if err := client.Get(ctx, path, &raw, nil); err != nil {
		return nil, remoteError("list assets", err)
	}
	return raw, nil
}

func (c *client) PutAsset(ctx context.Context, shopDomain string, accessToken string, themeID uint64, asset goshopify.Asset) (updated *goshopify.Asset, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveShopifyCall("put_asset", start, err) }()

	client, err := c.createClient(ctx, shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	updated, err = client.Asset.Update(ctx, themeID, asset)
	if err != nil {
		return nil, remoteError("put asset", err)
	}
	return updated, nil
}

func (c *client) DeleteAsset(ctx context.Context, shopDomain string, accessToken string, themeID uint64, key string) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveShopifyCall("delete_asset", start, err) }()

	client, err := c.createClient(ctx, shopDomain, accessToken)
	if err != nil {
		return err
	}
	if err := client.Asset.Delete(ctx, themeID, key); err != nil {
		return remoteError("delete asset", err)
	}
	return nil
}

// Webhook API

func (c *client) CreateWebhook(ctx context.Context, shopDomain string, accessToken string, topic string, address string) (created *goshopify.Webhook, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveShopifyCall("create_webhook", start, err) }()

	client, err := c.createClient(ctx, shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	webhook := goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}
	created, err = client.Webhook.Create(ctx, webhook)
	if err != nil {
		return nil, remoteError("create webhook", err)
	}
	return created, nil
}
