package ports

import (
	"context"
	"encoding/json"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// TokenGrant is the token endpoint's answer to a code exchange
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// ShopifyClient defines the Shopify operations this service relies on
type ShopifyClient interface {
	// Authentication
	GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error)
	ExchangeToken(ctx context.Context, shop string, code string) (*TokenGrant, error)

	// Theme API
	MainThemeID(ctx context.Context, shop string, accessToken string) (uint64, error)

	// Asset API
	ListAssets(ctx context.Context, shop string, accessToken string, themeID uint64) ([]shopify.Asset, error)
	RawAssets(ctx context.Context, shop string, accessToken string, themeID uint64) (json.RawMessage, error)
	PutAsset(ctx context.Context, shop string, accessToken string, themeID uint64, asset shopify.Asset) (*shopify.Asset, error)
	DeleteAsset(ctx context.Context, shop string, accessToken string, themeID uint64, key string) error

	// Webhook API
	CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) (*shopify.Webhook, error)
}
