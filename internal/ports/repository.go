package ports

import (
	"context"

	"theme-images-manager/internal/domain"
)

// ShopRepository persists installed shops and their (encrypted) access tokens
type ShopRepository interface {
	SaveShop(ctx context.Context, shop *domain.Shop) error
	// GetShop returns nil, nil when the shop is unknown
	GetShop(ctx context.Context, domain string) (*domain.Shop, error)
	DeleteShop(ctx context.Context, domain string) error
}

// IntegrationRepository defines the interface for session key persistence
type IntegrationRepository interface {
	// Create creates a new integration
	Create(ctx context.Context, integration *domain.Integration) error

	// GetByKey retrieves an integration by its key, nil, nil if absent
	GetByKey(ctx context.Context, key string) (*domain.Integration, error)

	// DeleteByShop removes every integration bound to a shop
	DeleteByShop(ctx context.Context, shopDomain string) error
}
