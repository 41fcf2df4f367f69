package repository

import (
	"context"
	"sync"

	"theme-images-manager/internal/domain"
)

// InMemoryShopRepository keeps shops in process memory, for single-instance
// deployments without MongoDB and for tests
type InMemoryShopRepository struct {
	mu    sync.RWMutex
	shops map[string]domain.Shop
}

func NewInMemoryShopRepository() *InMemoryShopRepository {
	return &InMemoryShopRepository{shops: make(map[string]domain.Shop)}
}

func (r *InMemoryShopRepository) SaveShop(_ context.Context, shop *domain.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shops[shop.Domain] = *shop
	return nil
}

func (r *InMemoryShopRepository) GetShop(_ context.Context, shopDomain string) (*domain.Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shop, ok := r.shops[shopDomain]
	if !ok {
		return nil, nil
	}
	return &shop, nil
}

func (r *InMemoryShopRepository) DeleteShop(_ context.Context, shopDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.shops, shopDomain)
	return nil
}

// InMemoryIntegrationRepository is the memory counterpart of MongoIntegrationRepository
type InMemoryIntegrationRepository struct {
	mu           sync.RWMutex
	integrations map[string]domain.Integration
}

func NewInMemoryIntegrationRepository() *InMemoryIntegrationRepository {
	return &InMemoryIntegrationRepository{integrations: make(map[string]domain.Integration)}
}

func (r *InMemoryIntegrationRepository) Create(_ context.Context, integration *domain.Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.integrations[integration.Key] = *integration
	return nil
}

func (r *InMemoryIntegrationRepository) GetByKey(_ context.Context, key string) (*domain.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	integration, ok := r.integrations[key]
	if !ok {
		return nil, nil
	}
	return &integration, nil
}

func (r *InMemoryIntegrationRepository) DeleteByShop(_ context.Context, shopDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, integration := range r.integrations {
		if integration.ShopDomain == shopDomain {
			delete(r.integrations, key)
		}
	}
	return nil
}
