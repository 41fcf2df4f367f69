package repository

import (
	"context"
	"testing"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.ShopRepository        = (*InMemoryShopRepository)(nil)
	_ ports.IntegrationRepository = (*InMemoryIntegrationRepository)(nil)
)

func TestInMemoryShopRepository(t *testing.T) {
	repo := NewInMemoryShopRepository()
	ctx := context.Background()

	shop, err := repo.GetShop(ctx, "foo.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, shop)

	require.NoError(t, repo.SaveShop(ctx, &domain.Shop{Domain: "foo.myshopify.com", AccessToken: "sealed"}))

	shop, err = repo.GetShop(ctx, "foo.myshopify.com")
	require.NoError(t, err)
	require.NotNil(t, shop)
	assert.Equal(t, "sealed", shop.AccessToken)

	// returned values are copies
	shop.AccessToken = "mutated"
	again, err := repo.GetShop(ctx, "foo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, "sealed", again.AccessToken)

	require.NoError(t, repo.DeleteShop(ctx, "foo.myshopify.com"))
	shop, err = repo.GetShop(ctx, "foo.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, shop)
}

func TestInMemoryIntegrationRepository(t *testing.T) {
	repo := NewInMemoryIntegrationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Integration{Key: "k1", ShopDomain: "foo.myshopify.com"}))
	require.NoError(t, repo.Create(ctx, &domain.Integration{Key: "k2", ShopDomain: "foo.myshopify.com"}))
	require.NoError(t, repo.Create(ctx, &domain.Integration{Key: "k3", ShopDomain: "bar.myshopify.com"}))

	got, err := repo.GetByKey(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "foo.myshopify.com", got.ShopDomain)

	require.NoError(t, repo.DeleteByShop(ctx, "foo.myshopify.com"))

	for _, key := range []string{"k1", "k2"} {
		got, err := repo.GetByKey(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got, key)
	}
	got, err = repo.GetByKey(ctx, "k3")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
