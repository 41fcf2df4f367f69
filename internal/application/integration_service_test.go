package application

import (
	"context"
	"encoding/hex"
	"testing"

	"theme-images-manager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationService_Lifecycle(t *testing.T) {
	env := newTestEnv(t, AssetServiceConfig{})
	ctx := context.Background()

	a, err := env.integrations.CreateIntegration(ctx, "foo.myshopify.com")
	require.NoError(t, err)
	b, err := env.integrations.CreateIntegration(ctx, "foo.myshopify.com")
	require.NoError(t, err)

	assert.Len(t, a.Key, 64)
	_, err = hex.DecodeString(a.Key)
	assert.NoError(t, err)
	assert.NotEqual(t, a.Key, b.Key)

	got, err := env.integrations.GetIntegrationByKey(ctx, a.Key)
	require.NoError(t, err)
	assert.Equal(t, "foo.myshopify.com", got.ShopDomain)

	require.NoError(t, env.integrations.RevokeShop(ctx, "foo.myshopify.com"))
	for _, key := range []string{a.Key, b.Key} {
		_, err = env.integrations.GetIntegrationByKey(ctx, key)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
}

func TestIntegrationService_UnknownKey(t *testing.T) {
	env := newTestEnv(t, AssetServiceConfig{})

	_, err := env.integrations.GetIntegrationByKey(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.integrations.GetIntegrationByKey(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
