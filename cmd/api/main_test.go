package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"theme-images-manager/internal/application"
	"theme-images-manager/internal/config"
	"theme-images-manager/internal/infrastructure/encryption"
	"theme-images-manager/internal/infrastructure/repository"
	"theme-images-manager/internal/infrastructure/statestore"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory without redis", func(t *testing.T) {
		store, closeFn, err := newStateStore(ctx, "", zerolog.Nop())
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &statestore.MemoryStateStore{}, store)
	})

	t.Run("redis when configured", func(t *testing.T) {
		s := miniredis.RunT(t)
		store, closeFn, err := newStateStore(ctx, "redis://"+s.Addr(), zerolog.Nop())
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &statestore.RedisStateStore{}, store)
	})

	t.Run("bad url", func(t *testing.T) {
		_, _, err := newStateStore(ctx, "not-a-url", zerolog.Nop())
		assert.Error(t, err)
	})
}

func TestSeedShop_KeyStaysOutOfLogs(t *testing.T) {
	ctx := context.Background()
	enc, err := encryption.NewService("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)

	var logs, out bytes.Buffer
	logger := zerolog.New(&logs)
	credentials := application.NewCredentialStore(repository.NewInMemoryShopRepository(), enc, logger)
	integrations := application.NewIntegrationService(repository.NewInMemoryIntegrationRepository(), logger)

	cfg := &config.Config{
		SeedShop:        "foo.myshopify.com",
		SeedAccessToken: "shpat_seed",
		ShopifyScopes:   []string{"read_themes", "write_themes"},
	}
	require.NoError(t, seedShop(ctx, cfg, credentials, integrations, &out, logger))

	line := strings.TrimSpace(out.String())
	key := line[strings.LastIndex(line, " ")+1:]
	require.Len(t, key, 64)

	integration, err := integrations.GetIntegrationByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "foo.myshopify.com", integration.ShopDomain)

	assert.NotContains(t, logs.String(), key)
	assert.NotContains(t, logs.String(), "shpat_seed")
}
