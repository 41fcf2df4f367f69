package statestore

import (
	"context"
	"testing"
	"time"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.StateStore = (*RedisStateStore)(nil)
	_ ports.StateStore = (*MemoryStateStore)(nil)
)

func TestRedisStateStore_SingleUse(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedisStateStore(ctx, "redis://"+s.Addr())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, &domain.InstallState{State: "abc123", Shop: "foo.myshopify.com"}, time.Minute))
	assert.True(t, s.Exists("oauth_state:abc123"))

	got, err := store.Consume(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "foo.myshopify.com", got.Shop)

	again, err := store.Consume(ctx, "abc123")
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestRedisStateStore_Expiry(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedisStateStore(ctx, "redis://"+s.Addr())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, &domain.InstallState{State: "old", Shop: "foo.myshopify.com"}, time.Minute))
	s.FastForward(2 * time.Minute)

	got, err := store.Consume(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewRedisStateStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisStateStore(ctx, "redis://localhost:59999")
	assert.Error(t, err)

	_, err = NewRedisStateStore(ctx, "not a url")
	assert.Error(t, err)
}

func TestMemoryStateStore(t *testing.T) {
	store := NewMemoryStateStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.InstallState{State: "a", Shop: "foo.myshopify.com"}, time.Minute))
	require.NoError(t, store.Save(ctx, &domain.InstallState{State: "b", Shop: "foo.myshopify.com"}, time.Minute))

	got, err := store.Consume(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "foo.myshopify.com", got.Shop)

	got, err = store.Consume(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	now = now.Add(2 * time.Minute)
	got, err = store.Consume(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, got)
}
