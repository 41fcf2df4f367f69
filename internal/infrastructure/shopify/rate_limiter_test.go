package shopify

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimiter_PerShopBuckets(t *testing.T) {
	rl := NewRateLimiterWithLimits(rate.Every(time.Hour), 1, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx, "a.myshopify.com"))
	require.NoError(t, rl.Wait(ctx, "b.myshopify.com"))

	// a's single token is spent; the wait outlives the context
	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, "a.myshopify.com"))
}
