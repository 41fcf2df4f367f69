package shopify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Shopify's REST leaky bucket: 40 requests, drained at 2 per second, per shop
const (
	defaultRatePerSecond = 2
	defaultBurst         = 40
)

// RateLimiter keeps one token bucket per shop
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	logger   zerolog.Logger
}

// NewRateLimiter creates a limiter matching Shopify's default REST limits
func NewRateLimiter(logger zerolog.Logger) *RateLimiter {
	return NewRateLimiterWithLimits(rate.Limit(defaultRatePerSecond), defaultBurst, logger)
}

// NewRateLimiterWithLimits creates a limiter with explicit limits
func NewRateLimiterWithLimits(limit rate.Limit, burst int, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
		logger:   logger,
	}
}

// Wait blocks until a request to shop is allowed or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context, shop string) error {
	limiter := rl.limiterFor(shop)
	if !limiter.Allow() {
		rl.logger.Debug().Str("shop", shop).Msg("Shopify rate limit reached, waiting")
		return limiter.Wait(ctx)
	}
	return nil
}

func (rl *RateLimiter) limiterFor(shop string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[shop]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[shop] = limiter
	}
	return limiter
}
