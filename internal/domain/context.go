package domain

import "context"

type contextKey string

const shopDomainKey contextKey = "shopDomain"

// WithShopDomain stores the resolved tenant on the context
func WithShopDomain(ctx context.Context, shop string) context.Context {
	return context.WithValue(ctx, shopDomainKey, shop)
}

// GetShopDomainFromContext returns the tenant set by the session middleware
func GetShopDomainFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(shopDomainKey).(string); ok {
		return v
	}
	return ""
}
