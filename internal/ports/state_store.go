package ports

import (
	"context"
	"time"

	"theme-images-manager/internal/domain"
)

// StateStore keeps install nonces shared between instances.
// Consume is single-use: a second call for the same state returns nil, nil.
type StateStore interface {
	Save(ctx context.Context, state *domain.InstallState, ttl time.Duration) error
	Consume(ctx context.Context, state string) (*domain.InstallState, error)
}
