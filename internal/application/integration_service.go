package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/ports"

	"github.com/rs/zerolog"
)

// IntegrationService issues and resolves session keys
type IntegrationService struct {
	integrationRepo ports.IntegrationRepository
	logger          zerolog.Logger
}

// NewIntegrationService creates a new integration service
func NewIntegrationService(
	integrationRepo ports.IntegrationRepository,
	logger zerolog.Logger,
) *IntegrationService {
	return &IntegrationService{
		integrationRepo: integrationRepo,
		logger:          logger,
	}
}

// CreateIntegration issues a new session key for an installed shop
func (s *IntegrationService) CreateIntegration(ctx context.Context, shopDomain string) (*domain.Integration, error) {
	// Generate unique integration key (32 bytes = 64 hex characters)
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, fmt.Errorf("failed to generate integration key: %w", err)
	}

	integration := &domain.Integration{
		Key:        hex.EncodeToString(keyBytes),
		ShopDomain: shopDomain,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.integrationRepo.Create(ctx, integration); err != nil {
		s.logger.Error().Err(err).Msg("Failed to create integration")
		return nil, fmt.Errorf("failed to create integration: %w", err)
	}

	s.logger.Info().
		Str("shopDomain", shopDomain).
		Msg("Created new integration")

	return integration, nil
}

// GetIntegrationByKey resolves a session key, ErrUnauthorized if unknown
func (s *IntegrationService) GetIntegrationByKey(ctx context.Context, key string) (*domain.Integration, error) {
	if key == "" {
		return nil, domain.ErrUnauthorized
	}
	integration, err := s.integrationRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	if integration == nil {
		return nil, domain.ErrUnauthorized
	}
	return integration, nil
}

// RevokeShop invalidates every session of a shop
func (s *IntegrationService) RevokeShop(ctx context.Context, shopDomain string) error {
	if err := s.integrationRepo.DeleteByShop(ctx, shopDomain); err != nil {
		return fmt.Errorf("failed to delete integrations: %w", err)
	}
	s.logger.Info().Str("shopDomain", shopDomain).Msg("Deleted integrations")
	return nil
}
