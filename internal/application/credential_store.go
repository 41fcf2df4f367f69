package application

import (
	"context"
	"fmt"
	"time"

	"theme-images-manager/internal/domain"
	"theme-images-manager/internal/ports"

	"github.com/rs/zerolog"
)

// CredentialStore maps shops to access tokens. Tokens are encrypted before
// they reach the repository and decrypted only for the request that uses them.
type CredentialStore struct {
	repository    ports.ShopRepository
	encryptionSvc ports.EncryptionService
	logger        zerolog.Logger
}

// NewCredentialStore creates a new credential store
func NewCredentialStore(repository ports.ShopRepository, encryptionSvc ports.EncryptionService, logger zerolog.Logger) *CredentialStore {
	return &CredentialStore{
		repository:    repository,
		encryptionSvc: encryptionSvc,
		logger:        logger,
	}
}

// Save encrypts and stores the token for a shop, replacing any previous one
func (c *CredentialStore) Save(ctx context.Context, shopDomain, accessToken, scope string) error {
	if accessToken == "" {
		return fmt.Errorf("token cannot be empty")
	}
	encryptedToken, err := c.encryptionSvc.Encrypt(accessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	existing, err := c.repository.GetShop(ctx, shopDomain)
	if err != nil {
		return err
	}
	shop := &domain.Shop{
		Domain:      shopDomain,
		AccessToken: encryptedToken,
		Scope:       scope,
		UpdatedAt:   time.Now(),
	}
	if existing != nil {
		shop.InstalledAt = existing.InstalledAt
	}
	if shop.InstalledAt.IsZero() {
		shop.InstalledAt = shop.UpdatedAt
	}

	if err := c.repository.SaveShop(ctx, shop); err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}
	c.logger.Info().Str("shop", shopDomain).Str("scope", scope).Msg("Stored access token")
	return nil
}

// AccessToken returns the decrypted token, or ErrShopNotInstalled
func (c *CredentialStore) AccessToken(ctx context.Context, shopDomain string) (string, error) {
	shop, err := c.repository.GetShop(ctx, shopDomain)
	if err != nil {
		return "", fmt.Errorf("failed to get shop: %w", err)
	}
	if shop == nil || shop.AccessToken == "" {
		return "", domain.ErrShopNotInstalled
	}

	token, err := c.encryptionSvc.Decrypt(shop.AccessToken)
	if err != nil {
		c.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to decrypt access token")
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return token, nil
}

// Revoke forgets a shop's token
func (c *CredentialStore) Revoke(ctx context.Context, shopDomain string) error {
	if err := c.repository.DeleteShop(ctx, shopDomain); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	c.logger.Info().Str("shop", shopDomain).Msg("Revoked access token")
	return nil
}
