package webhook_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"theme-images-manager/internal/application"
	"theme-images-manager/internal/domain"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler forgets a shop once the merchant removes the app
type AppUninstalledHandler struct {
	logger       zerolog.Logger
	credentials  *application.CredentialStore
	integrations *application.IntegrationService
	assets       *application.AssetService
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(
	logger zerolog.Logger,
	credentials *application.CredentialStore,
	integrations *application.IntegrationService,
	assets *application.AssetService,
) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger:       logger,
		credentials:  credentials,
		integrations: integrations,
		assets:       assets,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle revokes the shop's token and every session bound to it
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.Shop
	if shopDomain == "" {
		var shopData struct {
			Domain          string `json:"domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(event.Payload, &shopData); err != nil {
			return fmt.Errorf("failed to parse app uninstalled webhook payload: %w", err)
		}
		shopDomain = shopData.MyshopifyDomain
		if shopDomain == "" {
			shopDomain = shopData.Domain
		}
	}
	if shopDomain == "" {
		return fmt.Errorf("app uninstalled webhook has no shop")
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", shopDomain).
		Msg("Processing app uninstalled webhook event")

	err := errors.Join(
		h.credentials.Revoke(ctx, shopDomain),
		h.integrations.RevokeShop(ctx, shopDomain),
	)
	h.assets.InvalidateTheme(shopDomain)
	if err != nil {
		return err
	}

	h.logger.Info().Str("shop", shopDomain).Msg("App uninstalled - cleanup completed")
	return nil
}
