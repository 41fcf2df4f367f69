package webhook_handlers

import (
	"context"

	"theme-images-manager/internal/application"
	"theme-images-manager/internal/domain"

	"github.com/rs/zerolog"
)

// ThemePublishHandler drops the cached main theme when another theme goes live
type ThemePublishHandler struct {
	logger zerolog.Logger
	assets *application.AssetService
}

func NewThemePublishHandler(logger zerolog.Logger, assets *application.AssetService) *ThemePublishHandler {
	return &ThemePublishHandler{logger: logger, assets: assets}
}

func (h *ThemePublishHandler) CanHandle(topic string) bool {
	return topic == "themes/publish"
}

func (h *ThemePublishHandler) Handle(_ context.Context, event *domain.WebhookEvent) error {
	h.assets.InvalidateTheme(event.Shop)
	h.logger.Info().Str("shop", event.Shop).Msg("Main theme changed")
	return nil
}
