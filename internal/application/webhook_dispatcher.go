package application

import (
	"context"
	"errors"
	"fmt"

	"theme-images-manager/internal/domain"

	"github.com/rs/zerolog"
)

// WebhookHandler processes one kind of webhook topic
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes verified webhook events to their handlers
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates an empty dispatcher
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler
func (d *WebhookDispatcher) RegisterHandler(h WebhookHandler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch runs every handler accepting the event's topic. Unverified events
// are refused; topics nobody handles are acknowledged and dropped.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	if !event.Verified {
		return fmt.Errorf("refusing unverified webhook for topic %s", event.Topic)
	}

	var errs []error
	handled := false
	for _, h := range d.handlers {
		if !h.CanHandle(event.Topic) {
			continue
		}
		handled = true
		if err := h.Handle(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if !handled {
		d.logger.Debug().Str("topic", event.Topic).Str("shop", event.Shop).Msg("No handler for webhook topic")
	}
	return errors.Join(errs...)
}
