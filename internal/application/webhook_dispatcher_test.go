package application

import (
	"context"
	"errors"
	"testing"

	"theme-images-manager/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type topicHandler struct {
	topic string
	err   error
	calls int
}

func (h *topicHandler) CanHandle(topic string) bool { return topic == h.topic }

func (h *topicHandler) Handle(context.Context, *domain.WebhookEvent) error {
	h.calls++
	return h.err
}

func TestWebhookDispatcher(t *testing.T) {
	uninstall := &topicHandler{topic: "app/uninstalled"}
	failing := &topicHandler{topic: "themes/publish", err: errors.New("boom")}

	d := NewWebhookDispatcher(zerolog.Nop())
	d.RegisterHandler(uninstall)
	d.RegisterHandler(failing)
	ctx := context.Background()

	assert.NoError(t, d.Dispatch(ctx, &domain.WebhookEvent{Topic: "app/uninstalled", Verified: true}))
	assert.Equal(t, 1, uninstall.calls)

	assert.Error(t, d.Dispatch(ctx, &domain.WebhookEvent{Topic: "themes/publish", Verified: true}))
	assert.NoError(t, d.Dispatch(ctx, &domain.WebhookEvent{Topic: "orders/create", Verified: true}))

	assert.Error(t, d.Dispatch(ctx, &domain.WebhookEvent{Topic: "app/uninstalled"}))
	assert.Equal(t, 1, uninstall.calls)
}
