package api

import (
	"io"
	"net/http"

	"theme-images-manager/internal/domain"
)

const maxWebhookBody = 1 << 20

// handleWebhook verifies and dispatches a Shopify webhook delivery
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		s.logger.Warn().Msg("Missing X-Shopify-Topic header")
		http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read webhook payload")
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := s.verifier.Verify(r.Header, payload); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("Webhook signature verification failed")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event := &domain.WebhookEvent{
		Topic:    topic,
		Shop:     r.Header.Get("X-Shopify-Shop-Domain"),
		Payload:  payload,
		Verified: true,
	}

	if err := s.dispatcher.Dispatch(r.Context(), event); err != nil {
		s.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("shop", event.Shop).
			Msg("Failed to dispatch webhook event")

		// Return 500 to trigger Shopify retry
		http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
