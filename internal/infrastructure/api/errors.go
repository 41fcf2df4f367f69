package api

import (
	"errors"
	"net/http"
	"strings"

	"theme-images-manager/internal/domain"

	"github.com/rs/zerolog"
)

// requestError is a malformed request detected by the web layer itself
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) error {
	return &requestError{status: http.StatusBadRequest, message: message}
}

// statusFor maps an error to the response status and a short public message
func statusFor(err error) (int, string) {
	var (
		reqErr   *requestError
		missing  *domain.MissingParameterError
		invalid  *domain.InvalidShopError
		mismatch *domain.StateMismatchError
		hmacErr  *domain.HmacValidationError
		exchange *domain.TokenExchangeError
		remote   *domain.RemoteAPIError
		readErr  *domain.FileReadError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.message
	case errors.As(err, &mismatch):
		return http.StatusForbidden, "Request origin cannot be verified"
	case errors.As(err, &missing):
		return http.StatusBadRequest, "Required parameters missing: " + strings.Join(missing.Params, ", ")
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "Invalid shop parameter"
	case errors.As(err, &hmacErr):
		return http.StatusBadRequest, "HMAC validation failed"
	case errors.As(err, &exchange):
		return http.StatusBadGateway, "Failed to complete installation"
	case errors.As(err, &remote):
		return http.StatusBadGateway, "Shopify request failed"
	case errors.Is(err, domain.ErrShopNotInstalled):
		return http.StatusUnauthorized, "Shop is not installed"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Valid session required"
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.As(err, &readErr):
		return http.StatusInternalServerError, "Failed to read uploaded file"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeError logs the cause and sends a short fixed message
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	status, message := statusFor(err)

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("Request failed")

	http.Error(w, message, status)
}
