package shopify

import (
	"errors"
	"net/http"
	"strings"

	"theme-images-manager/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// remoteError wraps a go-shopify failure with the HTTP status when one is known
func remoteError(op string, err error) error {
	return &domain.RemoteAPIError{Op: op, Status: statusOf(err), Err: err}
}

// statusOf extracts the HTTP status from a go-shopify error.
// go-shopify does not always surface a typed error, so auth failures are
// also recognised by message.
func statusOf(err error) int {
	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return http.StatusTooManyRequests
	}
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) && respErr.Status != 0 {
		return respErr.Status
	}
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "invalid api key or access token") || strings.Contains(errStr, "unauthorized") {
		return http.StatusUnauthorized
	}
	return 0
}
