package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrShopNotInstalled is returned when no usable access token exists for a shop
	ErrShopNotInstalled = errors.New("shop is not installed")

	// ErrUnauthorized is returned when a gateway request carries no valid session
	ErrUnauthorized = errors.New("valid session required")
)

// MissingParameterError reports required request parameters that were absent
type MissingParameterError struct {
	Params []string
}

func (e *MissingParameterError) Error() string {
	return "missing required parameters: " + strings.Join(e.Params, ", ")
}

// InvalidShopError reports a shop parameter that is not a permitted shop hostname
type InvalidShopError struct {
	Shop string
}

func (e *InvalidShopError) Error() string {
	return fmt.Sprintf("invalid shop domain %q", e.Shop)
}

// StateMismatchError is returned when the callback state does not match the issued nonce
type StateMismatchError struct {
	Reason string
}

func (e *StateMismatchError) Error() string {
	if e.Reason == "" {
		return "request origin cannot be verified"
	}
	return "request origin cannot be verified: " + e.Reason
}

// HmacValidationError is returned when the callback signature does not verify
type HmacValidationError struct{}

func (e *HmacValidationError) Error() string {
	return "hmac validation failed"
}

// TokenExchangeError is returned when the authorization code could not be
// exchanged for an access token. It never carries request credentials.
type TokenExchangeError struct {
	Shop   string
	Status int
	Err    error
}

func (e *TokenExchangeError) Error() string {
	msg := "failed to exchange token for " + e.Shop
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// RemoteAPIError wraps a failed call to the shop's Admin API
type RemoteAPIError struct {
	Op     string
	Status int
	Err    error
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("shopify %s failed: %v", e.Op, e.Err)
}

func (e *RemoteAPIError) Unwrap() error { return e.Err }

// FileReadError is returned when an uploaded temp file cannot be read
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read uploaded file %q: %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether the Admin API rejected the access token
func IsUnauthorized(err error) bool {
	var remote *RemoteAPIError
	return errors.As(err, &remote) && remote.Status == http.StatusUnauthorized
}
