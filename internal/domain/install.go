package domain

import "time"

// InstallState is the nonce issued for one install round trip
type InstallState struct {
	State     string    `json:"state"`
	Shop      string    `json:"shop"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandshakeState tracks a single install/callback attempt
type HandshakeState string

const (
	HandshakeAwaitingCallback HandshakeState = "awaiting_callback"
	HandshakeVerified         HandshakeState = "verified"
	HandshakeTokenAcquired    HandshakeState = "token_acquired"
	HandshakeRejected         HandshakeState = "rejected"
)
