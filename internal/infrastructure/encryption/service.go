package encryption

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"theme-images-manager/internal/ports"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidKey is returned when ENCRYPTION_KEY does not decode to 32 bytes
var ErrInvalidKey = errors.New("encryption key must be 32 bytes (raw, 64 hex chars or base64)")

// Service seals strings with XChaCha20-Poly1305. Ciphertexts are
// base64(nonce || sealed) so they can be stored as plain strings.
type Service struct {
	key []byte
}

// NewService parses the key and returns a ready service
func NewService(key string) (ports.EncryptionService, error) {
	raw, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	return &Service{key: raw}, nil
}

func parseKey(key string) ([]byte, error) {
	if len(key) == 2*chacha20poly1305.KeySize {
		if b, err := hex.DecodeString(key); err == nil {
			return b, nil
		}
	}
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == chacha20poly1305.KeySize {
		return b, nil
	}
	if len(key) == chacha20poly1305.KeySize {
		return []byte(key), nil
	}
	return nil, ErrInvalidKey
}

// Encrypt seals plaintext with a fresh random nonce
func (s *Service) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt
func (s *Service) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}
