package device

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Device is a registered NFC reader unit. Token is the literal bearer
// credential the firmware sends; it is stored plaintext and returned to the
// admin exactly once, at creation time.
type Device struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Token       string     `json:"token,omitempty"`
	LastSeen    *time.Time `json:"lastSeen"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ErrNotFound is returned when no device matches.
var ErrNotFound = errors.New("device not found")

// ErrNoBearer is returned for an absent or malformed Authorization header.
var ErrNoBearer = errors.New("missing bearer token")

// NewToken mints a 64-char hex credential (32 bytes of entropy).
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate device token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>" value.
func ParseBearer(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrNoBearer
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	if token == "" {
		return "", ErrNoBearer
	}
	return token, nil
}
