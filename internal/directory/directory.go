// Package directory is the subject registry: the employees or students whose
// externalId is written to a physical NFC card. Historical scan rows keep a
// denormalized name/group snapshot, so deleting a subject never cascades.
package directory

import (
	"errors"
	"time"
)

// Subject is an employee or student. ExternalID is immutable once set — it is
// burned onto a card.
type Subject struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	GroupLabel string    `json:"groupLabel"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MaxExternalIDLen bounds what fits on a card.
const MaxExternalIDLen = 16

var (
	ErrNotFound  = errors.New("subject not found")
	ErrDuplicate = errors.New("external id already exists")
	ErrInvalid   = errors.New("invalid subject")
)

// Validate checks the fields required at creation time.
func (s Subject) Validate() error {
	if s.ExternalID == "" || s.Name == "" {
		return ErrInvalid
	}
	if len(s.ExternalID) > MaxExternalIDLen {
		return ErrInvalid
	}
	return nil
}
