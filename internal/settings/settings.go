// Package settings holds the singleton cutoff setting separating order scans
// from collection scans.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// DefaultCutoff applies when no settings row exists yet.
const DefaultCutoff = "10:00"

// ErrInvalidCutoff is returned for values that are not strict 24-hour HH:MM.
var ErrInvalidCutoff = errors.New("cutoff must be HH:MM (24-hour)")

// ValidateCutoff checks strict 24-hour HH:MM: two digits each side,
// hours 00-23, minutes 00-59.
func ValidateCutoff(v string) error {
	if len(v) != 5 || v[2] != ':' {
		return ErrInvalidCutoff
	}
	for _, i := range []int{0, 1, 3, 4} {
		if v[i] < '0' || v[i] > '9' {
			return ErrInvalidCutoff
		}
	}
	hour := int(v[0]-'0')*10 + int(v[1]-'0')
	minute := int(v[3]-'0')*10 + int(v[4]-'0')
	if hour > 23 || minute > 59 {
		return ErrInvalidCutoff
	}
	return nil
}

// CutoffInstant combines the calendar day of now with the HH:MM cutoff in
// now's location. The value must already be validated.
func CutoffInstant(now time.Time, cutoff string) time.Time {
	hour := int(cutoff[0]-'0')*10 + int(cutoff[1]-'0')
	minute := int(cutoff[3]-'0')*10 + int(cutoff[4]-'0')
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
}

// Store persists the singleton settings row in Postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates a store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// OrderCutoff returns the stored cutoff, or DefaultCutoff when unset.
func (s *Store) OrderCutoff(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT order_cutoff FROM settings WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultCutoff, nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// SetOrderCutoff validates and persists a new cutoff. Invalid input leaves
// stored state untouched.
func (s *Store) SetOrderCutoff(ctx context.Context, v string) error {
	if err := ValidateCutoff(v); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, order_cutoff) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET order_cutoff = EXCLUDED.order_cutoff, updated_at = NOW()
	`, v)
	return err
}
