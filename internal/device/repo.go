package device

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists devices in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create registers a device with a freshly minted token. The returned Device
// carries the plaintext token; list and lookup calls never do.
func (r *Repository) Create(ctx context.Context, name, description string) (Device, error) {
	token, err := NewToken()
	if err != nil {
		return Device{}, err
	}
	d := Device{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Token:       token,
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO devices (id, name, description, token)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, d.ID, d.Name, d.Description, d.Token)
	if err := row.Scan(&d.CreatedAt); err != nil {
		return Device{}, err
	}
	return d, nil
}

// List returns all devices, newest first, without tokens.
func (r *Repository) List(ctx context.Context) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, last_seen, created_at
		FROM devices
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.LastSeen, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// ByToken looks a device up by exact token match.
func (r *Repository) ByToken(ctx context.Context, token string) (*Device, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, last_seen, created_at
		FROM devices WHERE token = $1
	`, token)
	var d Device
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.LastSeen, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Delete hard-deletes a device, revoking its token immediately.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastSeen stamps last_seen to now. Called by the worker; failures are
// the caller's problem to swallow.
func (r *Repository) TouchLastSeen(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE devices SET last_seen = $2, updated_at = NOW() WHERE id = $1
	`, id, time.Now().UTC())
	return err
}
