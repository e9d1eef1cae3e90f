package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists subjects in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a subject. A duplicate external_id maps to ErrDuplicate.
func (r *Repository) Create(ctx context.Context, s Subject) (Subject, error) {
	if err := s.Validate(); err != nil {
		return Subject{}, err
	}
	s.ID = uuid.NewString()
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subjects (id, external_id, name, email, group_label)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, s.ID, s.ExternalID, s.Name, s.Email, s.GroupLabel)
	if err := row.Scan(&s.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return Subject{}, ErrDuplicate
		}
		return Subject{}, err
	}
	return s, nil
}

// List returns all subjects, newest first.
func (r *Repository) List(ctx context.Context) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, external_id, name, email, group_label, created_at
		FROM subjects
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.ExternalID, &s.Name, &s.Email, &s.GroupLabel, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// Get returns a subject by primary id.
func (r *Repository) Get(ctx context.Context, id string) (Subject, error) {
	return r.one(ctx, `WHERE id = $1`, id)
}

// ByExternalID returns the subject matching a scanned card id, or ErrNotFound.
func (r *Repository) ByExternalID(ctx context.Context, externalID string) (*Subject, error) {
	s, err := r.one(ctx, `WHERE external_id = $1`, externalID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) one(ctx context.Context, where string, arg any) (Subject, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, external_id, name, email, group_label, created_at
		FROM subjects `+where, arg)
	var s Subject
	if err := row.Scan(&s.ID, &s.ExternalID, &s.Name, &s.Email, &s.GroupLabel, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, ErrNotFound
		}
		return Subject{}, err
	}
	return s, nil
}

// Update changes the mutable fields. external_id is immutable and deliberately
// absent from the statement.
func (r *Repository) Update(ctx context.Context, id, name, email, groupLabel string) (Subject, error) {
	if name == "" {
		return Subject{}, ErrInvalid
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE subjects
		SET name = $2, email = $3, group_label = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, external_id, name, email, group_label, created_at
	`, id, name, email, groupLabel)
	var s Subject
	if err := row.Scan(&s.ID, &s.ExternalID, &s.Name, &s.Email, &s.GroupLabel, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, ErrNotFound
		}
		return Subject{}, err
	}
	return s, nil
}

// Delete removes a subject. Historical records keep their snapshots.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
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

// Count returns the registry size, used by the dashboard stats.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&n)
	return n, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
