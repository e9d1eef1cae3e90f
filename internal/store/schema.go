package store

import (
	"context"
	"database/sql"
)

// CreateSchema creates all tables if they do not exist yet. The unique index
// on daily_records (subject_id, date) is the backstop for the one-record-per-day
// invariant; the upserts in the scan repository rely on it.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS devices (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			token       TEXT NOT NULL UNIQUE,
			last_seen   TIMESTAMPTZ,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS subjects (
			id          TEXT PRIMARY KEY,
			external_id VARCHAR(16) NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL DEFAULT '',
			group_label TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS settings (
			id           INT PRIMARY KEY CHECK (id = 1),
			order_cutoff TEXT NOT NULL DEFAULT '10:00',
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS daily_records (
			id           TEXT PRIMARY KEY,
			subject_id   TEXT NOT NULL,
			subject_name TEXT NOT NULL DEFAULT '',
			group_label  TEXT NOT NULL DEFAULT '',
			date         TEXT NOT NULL,
			ordered_at   TIMESTAMPTZ,
			taken_at     TIMESTAMPTZ,
			status       TEXT NOT NULL CHECK (status IN ('ordered', 'taken')),
			device_ip    TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (subject_id, date)
		);

		CREATE INDEX IF NOT EXISTS idx_daily_records_date ON daily_records(date);

		CREATE TABLE IF NOT EXISTS attendance_logs (
			id           TEXT PRIMARY KEY,
			subject_id   TEXT NOT NULL,
			subject_name TEXT NOT NULL DEFAULT '',
			group_label  TEXT NOT NULL DEFAULT '',
			ts           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			device_ip    TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'present'
		);

		CREATE INDEX IF NOT EXISTS idx_attendance_logs_ts ON attendance_logs(ts);
		CREATE INDEX IF NOT EXISTS idx_attendance_logs_subject ON attendance_logs(subject_id);
	`)
	return err
}
