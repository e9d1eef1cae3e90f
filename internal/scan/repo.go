package scan

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository implements Store on Postgres. The upserts lean on the unique
// (subject_id, date) index: INSERT ... ON CONFLICT DO UPDATE is a single
// atomic statement, so two concurrent scans of the same subject cannot create
// two rows or clobber a just-set ordered_at.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// AppendLog writes a new attendance log row.
func (r *Repository) AppendLog(ctx context.Context, entry LogEntry) (LogEntry, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_logs (id, subject_id, subject_name, group_label, ts, device_ip, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.SubjectID, entry.SubjectName, entry.GroupLabel, entry.Timestamp, entry.DeviceIP, entry.Status)
	if err != nil {
		return LogEntry{}, err
	}
	return entry, nil
}

const recordColumns = `id, subject_id, subject_name, group_label, date, ordered_at, taken_at, status, device_ip, updated_at`

// UpsertOrder is the pre-cutoff transition. On an existing row only the
// device ip refreshes; ordered_at is stamped once and never overwritten.
func (r *Repository) UpsertOrder(ctx context.Context, rec DailyRecord) (DailyRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO daily_records (id, subject_id, subject_name, group_label, date, ordered_at, status, device_ip)
		VALUES ($1, $2, $3, $4, $5, $6, 'ordered', $7)
		ON CONFLICT (subject_id, date) DO UPDATE SET
			device_ip  = EXCLUDED.device_ip,
			ordered_at = COALESCE(daily_records.ordered_at, EXCLUDED.ordered_at),
			status     = CASE WHEN daily_records.ordered_at IS NULL THEN 'ordered' ELSE daily_records.status END,
			updated_at = NOW()
		RETURNING `+recordColumns,
		rec.ID, rec.SubjectID, rec.SubjectName, rec.GroupLabel, rec.Date, rec.OrderedAt, rec.DeviceIP)
	return scanRecord(row)
}

// UpsertCollection is the post-cutoff transition. taken_at re-stamps on every
// scan (last-write-wins); a late first scan inserts with ordered_at NULL.
func (r *Repository) UpsertCollection(ctx context.Context, rec DailyRecord) (DailyRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO daily_records (id, subject_id, subject_name, group_label, date, taken_at, status, device_ip)
		VALUES ($1, $2, $3, $4, $5, $6, 'taken', $7)
		ON CONFLICT (subject_id, date) DO UPDATE SET
			taken_at   = EXCLUDED.taken_at,
			status     = 'taken',
			device_ip  = EXCLUDED.device_ip,
			updated_at = NOW()
		RETURNING `+recordColumns,
		rec.ID, rec.SubjectID, rec.SubjectName, rec.GroupLabel, rec.Date, rec.TakenAt, rec.DeviceIP)
	return scanRecord(row)
}

func scanRecord(row *sql.Row) (DailyRecord, error) {
	var rec DailyRecord
	err := row.Scan(&rec.ID, &rec.SubjectID, &rec.SubjectName, &rec.GroupLabel, &rec.Date,
		&rec.OrderedAt, &rec.TakenAt, &rec.Status, &rec.DeviceIP, &rec.UpdatedAt)
	if err != nil {
		return DailyRecord{}, err
	}
	return rec, nil
}

// ListLogs returns attendance log rows newest first. The date filter matches
// timestamps within that calendar day in server-local time.
func (r *Repository) ListLogs(ctx context.Context, f Filter) ([]LogEntry, int, error) {
	where, args := "", []any{}
	clauses := []string{}
	if f.SubjectID != "" {
		clauses = append(clauses, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, f.SubjectID)
	}
	if f.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", f.Date, time.Local)
		if err == nil {
			clauses = append(clauses, fmt.Sprintf("ts >= $%d", len(args)+1))
			args = append(args, day)
			clauses = append(clauses, fmt.Sprintf("ts <= $%d", len(args)+1))
			args = append(args, day.Add(24*time.Hour-time.Nanosecond))
		}
	}
	for i, c := range clauses {
		if i == 0 {
			where = " WHERE " + c
		} else {
			where += " AND " + c
		}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, subject_id, subject_name, group_label, ts, device_ip, status
		FROM attendance_logs%s
		ORDER BY ts DESC LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	res := []LogEntry{}
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.SubjectName, &e.GroupLabel, &e.Timestamp, &e.DeviceIP, &e.Status); err != nil {
			return nil, 0, err
		}
		res = append(res, e)
	}
	return res, total, rows.Err()
}

// ListRecords returns daily records newest first. The date filter is an exact
// match on the stored day string.
func (r *Repository) ListRecords(ctx context.Context, f Filter) ([]DailyRecord, int, error) {
	where, args := "", []any{}
	clauses := []string{}
	if f.SubjectID != "" {
		clauses = append(clauses, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, f.SubjectID)
	}
	if f.Date != "" {
		clauses = append(clauses, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, f.Date)
	}
	for i, c := range clauses {
		if i == 0 {
			where = " WHERE " + c
		} else {
			where += " AND " + c
		}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM daily_records%s
		ORDER BY date DESC, updated_at DESC LIMIT $%d OFFSET $%d
	`, recordColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	res := []DailyRecord{}
	for rows.Next() {
		var rec DailyRecord
		if err := rows.Scan(&rec.ID, &rec.SubjectID, &rec.SubjectName, &rec.GroupLabel, &rec.Date,
			&rec.OrderedAt, &rec.TakenAt, &rec.Status, &rec.DeviceIP, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		res = append(res, rec)
	}
	return res, total, rows.Err()
}

// MonthlySummary aggregates order/taken counts per subject over an inclusive
// date-string range. COUNT(col) skips NULLs, so a record only counts toward
// the column that was actually stamped.
func (r *Repository) MonthlySummary(ctx context.Context, fromDate, toDate string) ([]SubjectSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subject_id, MAX(subject_name), COUNT(ordered_at), COUNT(taken_at)
		FROM daily_records
		WHERE date >= $1 AND date <= $2
		GROUP BY subject_id
		ORDER BY subject_id
	`, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []SubjectSummary{}
	for rows.Next() {
		var s SubjectSummary
		if err := rows.Scan(&s.SubjectID, &s.SubjectName, &s.Orders, &s.Taken); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// CountLogsBetween counts attendance log rows in a time window.
func (r *Repository) CountLogsBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_logs WHERE ts >= $1 AND ts <= $2
	`, from, to).Scan(&n)
	return n, err
}

// DistinctSubjectsBetween counts distinct subjects logged in a time window.
func (r *Repository) DistinctSubjectsBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT subject_id) FROM attendance_logs WHERE ts >= $1 AND ts <= $2
	`, from, to).Scan(&n)
	return n, err
}
