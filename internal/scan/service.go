package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"canteen/internal/directory"
	"canteen/internal/settings"
)

// Store is the persistence contract the resolvers run against. UpsertOrder and
// UpsertCollection must be single atomic conditional writes keyed on
// (subject_id, date) — never a read followed by a write — so concurrent scans
// of the same subject serialize instead of racing.
type Store interface {
	AppendLog(ctx context.Context, entry LogEntry) (LogEntry, error)
	UpsertOrder(ctx context.Context, rec DailyRecord) (DailyRecord, error)
	UpsertCollection(ctx context.Context, rec DailyRecord) (DailyRecord, error)
	ListLogs(ctx context.Context, f Filter) ([]LogEntry, int, error)
	ListRecords(ctx context.Context, f Filter) ([]DailyRecord, int, error)
	MonthlySummary(ctx context.Context, fromDate, toDate string) ([]SubjectSummary, error)
	CountLogsBetween(ctx context.Context, from, to time.Time) (int, error)
	DistinctSubjectsBetween(ctx context.Context, from, to time.Time) (int, error)
}

// SubjectSource resolves a scanned card id to a registered subject.
type SubjectSource interface {
	ByExternalID(ctx context.Context, externalID string) (*directory.Subject, error)
}

// CutoffSource yields the daily order cutoff as HH:MM.
type CutoffSource interface {
	OrderCutoff(ctx context.Context) (string, error)
}

// Service coordinates scan resolution and dashboard reads.
type Service struct {
	store    Store
	subjects SubjectSource
	cutoffs  CutoffSource
	now      func() time.Time
}

// NewService creates a service backed by a store, the subject directory and
// the cutoff setting.
func NewService(store Store, subjects SubjectSource, cutoffs CutoffSource) *Service {
	return &Service{store: store, subjects: subjects, cutoffs: cutoffs, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) subject(ctx context.Context, externalID string) (*directory.Subject, error) {
	sub, err := s.subjects.ByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return sub, nil
}

// RecordAttendance appends a log row for the scanned subject. Repeated scans
// the same day each produce a new row; every tap is an event.
func (s *Service) RecordAttendance(ctx context.Context, externalID, sourceIP string) (LogEntry, error) {
	sub, err := s.subject(ctx, externalID)
	if err != nil {
		return LogEntry{}, err
	}
	return s.store.AppendLog(ctx, LogEntry{
		ID:          uuid.NewString(),
		SubjectID:   sub.ExternalID,
		SubjectName: sub.Name,
		GroupLabel:  sub.GroupLabel,
		Timestamp:   s.now(),
		DeviceIP:    sourceIP,
		Status:      StatusPresent,
	})
}

// RecordCanteen resolves a scan against the daily cutoff. At or before the
// cutoff instant the scan orders; after it, it collects. Both branches are a
// single atomic upsert.
func (s *Service) RecordCanteen(ctx context.Context, externalID, sourceIP string) (CanteenResult, error) {
	sub, err := s.subject(ctx, externalID)
	if err != nil {
		return CanteenResult{}, err
	}

	cutoffStr, err := s.cutoffs.OrderCutoff(ctx)
	if err != nil {
		return CanteenResult{}, fmt.Errorf("read cutoff: %w", err)
	}
	if settings.ValidateCutoff(cutoffStr) != nil {
		cutoffStr = settings.DefaultCutoff
	}

	now := s.now()
	cutoff := settings.CutoffInstant(now, cutoffStr)

	rec := DailyRecord{
		ID:          uuid.NewString(),
		SubjectID:   sub.ExternalID,
		SubjectName: sub.Name,
		GroupLabel:  sub.GroupLabel,
		Date:        now.Format("2006-01-02"),
		DeviceIP:    sourceIP,
	}

	if !now.After(cutoff) {
		rec.OrderedAt = &now
		rec.Status = StatusOrdered
		stored, err := s.store.UpsertOrder(ctx, rec)
		if err != nil {
			return CanteenResult{}, err
		}
		return CanteenResult{Status: StatusOrdered, RecordID: stored.ID}, nil
	}

	rec.TakenAt = &now
	rec.Status = StatusTaken
	stored, err := s.store.UpsertCollection(ctx, rec)
	if err != nil {
		return CanteenResult{}, err
	}
	return CanteenResult{Status: StatusTaken, RecordID: stored.ID}, nil
}

// Logs lists attendance log entries, newest first, with clamped pagination.
func (s *Service) Logs(ctx context.Context, f Filter) ([]LogEntry, int, error) {
	return s.store.ListLogs(ctx, f.Normalize())
}

// Records lists daily records, newest first, with clamped pagination.
func (s *Service) Records(ctx context.Context, f Filter) ([]DailyRecord, int, error) {
	return s.store.ListRecords(ctx, f.Normalize())
}

// MonthlySummary aggregates per-subject order/taken counts for a month.
func (s *Service) MonthlySummary(ctx context.Context, year int, month time.Month) ([]SubjectSummary, error) {
	from := fmt.Sprintf("%04d-%02d-01", year, int(month))
	to := fmt.Sprintf("%04d-%02d-31", year, int(month))
	return s.store.MonthlySummary(ctx, from, to)
}

// TodayCounts returns the number of scans logged today and the number of
// distinct subjects seen, for the dashboard stats.
func (s *Service) TodayCounts(ctx context.Context) (scans, present int, err error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)
	scans, err = s.store.CountLogsBetween(ctx, start, end)
	if err != nil {
		return 0, 0, err
	}
	present, err = s.store.DistinctSubjectsBetween(ctx, start, end)
	if err != nil {
		return 0, 0, err
	}
	return scans, present, nil
}
