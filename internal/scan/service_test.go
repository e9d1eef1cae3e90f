package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"canteen/internal/directory"
)

// fakeStore mirrors the atomic upsert semantics of the Postgres repository in
// memory so the state machine can be exercised without a database.
type fakeStore struct {
	logs       []LogEntry
	records    map[string]*DailyRecord
	lastFilter Filter
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*DailyRecord{}}
}

func key(subjectID, date string) string { return subjectID + "|" + date }

func (f *fakeStore) AppendLog(_ context.Context, entry LogEntry) (LogEntry, error) {
	f.logs = append(f.logs, entry)
	return entry, nil
}

func (f *fakeStore) UpsertOrder(_ context.Context, rec DailyRecord) (DailyRecord, error) {
	k := key(rec.SubjectID, rec.Date)
	if existing, ok := f.records[k]; ok {
		existing.DeviceIP = rec.DeviceIP
		if existing.OrderedAt == nil {
			existing.OrderedAt = rec.OrderedAt
			existing.Status = StatusOrdered
		}
		return *existing, nil
	}
	stored := rec
	f.records[k] = &stored
	return stored, nil
}

func (f *fakeStore) UpsertCollection(_ context.Context, rec DailyRecord) (DailyRecord, error) {
	k := key(rec.SubjectID, rec.Date)
	if existing, ok := f.records[k]; ok {
		existing.TakenAt = rec.TakenAt
		existing.Status = StatusTaken
		existing.DeviceIP = rec.DeviceIP
		return *existing, nil
	}
	stored := rec
	f.records[k] = &stored
	return stored, nil
}

func (f *fakeStore) ListLogs(_ context.Context, filter Filter) ([]LogEntry, int, error) {
	f.lastFilter = filter
	return f.logs, len(f.logs), nil
}

func (f *fakeStore) ListRecords(_ context.Context, filter Filter) ([]DailyRecord, int, error) {
	f.lastFilter = filter
	res := []DailyRecord{}
	for _, r := range f.records {
		res = append(res, *r)
	}
	return res, len(res), nil
}

func (f *fakeStore) MonthlySummary(context.Context, string, string) ([]SubjectSummary, error) {
	return nil, nil
}

func (f *fakeStore) CountLogsBetween(context.Context, time.Time, time.Time) (int, error) {
	return len(f.logs), nil
}

func (f *fakeStore) DistinctSubjectsBetween(context.Context, time.Time, time.Time) (int, error) {
	seen := map[string]bool{}
	for _, l := range f.logs {
		seen[l.SubjectID] = true
	}
	return len(seen), nil
}

type fakeSubjects map[string]directory.Subject

func (f fakeSubjects) ByExternalID(_ context.Context, externalID string) (*directory.Subject, error) {
	if s, ok := f[externalID]; ok {
		return &s, nil
	}
	return nil, directory.ErrNotFound
}

type fakeCutoff string

func (f fakeCutoff) OrderCutoff(context.Context) (string, error) { return string(f), nil }

func testService(store Store, cutoff string, now time.Time) *Service {
	subjects := fakeSubjects{
		"EMP001": {ID: "s1", ExternalID: "EMP001", Name: "Ada Lovelace", GroupLabel: "Engineering"},
	}
	svc := NewService(store, subjects, fakeCutoff(cutoff))
	svc.now = func() time.Time { return now }
	return svc
}

func at(h, m, sec int) time.Time {
	return time.Date(2026, time.March, 14, h, m, sec, 0, time.UTC)
}

func TestRecordCanteenUnknownSubject(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, "10:00", at(9, 0, 0))
	_, err := svc.RecordCanteen(context.Background(), "NOPE", "1.2.3.4")
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("err = %v, want ErrSubjectNotFound", err)
	}
	if len(store.records) != 0 {
		t.Error("no record should be written for an unknown subject")
	}
}

func TestRecordCanteenCutoffBranches(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{name: "one second before cutoff", now: at(9, 59, 59), want: StatusOrdered},
		{name: "exactly at cutoff", now: at(10, 0, 0), want: StatusOrdered},
		{name: "one second after cutoff", now: at(10, 0, 1), want: StatusTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := testService(store, "10:00", tt.now)
			res, err := svc.RecordCanteen(context.Background(), "EMP001", "1.2.3.4")
			if err != nil {
				t.Fatalf("RecordCanteen: %v", err)
			}
			if res.Status != tt.want {
				t.Errorf("status = %q, want %q", res.Status, tt.want)
			}
			if res.RecordID == "" {
				t.Error("record id missing")
			}
		})
	}
}

func TestRecordCanteenPreCutoffIdempotent(t *testing.T) {
	store := newFakeStore()
	first := at(8, 30, 0)
	svc := testService(store, "10:00", first)

	if _, err := svc.RecordCanteen(context.Background(), "EMP001", "10.0.0.1"); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	svc.now = func() time.Time { return at(9, 15, 0) }
	res, err := svc.RecordCanteen(context.Background(), "EMP001", "10.0.0.2")
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if res.Status != StatusOrdered {
		t.Errorf("status = %q, want ordered", res.Status)
	}
	if len(store.records) != 1 {
		t.Fatalf("record count = %d, want 1", len(store.records))
	}
	rec := store.records[key("EMP001", "2026-03-14")]
	if rec.OrderedAt == nil || !rec.OrderedAt.Equal(first) {
		t.Errorf("orderedAt = %v, want first scan time %v", rec.OrderedAt, first)
	}
	if rec.DeviceIP != "10.0.0.2" {
		t.Errorf("deviceIp = %q, want refreshed to 10.0.0.2", rec.DeviceIP)
	}
}

func TestRecordCanteenPostCutoffLastWriteWins(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, "10:00", at(12, 0, 0))

	if _, err := svc.RecordCanteen(context.Background(), "EMP001", "10.0.0.1"); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second := at(12, 45, 0)
	svc.now = func() time.Time { return second }
	res, err := svc.RecordCanteen(context.Background(), "EMP001", "10.0.0.1")
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if res.Status != StatusTaken {
		t.Errorf("status = %q, want taken", res.Status)
	}
	if len(store.records) != 1 {
		t.Fatalf("record count = %d, want 1", len(store.records))
	}
	rec := store.records[key("EMP001", "2026-03-14")]
	if rec.TakenAt == nil || !rec.TakenAt.Equal(second) {
		t.Errorf("takenAt = %v, want second scan time %v", rec.TakenAt, second)
	}
}

func TestRecordCanteenLateFirstScanHasNoOrder(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, "10:00", at(13, 0, 0))
	if _, err := svc.RecordCanteen(context.Background(), "EMP001", "10.0.0.1"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	rec := store.records[key("EMP001", "2026-03-14")]
	if rec.OrderedAt != nil {
		t.Errorf("orderedAt = %v, want nil for a late first scan", rec.OrderedAt)
	}
	if rec.Status != StatusTaken {
		t.Errorf("status = %q, want taken", rec.Status)
	}
}

func TestRecordCanteenOrderThenCollect(t *testing.T) {
	store := newFakeStore()
	orderTime := at(9, 0, 0)
	svc := testService(store, "10:00", orderTime)
	if _, err := svc.RecordCanteen(context.Background(), "EMP001", "10.0.0.1"); err != nil {
		t.Fatalf("order scan: %v", err)
	}
	collectTime := at(12, 0, 0)
	svc.now = func() time.Time { return collectTime }
	res, err := svc.RecordCanteen(context.Background(), "EMP001", "10.0.0.1")
	if err != nil {
		t.Fatalf("collect scan: %v", err)
	}
	if res.Status != StatusTaken {
		t.Errorf("status = %q, want taken", res.Status)
	}
	rec := store.records[key("EMP001", "2026-03-14")]
	if rec.OrderedAt == nil || !rec.OrderedAt.Equal(orderTime) {
		t.Errorf("orderedAt = %v, want preserved order time %v", rec.OrderedAt, orderTime)
	}
	if rec.TakenAt == nil || !rec.TakenAt.Equal(collectTime) {
		t.Errorf("takenAt = %v, want %v", rec.TakenAt, collectTime)
	}
}

func TestRecordCanteenInvalidStoredCutoffFallsBack(t *testing.T) {
	store := newFakeStore()
	// 09:30 with a garbage stored cutoff: the default 10:00 applies, so this orders.
	svc := testService(store, "garbage", at(9, 30, 0))
	res, err := svc.RecordCanteen(context.Background(), "EMP001", "10.0.0.1")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Status != StatusOrdered {
		t.Errorf("status = %q, want ordered under default cutoff", res.Status)
	}
}

func TestRecordAttendanceAppendsPerTap(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, "10:00", at(9, 0, 0))

	if _, err := svc.RecordAttendance(context.Background(), "EMP001", "10.0.0.1"); err != nil {
		t.Fatalf("first tap: %v", err)
	}
	svc.now = func() time.Time { return at(9, 0, 5) }
	entry, err := svc.RecordAttendance(context.Background(), "EMP001", "10.0.0.1")
	if err != nil {
		t.Fatalf("second tap: %v", err)
	}
	if len(store.logs) != 2 {
		t.Fatalf("log count = %d, want 2 (no dedup in attendance mode)", len(store.logs))
	}
	if entry.Status != StatusPresent {
		t.Errorf("status = %q, want present", entry.Status)
	}
	if entry.SubjectName != "Ada Lovelace" || entry.GroupLabel != "Engineering" {
		t.Errorf("subject snapshot not denormalized: %+v", entry)
	}
}

func TestRecordAttendanceUnknownSubject(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, "10:00", at(9, 0, 0))
	_, err := svc.RecordAttendance(context.Background(), "NOPE", "10.0.0.1")
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("err = %v, want ErrSubjectNotFound", err)
	}
	if len(store.logs) != 0 {
		t.Error("no log row should be written for an unknown subject")
	}
}

func TestFilterNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Filter
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", in: Filter{}, wantPage: 1, wantLimit: DefaultLimit},
		{name: "limit clamped high", in: Filter{Page: 2, Limit: 500}, wantPage: 2, wantLimit: MaxLimit},
		{name: "limit clamped low", in: Filter{Page: 1, Limit: -3}, wantPage: 1, wantLimit: 1},
		{name: "page floored", in: Filter{Page: 0, Limit: 20}, wantPage: 1, wantLimit: 20},
		{name: "negative page", in: Filter{Page: -5, Limit: 20}, wantPage: 1, wantLimit: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Errorf("got page=%d limit=%d, want page=%d limit=%d", got.Page, got.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestListingClampsReachStore(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, "10:00", at(9, 0, 0))

	if _, _, err := svc.Logs(context.Background(), Filter{Page: 0, Limit: 500}); err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if store.lastFilter.Limit != MaxLimit || store.lastFilter.Page != 1 {
		t.Errorf("store saw page=%d limit=%d, want page=1 limit=%d",
			store.lastFilter.Page, store.lastFilter.Limit, MaxLimit)
	}

	if _, _, err := svc.Records(context.Background(), Filter{Page: 3, Limit: 10}); err != nil {
		t.Fatalf("Records: %v", err)
	}
	if store.lastFilter.Offset() != 20 {
		t.Errorf("offset = %d, want 20", store.lastFilter.Offset())
	}
}
