// Package scan implements the badge-scan state machine and the read side the
// dashboard queries. Two resolvers exist: the attendance resolver appends a
// log row per tap, the canteen resolver drives a per-(subject, day) record
// through NoRecord -> Ordered -> Taken relative to the daily cutoff.
package scan

import (
	"errors"
	"time"
)

// Record and log statuses.
const (
	StatusOrdered = "ordered"
	StatusTaken   = "taken"
	StatusPresent = "present"
)

// ErrSubjectNotFound is returned when the scanned card id is not registered.
var ErrSubjectNotFound = errors.New("subject not found")

// LogEntry is one row of the append-only attendance log. Every tap is an event.
type LogEntry struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subjectId"`
	SubjectName string    `json:"subjectName"`
	GroupLabel  string    `json:"groupLabel"`
	Timestamp   time.Time `json:"timestamp"`
	DeviceIP    string    `json:"deviceIp"`
	Status      string    `json:"status"`
}

// DailyRecord is the per-subject-per-day order/collection state. At most one
// exists per (SubjectID, Date); the store enforces that atomically.
type DailyRecord struct {
	ID          string     `json:"id"`
	SubjectID   string     `json:"subjectId"`
	SubjectName string     `json:"subjectName"`
	GroupLabel  string     `json:"groupLabel"`
	Date        string     `json:"date"`
	OrderedAt   *time.Time `json:"orderedAt"`
	TakenAt     *time.Time `json:"takenAt"`
	Status      string     `json:"status"`
	DeviceIP    string     `json:"deviceIp"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CanteenResult is the scan response in canteen mode.
type CanteenResult struct {
	Status   string `json:"status"`
	RecordID string `json:"recordId"`
}

// SubjectSummary is one row of the monthly report.
type SubjectSummary struct {
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	Orders      int    `json:"orders"`
	Taken       int    `json:"taken"`
}

// Filter narrows dashboard listings. Date is a YYYY-MM-DD calendar day.
type Filter struct {
	Date      string
	SubjectID string
	Page      int
	Limit     int
}

// Listing page bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Normalize clamps Limit to [1, MaxLimit] (defaulting when unset) and floors
// Page at 1.
func (f Filter) Normalize() Filter {
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit < 1 {
		f.Limit = 1
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

// Offset is the row offset the normalized page maps to.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}
