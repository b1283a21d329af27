/*
Package timesheet provides the core timesheet-day reconciliation and approval engine.

PURPOSE:
  This package owns the timesheet data model and its transition rules: individual
  task-coded time entries, the per-day record that reconciles them against a worker's
  declared total, and the approval workflow a manager drives over those days.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimesheetDay: One record per (user, work date) with derived hour fields
  - TimeEntry:    A task-coded block of hours belonging to exactly one day
  - WorkDate:     A day-granularity calendar date (the unit of reconciliation)
  - DayStatus:    The closed set of approval states

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all hour arithmetic, never float64
  2. Derived fields are never written directly: Reconcile() is the only producer
  3. Type Safety: Strong typing for IDs prevents mixing user/day/entry identifiers
  4. Closed status set: DayStatus values are enumerated, transitions are guarded

USAGE:
  day := timesheet.TimesheetDay{UserID: "u-1", WorkDate: timesheet.NewWorkDate(2025, time.May, 19)}
  derived := timesheet.Reconcile(day.DayHours, entries)
  day.ApplyDerived(derived)

SEE ALSO:
  - reconcile.go: Derived-field computation
  - status.go:    Approval state machine
  - service.go:   Per-day serialized operations
*/
package timesheet

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type DayID string
type EntryID string

// TaskID references an external task catalog entry. The engine stores the id
// opaquely; resolving it to a label is the caller's concern.
type TaskID string

// =============================================================================
// WORK DATE - Day-granularity calendar date
// =============================================================================

// WorkDate is a calendar date at day granularity, always UTC.
// It is the identity component of a TimesheetDay alongside UserID.
type WorkDate struct {
	Time time.Time
}

func NewWorkDate(year int, month time.Month, day int) WorkDate {
	return WorkDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseWorkDate parses a YYYY-MM-DD string.
func ParseWorkDate(s string) (WorkDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return WorkDate{}, fmt.Errorf("invalid work date %q: %w", s, err)
	}
	return WorkDate{Time: t.UTC()}, nil
}

func Today() WorkDate {
	now := time.Now().UTC()
	return NewWorkDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d WorkDate) Before(other WorkDate) bool { return d.normalize().Before(other.normalize()) }
func (d WorkDate) Equal(other WorkDate) bool  { return d.normalize().Equal(other.normalize()) }
func (d WorkDate) After(other WorkDate) bool  { return d.normalize().After(other.normalize()) }
func (d WorkDate) BeforeOrEqual(other WorkDate) bool { return d.Before(other) || d.Equal(other) }
func (d WorkDate) IsZero() bool               { return d.Time.IsZero() }

func (d WorkDate) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d WorkDate) AddDays(n int) WorkDate { return WorkDate{Time: d.normalize().AddDate(0, 0, n)} }

func (d WorkDate) Weekday() time.Weekday { return d.normalize().Weekday() }

func (d WorkDate) String() string { return d.normalize().Format("2006-01-02") }

// =============================================================================
// DAY STATUS - Closed approval state set
// =============================================================================

type DayStatus string

const (
	StatusDraft     DayStatus = "draft"
	StatusSubmitted DayStatus = "submitted"
	StatusApproved  DayStatus = "approved"
	StatusRejected  DayStatus = "rejected"
)

// ParseDayStatus validates a raw status string against the closed set.
func ParseDayStatus(s string) (DayStatus, error) {
	switch DayStatus(s) {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return DayStatus(s), nil
	}
	return "", fmt.Errorf("unknown day status %q", s)
}

// =============================================================================
// TIMESHEET DAY - One record per (user, work date)
// =============================================================================

// TimesheetDay is the unit of reconciliation and approval. EntryHours,
// UncodedHours and EffectiveTotalHours are derived; only Reconcile produces
// them. A day is created implicitly by the first mutation that targets its
// (user, work date) and is never hard-deleted.
type TimesheetDay struct {
	ID       DayID
	UserID   UserID
	WorkDate WorkDate

	// DayHours is the worker's declared total for the day. nil means the
	// worker has not declared one and entry hours stand in.
	DayHours *decimal.Decimal

	// Derived fields, maintained by Reconcile.
	EntryHours          decimal.Decimal
	UncodedHours        decimal.Decimal
	EffectiveTotalHours decimal.Decimal

	Status DayStatus
	Notes  string

	// RejectionReason is set only by a reject transition and cleared by release.
	RejectionReason *string

	// Approval audit fields.
	ApprovedBy *string
	ApprovedAt *time.Time
	RejectedBy *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Persisted reports whether the day has been stored. GetDay returns virtual
// (unpersisted) days for dates with no record yet.
func (d *TimesheetDay) Persisted() bool { return d.ID != "" }

// Clone returns a deep copy so callers can hand out days without aliasing
// pointer fields.
func (d *TimesheetDay) Clone() *TimesheetDay {
	out := *d
	if d.DayHours != nil {
		v := *d.DayHours
		out.DayHours = &v
	}
	if d.RejectionReason != nil {
		v := *d.RejectionReason
		out.RejectionReason = &v
	}
	if d.ApprovedBy != nil {
		v := *d.ApprovedBy
		out.ApprovedBy = &v
	}
	if d.ApprovedAt != nil {
		v := *d.ApprovedAt
		out.ApprovedAt = &v
	}
	if d.RejectedBy != nil {
		v := *d.RejectedBy
		out.RejectedBy = &v
	}
	return &out
}

// VirtualDay models an unworked date: draft status, all derived fields zero.
// It is returned by reads only and never persisted.
func VirtualDay(userID UserID, date WorkDate) *TimesheetDay {
	return &TimesheetDay{
		UserID:              userID,
		WorkDate:            date,
		EntryHours:          decimal.Zero,
		UncodedHours:        decimal.Zero,
		EffectiveTotalHours: decimal.Zero,
		Status:              StatusDraft,
	}
}

// =============================================================================
// TIME ENTRY - Task-coded hours belonging to one day
// =============================================================================

// TimeEntry records hours attributed to a task (or uncoded time when TaskID
// is nil) for a single day. Entries exist only while their owning day is in
// a status that permits mutation.
type TimeEntry struct {
	ID        EntryID
	DayID     DayID
	TaskID    *TaskID
	Hours     decimal.Decimal
	CreatedAt time.Time
}

func (e *TimeEntry) Clone() *TimeEntry {
	out := *e
	if e.TaskID != nil {
		v := *e.TaskID
		out.TaskID = &v
	}
	return &out
}

// maxEntryHours bounds a single entry. A day can exceed this via multiple
// entries; a single entry cannot.
var maxEntryHours = decimal.NewFromInt(24)
