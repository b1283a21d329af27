/*
service.go - Serialized timesheet operations

PURPOSE:
  The Service is the single write path into the engine. Every mutating
  operation on a given (user, work date):
  1. Acquires that day's lock from a keyed lock map
  2. Re-reads current state under the lock
  3. Validates the mutation against the day's status
  4. Applies the change and reconciles derived fields
  5. Persists and returns the updated day

  Reads (GetDay, weekly aggregation) take no locks; each day's invariant is
  self-contained, so cross-day reads may observe different days at slightly
  different points in time.

OPERATION FLOW (addEntry example):

  caller ──▶ validate hours ──▶ lock(user,date) ──▶ load/create day
                                                        │
             persist ◀── reconcile ◀── status check ◀───┘

CONCURRENCY:
  The lock map serializes all mutations per day, so reconciliation always
  operates on a consistent entry set and racing transitions resolve to
  exactly one winner; the loser observes the already-changed status and gets
  InvalidTransitionError.

AUTHORIZATION:
  Approve and reject accept an actor identifier which is recorded on the
  day. The engine performs no role checks; "only managers may approve" is
  enforced at the service boundary by the caller.

SEE ALSO:
  - status.go:  Transition guards applied here
  - weekly.go:  Read-side aggregation over the same store
*/
package timesheet

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KEYED LOCKS - One mutex per active day
// =============================================================================

// dayLocks hands out one mutex per day key. Entries are retained for the
// life of the service; the working set is bounded by days actively edited.
type dayLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDayLocks() *dayLocks {
	return &dayLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for key and returns the unlock function.
func (l *dayLocks) acquire(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func dayKey(userID UserID, date WorkDate) string {
	return string(userID) + "|" + date.String()
}

// =============================================================================
// SERVICE
// =============================================================================

// Service coordinates all day and entry operations against a Store.
type Service struct {
	store Store
	locks *dayLocks

	now func() time.Time
	seq atomic.Uint64
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		locks: newDayLocks(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, s.now().UnixNano(), s.seq.Add(1))
}

// =============================================================================
// DAY OPERATIONS
// =============================================================================

// GetDay returns the persisted day for (userID, date), or a virtual draft
// day with zero derived fields if no record exists. The virtual day is NOT
// persisted; persistence happens only on first mutation.
func (s *Service) GetDay(ctx context.Context, userID UserID, date WorkDate) (*TimesheetDay, error) {
	day, err := s.store.GetDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return VirtualDay(userID, date), nil
	}
	return day, nil
}

// UpsertDayInput carries the mutable day-level fields. Nil pointers mean
// "leave unchanged"; ClearDayHours removes the declared total.
type UpsertDayInput struct {
	DayHours      *decimal.Decimal
	ClearDayHours bool
	Notes         *string
}

// UpsertDay creates the day if absent, otherwise updates day_hours and notes
// if the day's status permits mutation. Derived fields are recomputed on
// every call regardless of which field changed.
func (s *Service) UpsertDay(ctx context.Context, userID UserID, date WorkDate, in UpsertDayInput) (*TimesheetDay, error) {
	if in.DayHours != nil && in.DayHours.IsNegative() {
		return nil, &ValidationError{Field: "day_hours", Message: "must not be negative"}
	}

	unlock := s.locks.acquire(dayKey(userID, date))
	defer unlock()

	day, err := s.loadOrCreateDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !day.Status.AllowsMutation() {
		return nil, &DayLockedError{DayID: day.ID, Status: day.Status}
	}

	if in.ClearDayHours {
		day.DayHours = nil
	} else if in.DayHours != nil {
		v := *in.DayHours
		day.DayHours = &v
	}
	if in.Notes != nil {
		day.Notes = *in.Notes
	}

	if err := s.reconcileAndSave(ctx, day); err != nil {
		return nil, err
	}
	return day.Clone(), nil
}

// loadOrCreateDay returns the persisted day for the key, creating a fresh
// draft in memory (not yet saved) if none exists. Caller holds the day lock.
func (s *Service) loadOrCreateDay(ctx context.Context, userID UserID, date WorkDate) (*TimesheetDay, error) {
	day, err := s.store.GetDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if day != nil {
		return day, nil
	}
	return &TimesheetDay{
		ID:        DayID(s.newID("day")),
		UserID:    userID,
		WorkDate:  date,
		Status:    StatusDraft,
		CreatedAt: s.now(),
	}, nil
}

// reconcile recomputes the day's derived fields from the given entry set.
func (s *Service) reconcile(day *TimesheetDay, entries []*TimeEntry) {
	flat := make([]TimeEntry, len(entries))
	for i, e := range entries {
		flat[i] = *e
	}
	day.ApplyDerived(Reconcile(day.DayHours, flat))
	day.UpdatedAt = s.now()
}

// reconcileAndSave recomputes derived fields from the current entry set and
// persists the day. Caller holds the day lock.
func (s *Service) reconcileAndSave(ctx context.Context, day *TimesheetDay) error {
	entries, err := s.store.ListEntries(ctx, day.ID)
	if err != nil {
		return err
	}
	s.reconcile(day, entries)
	return s.store.SaveDay(ctx, day)
}

// =============================================================================
// ENTRY OPERATIONS
// =============================================================================

// AddEntry creates a task-coded entry on the day for (userID, date),
// creating the day implicitly if absent. Hours must be > 0 and <= 24.
func (s *Service) AddEntry(ctx context.Context, userID UserID, date WorkDate, taskID *TaskID, hours decimal.Decimal) (*TimeEntry, error) {
	if !hours.IsPositive() {
		return nil, &ValidationError{Field: "hours", Message: "must be greater than zero"}
	}
	if hours.GreaterThan(maxEntryHours) {
		return nil, &ValidationError{Field: "hours", Message: "must not exceed 24"}
	}

	unlock := s.locks.acquire(dayKey(userID, date))
	defer unlock()

	day, err := s.loadOrCreateDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !day.Status.AllowsMutation() {
		return nil, &DayLockedError{DayID: day.ID, Status: day.Status}
	}

	entry := &TimeEntry{
		ID:        EntryID(s.newID("entry")),
		DayID:     day.ID,
		Hours:     hours,
		CreatedAt: s.now(),
	}
	if taskID != nil {
		v := *taskID
		entry.TaskID = &v
	}

	// Reconcile over the entry set as it will be after the write, then
	// persist day and entry in one atomic step so a failure leaves neither.
	entries, err := s.store.ListEntries(ctx, day.ID)
	if err != nil {
		return nil, err
	}
	s.reconcile(day, append(entries, entry))

	if err := s.store.SaveDayWithEntry(ctx, day, entry); err != nil {
		return nil, err
	}
	return entry.Clone(), nil
}

// DeleteEntry removes an entry and reconciles the owning day. Fails with
// NotFoundError if the entry is absent and DayLockedError if the owning day
// is frozen.
func (s *Service) DeleteEntry(ctx context.Context, entryID EntryID) error {
	// Resolve the owning day first to find the lock key. UserID and WorkDate
	// are immutable for a given day id, so the key is stable pre-lock.
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return &NotFoundError{Kind: "entry", ID: string(entryID)}
	}
	day, err := s.store.GetDayByID(ctx, entry.DayID)
	if err != nil {
		return err
	}
	if day == nil {
		return &NotFoundError{Kind: "day", ID: string(entry.DayID)}
	}

	unlock := s.locks.acquire(dayKey(day.UserID, day.WorkDate))
	defer unlock()

	// Re-read under the lock: the entry may have been deleted or the day's
	// status changed while we were resolving the key.
	entry, err = s.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return &NotFoundError{Kind: "entry", ID: string(entryID)}
	}
	day, err = s.store.GetDayByID(ctx, entry.DayID)
	if err != nil {
		return err
	}
	if day == nil {
		return &NotFoundError{Kind: "day", ID: string(entry.DayID)}
	}
	if !day.Status.AllowsMutation() {
		return &DayLockedError{DayID: day.ID, Status: day.Status}
	}

	// Reconcile over the surviving entries, then delete and save atomically.
	entries, err := s.store.ListEntries(ctx, day.ID)
	if err != nil {
		return err
	}
	remaining := entries[:0]
	for _, e := range entries {
		if e.ID != entryID {
			remaining = append(remaining, e)
		}
	}
	s.reconcile(day, remaining)

	return s.store.DeleteEntryWithDay(ctx, entryID, day)
}

// ListEntries returns the entries for a day id.
func (s *Service) ListEntries(ctx context.Context, dayID DayID) ([]*TimeEntry, error) {
	return s.store.ListEntries(ctx, dayID)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// SubmitDay moves a draft day with positive effective total to submitted.
func (s *Service) SubmitDay(ctx context.Context, dayID DayID) (*TimesheetDay, error) {
	return s.transition(ctx, dayID, func(day *TimesheetDay) error {
		if err := day.CheckSubmit(); err != nil {
			return err
		}
		day.Status = StatusSubmitted
		return nil
	})
}

// ApproveDay moves a submitted day to approved, recording the actor.
func (s *Service) ApproveDay(ctx context.Context, dayID DayID, actor string) (*TimesheetDay, error) {
	return s.transition(ctx, dayID, func(day *TimesheetDay) error {
		if err := day.CheckApprove(); err != nil {
			return err
		}
		now := s.now()
		day.Status = StatusApproved
		day.ApprovedBy = &actor
		day.ApprovedAt = &now
		return nil
	})
}

// RejectDay moves a submitted day to rejected, recording the actor. The
// reason may be empty but is always recorded.
func (s *Service) RejectDay(ctx context.Context, dayID DayID, actor, reason string) (*TimesheetDay, error) {
	return s.transition(ctx, dayID, func(day *TimesheetDay) error {
		if err := day.CheckReject(); err != nil {
			return err
		}
		day.Status = StatusRejected
		day.RejectionReason = &reason
		day.RejectedBy = &actor
		return nil
	})
}

// ReleaseDay returns an approved or rejected day to draft, clearing the
// rejection reason and approval audit fields. This is the only path back to
// an editable state once a reviewer has acted.
func (s *Service) ReleaseDay(ctx context.Context, dayID DayID) (*TimesheetDay, error) {
	return s.transition(ctx, dayID, func(day *TimesheetDay) error {
		if err := day.CheckRelease(); err != nil {
			return err
		}
		day.Status = StatusDraft
		day.RejectionReason = nil
		day.RejectedBy = nil
		day.ApprovedBy = nil
		day.ApprovedAt = nil
		return nil
	})
}

// transition loads the day, applies fn under the day lock, and persists.
func (s *Service) transition(ctx context.Context, dayID DayID, fn func(*TimesheetDay) error) (*TimesheetDay, error) {
	day, err := s.store.GetDayByID(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, &NotFoundError{Kind: "day", ID: string(dayID)}
	}

	unlock := s.locks.acquire(dayKey(day.UserID, day.WorkDate))
	defer unlock()

	// Re-read under the lock so a racing transition sees the updated status.
	day, err = s.store.GetDayByID(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, &NotFoundError{Kind: "day", ID: string(dayID)}
	}

	if err := fn(day); err != nil {
		return nil, err
	}
	day.UpdatedAt = s.now()
	if err := s.store.SaveDay(ctx, day); err != nil {
		return nil, err
	}
	return day.Clone(), nil
}
