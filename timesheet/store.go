/*
store.go - Persistence interface for days and entries

PURPOSE:
  Defines the interface between the engine and the database. Different
  implementations can use SQLite or in-memory storage; the service layer on
  top supplies the per-day serialization, so implementations only need to be
  individually thread-safe.

KEY METHODS:
  Days:    GetDay (by user+date), GetDayByID, SaveDay (upsert), ListDaysInRange
  Entries: GetEntry, ListEntries, SaveDayWithEntry, DeleteEntryWithDay

SEMANTICS:
  - GetDay / GetDayByID / GetEntry return (nil, nil) when the record is
    absent; the service translates that into NotFoundError or a virtual day.
  - SaveDay upserts on day id. (user_id, work_date) is unique; the service's
    per-day lock guarantees a single creator per key.
  - Entry mutations always touch two records: the entry and the owning day's
    derived fields. SaveDayWithEntry and DeleteEntryWithDay persist both
    atomically; a failed mutation leaves neither written.
  - Days are never deleted. Entries are deleted only via DeleteEntryWithDay.

IMPLEMENTATIONS:
  - store/sqlite:        SQLite-backed, production
  - timesheet/store:     In-memory, tests and dev
*/
package timesheet

import "context"

// Store handles persistence of timesheet days and their entries.
type Store interface {
	// GetDay returns the day for (userID, date), or nil if none exists.
	GetDay(ctx context.Context, userID UserID, date WorkDate) (*TimesheetDay, error)

	// GetDayByID returns the day with the given id, or nil if none exists.
	GetDayByID(ctx context.Context, id DayID) (*TimesheetDay, error)

	// SaveDay inserts or updates a day keyed by its id.
	SaveDay(ctx context.Context, day *TimesheetDay) error

	// ListDaysInRange returns a user's persisted days with
	// from <= work_date <= to, ordered by work_date.
	ListDaysInRange(ctx context.Context, userID UserID, from, to WorkDate) ([]*TimesheetDay, error)

	// GetEntry returns the entry with the given id, or nil if none exists.
	GetEntry(ctx context.Context, id EntryID) (*TimeEntry, error)

	// ListEntries returns all entries for a day, ordered by creation time.
	ListEntries(ctx context.Context, dayID DayID) ([]*TimeEntry, error)

	// SaveDayWithEntry upserts the day and inserts the entry in one atomic
	// write. On error, neither record is persisted.
	SaveDayWithEntry(ctx context.Context, day *TimesheetDay, entry *TimeEntry) error

	// DeleteEntryWithDay removes the entry and upserts the reconciled day in
	// one atomic write. Deleting an absent entry is an error and leaves the
	// day unwritten.
	DeleteEntryWithDay(ctx context.Context, id EntryID, day *TimesheetDay) error
}
