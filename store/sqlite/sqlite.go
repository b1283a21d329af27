/*
Package sqlite provides a SQLite-backed implementation of the storage interface.

PURPOSE:
  Implements timesheet.Store using SQLite. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  timesheet_days: One row per (user, work date), with derived hour fields
  time_entries:   Task-coded entries owned by a day

INDEXES:
  - idx_days_user_date (UNIQUE): Day identity, also serves range scans
  - idx_entries_day:             Entry listing for reconciliation (hot path)

DECIMALS:
  Hour values are stored as TEXT via decimal.Decimal.String() and parsed on
  read. Never stored as REAL; float round-trips would break the entry-sum
  invariant.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety at the connection level. Per-day
  serialization is the service layer's job, not the store's.

TRANSACTIONS:
  Entry mutations write two records (the entry and the owning day's derived
  fields); SaveDayWithEntry and DeleteEntryWithDay wrap both in a single
  transaction so a failed mutation leaves the database unchanged.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/timesheets.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := timesheet.NewService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - timesheet/store.go:        Interface definition
  - timesheet/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/vineops/timesheet-engine/timesheet"
)

// Store implements timesheet.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Timesheet days: one row per (user, work date). Never deleted;
	-- rejection and release are status transitions, not deletions.
	CREATE TABLE IF NOT EXISTS timesheet_days (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		day_hours TEXT,
		entry_hours TEXT NOT NULL,
		uncoded_hours TEXT NOT NULL,
		effective_total_hours TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		notes TEXT NOT NULL DEFAULT '',
		rejection_reason TEXT,
		rejected_by TEXT,
		approved_by TEXT,
		approved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Day identity; also serves weekly range scans.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_days_user_date
		ON timesheet_days(user_id, work_date);

	CREATE INDEX IF NOT EXISTS idx_days_status
		ON timesheet_days(status);

	-- Entries owned by a day.
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		timesheet_day_id TEXT NOT NULL,
		task_id TEXT,
		hours TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (timesheet_day_id) REFERENCES timesheet_days(id)
	);

	-- Reconciliation lists a day's entries on every mutation (hot path).
	CREATE INDEX IF NOT EXISTS idx_entries_day
		ON time_entries(timesheet_day_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DAYS
// =============================================================================

const dayColumns = `id, user_id, work_date, day_hours, entry_hours, uncoded_hours,
	effective_total_hours, status, notes, rejection_reason, rejected_by,
	approved_by, approved_at, created_at, updated_at`

func (s *Store) GetDay(ctx context.Context, userID timesheet.UserID, date timesheet.WorkDate) (*timesheet.TimesheetDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+dayColumns+` FROM timesheet_days WHERE user_id = ? AND work_date = ?`,
		string(userID), date.String())
	return scanDay(row)
}

func (s *Store) GetDayByID(ctx context.Context, id timesheet.DayID) (*timesheet.TimesheetDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+dayColumns+` FROM timesheet_days WHERE id = ?`, string(id))
	return scanDay(row)
}

func (s *Store) SaveDay(ctx context.Context, day *timesheet.TimesheetDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveDay(ctx, s.db, day)
}

// execer abstracts *sql.DB and *sql.Tx so the write helpers serve both the
// single-statement methods and the transactional ones.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveDay(ctx context.Context, ex execer, day *timesheet.TimesheetDay) error {
	query := `
		INSERT INTO timesheet_days
		(id, user_id, work_date, day_hours, entry_hours, uncoded_hours,
		 effective_total_hours, status, notes, rejection_reason, rejected_by,
		 approved_by, approved_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day_hours = excluded.day_hours,
			entry_hours = excluded.entry_hours,
			uncoded_hours = excluded.uncoded_hours,
			effective_total_hours = excluded.effective_total_hours,
			status = excluded.status,
			notes = excluded.notes,
			rejection_reason = excluded.rejection_reason,
			rejected_by = excluded.rejected_by,
			approved_by = excluded.approved_by,
			approved_at = excluded.approved_at,
			updated_at = excluded.updated_at
	`

	_, err := ex.ExecContext(ctx, query,
		string(day.ID),
		string(day.UserID),
		day.WorkDate.String(),
		nullDecimal(day.DayHours),
		day.EntryHours.String(),
		day.UncodedHours.String(),
		day.EffectiveTotalHours.String(),
		string(day.Status),
		day.Notes,
		nullString(day.RejectionReason),
		nullString(day.RejectedBy),
		nullString(day.ApprovedBy),
		nullTime(day.ApprovedAt),
		day.CreatedAt.UTC().Format(time.RFC3339),
		day.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save day %s: %w", day.ID, err)
	}
	return nil
}

func (s *Store) ListDaysInRange(ctx context.Context, userID timesheet.UserID, from, to timesheet.WorkDate) ([]*timesheet.TimesheetDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+dayColumns+` FROM timesheet_days
		 WHERE user_id = ? AND work_date >= ? AND work_date <= ?
		 ORDER BY work_date`,
		string(userID), from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list days: %w", err)
	}
	defer rows.Close()

	var days []*timesheet.TimesheetDay
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *Store) GetEntry(ctx context.Context, id timesheet.EntryID) (*timesheet.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, timesheet_day_id, task_id, hours, created_at
		 FROM time_entries WHERE id = ?`, string(id))
	return scanEntry(row)
}

func (s *Store) ListEntries(ctx context.Context, dayID timesheet.DayID) ([]*timesheet.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timesheet_day_id, task_id, hours, created_at
		 FROM time_entries WHERE timesheet_day_id = ?
		 ORDER BY created_at, id`, string(dayID))
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*timesheet.TimeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SaveDayWithEntry upserts the day and inserts the entry inside one
// transaction, so the entry-sum invariant holds on disk even across a
// mid-mutation failure.
func (s *Store) SaveDayWithEntry(ctx context.Context, day *timesheet.TimesheetDay, entry *timesheet.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveDay(ctx, tx, day); err != nil {
		return err
	}
	if err := saveEntry(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteEntryWithDay removes the entry and upserts the reconciled day inside
// one transaction. An absent entry rolls the day write back too.
func (s *Store) DeleteEntryWithDay(ctx context.Context, id timesheet.EntryID, day *timesheet.TimesheetDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &timesheet.NotFoundError{Kind: "entry", ID: string(id)}
	}

	if err := saveDay(ctx, tx, day); err != nil {
		return err
	}
	return tx.Commit()
}

func saveEntry(ctx context.Context, ex execer, entry *timesheet.TimeEntry) error {
	var taskID any
	if entry.TaskID != nil {
		taskID = string(*entry.TaskID)
	}

	_, err := ex.ExecContext(ctx,
		`INSERT INTO time_entries (id, timesheet_day_id, task_id, hours, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(entry.ID),
		string(entry.DayID),
		taskID,
		entry.Hours.String(),
		entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save entry %s: %w", entry.ID, err)
	}
	return nil
}

// =============================================================================
// ROW SCANNING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDay(row rowScanner) (*timesheet.TimesheetDay, error) {
	var (
		id, userID, workDate           string
		dayHours                       sql.NullString
		entryHours, uncoded, effective string
		status, notes                  string
		rejectionReason, rejectedBy    sql.NullString
		approvedBy, approvedAt         sql.NullString
		createdAt, updatedAt           string
	)

	err := row.Scan(&id, &userID, &workDate, &dayHours, &entryHours, &uncoded,
		&effective, &status, &notes, &rejectionReason, &rejectedBy,
		&approvedBy, &approvedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan day: %w", err)
	}

	date, err := timesheet.ParseWorkDate(workDate)
	if err != nil {
		return nil, err
	}
	parsedStatus, err := timesheet.ParseDayStatus(status)
	if err != nil {
		return nil, err
	}

	day := &timesheet.TimesheetDay{
		ID:       timesheet.DayID(id),
		UserID:   timesheet.UserID(userID),
		WorkDate: date,
		Status:   parsedStatus,
		Notes:    notes,
	}

	if day.EntryHours, err = decimal.NewFromString(entryHours); err != nil {
		return nil, fmt.Errorf("corrupt entry_hours for day %s: %w", id, err)
	}
	if day.UncodedHours, err = decimal.NewFromString(uncoded); err != nil {
		return nil, fmt.Errorf("corrupt uncoded_hours for day %s: %w", id, err)
	}
	if day.EffectiveTotalHours, err = decimal.NewFromString(effective); err != nil {
		return nil, fmt.Errorf("corrupt effective_total_hours for day %s: %w", id, err)
	}
	if dayHours.Valid {
		v, err := decimal.NewFromString(dayHours.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt day_hours for day %s: %w", id, err)
		}
		day.DayHours = &v
	}
	if rejectionReason.Valid {
		v := rejectionReason.String
		day.RejectionReason = &v
	}
	if rejectedBy.Valid {
		v := rejectedBy.String
		day.RejectedBy = &v
	}
	if approvedBy.Valid {
		v := approvedBy.String
		day.ApprovedBy = &v
	}
	if approvedAt.Valid {
		t, err := time.Parse(time.RFC3339, approvedAt.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt approved_at for day %s: %w", id, err)
		}
		day.ApprovedAt = &t
	}
	if day.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for day %s: %w", id, err)
	}
	if day.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("corrupt updated_at for day %s: %w", id, err)
	}

	return day, nil
}

func scanEntry(row rowScanner) (*timesheet.TimeEntry, error) {
	var (
		id, dayID, hours, createdAt string
		taskID                      sql.NullString
	)

	err := row.Scan(&id, &dayID, &taskID, &hours, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	entry := &timesheet.TimeEntry{
		ID:    timesheet.EntryID(id),
		DayID: timesheet.DayID(dayID),
	}
	if entry.Hours, err = decimal.NewFromString(hours); err != nil {
		return nil, fmt.Errorf("corrupt hours for entry %s: %w", id, err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for entry %s: %w", id, err)
	}
	if taskID.Valid {
		v := timesheet.TaskID(taskID.String)
		entry.TaskID = &v
	}
	return entry, nil
}

// =============================================================================
// NULL HELPERS
// =============================================================================

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
