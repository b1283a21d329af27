package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vineops/timesheet-engine/store/sqlite"
	"github.com/vineops/timesheet-engine/timesheet"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDay(id, user, date string) *timesheet.TimesheetDay {
	d, _ := timesheet.ParseWorkDate(date)
	now := time.Date(2025, time.May, 19, 10, 0, 0, 0, time.UTC)
	return &timesheet.TimesheetDay{
		ID:                  timesheet.DayID(id),
		UserID:              timesheet.UserID(user),
		WorkDate:            d,
		EntryHours:          decimal.Zero,
		UncodedHours:        decimal.Zero,
		EffectiveTotalHours: decimal.Zero,
		Status:              timesheet.StatusDraft,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// =============================================================================
// DAY PERSISTENCE
// =============================================================================

func TestSaveDay_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	day := sampleDay("day-1", "u1", "2025-05-19")
	hours := decimal.NewFromFloat(7.75)
	day.DayHours = &hours
	day.EffectiveTotalHours = hours
	day.UncodedHours = hours
	day.Notes = "pruning block C"

	require.NoError(t, store.SaveDay(ctx, day))

	loaded, err := store.GetDay(ctx, "u1", day.WorkDate)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, day.ID, loaded.ID)
	assert.Equal(t, day.UserID, loaded.UserID)
	assert.True(t, loaded.WorkDate.Equal(day.WorkDate))
	require.NotNil(t, loaded.DayHours)
	assert.True(t, loaded.DayHours.Equal(hours), "day_hours must survive as exact decimal")
	assert.Equal(t, "pruning block C", loaded.Notes)
	assert.Equal(t, timesheet.StatusDraft, loaded.Status)
}

func TestSaveDay_UpdateOnConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	day := sampleDay("day-1", "u1", "2025-05-19")
	require.NoError(t, store.SaveDay(ctx, day))

	reason := "missing codes"
	actor := "mgr-1"
	day.Status = timesheet.StatusRejected
	day.RejectionReason = &reason
	day.RejectedBy = &actor
	require.NoError(t, store.SaveDay(ctx, day))

	loaded, err := store.GetDayByID(ctx, "day-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, timesheet.StatusRejected, loaded.Status)
	require.NotNil(t, loaded.RejectionReason)
	assert.Equal(t, "missing codes", *loaded.RejectionReason)
}

func TestGetDay_Absent_ReturnsNil(t *testing.T) {
	store := newTestStore(t)

	day, err := store.GetDay(context.Background(), "u-none", timesheet.NewWorkDate(2025, time.May, 19))
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestListDaysInRange_OrderedAndBounded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Out of order inserts across and beyond the window
	for _, d := range []string{"2025-05-21", "2025-05-19", "2025-05-26", "2025-05-25"} {
		require.NoError(t, store.SaveDay(ctx, sampleDay("day-"+d, "u1", d)))
	}
	// Another user inside the window must not leak in
	require.NoError(t, store.SaveDay(ctx, sampleDay("day-other", "u2", "2025-05-20")))

	from := timesheet.NewWorkDate(2025, time.May, 19)
	days, err := store.ListDaysInRange(ctx, "u1", from, from.AddDays(6))
	require.NoError(t, err)

	require.Len(t, days, 3)
	assert.Equal(t, "2025-05-19", days[0].WorkDate.String())
	assert.Equal(t, "2025-05-21", days[1].WorkDate.String())
	assert.Equal(t, "2025-05-25", days[2].WorkDate.String())
}

// =============================================================================
// ENTRY PERSISTENCE
// =============================================================================

func TestEntries_SaveListDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	day := sampleDay("day-1", "u1", "2025-05-19")

	task := timesheet.TaskID("task-42")
	e1 := &timesheet.TimeEntry{
		ID:        "entry-1",
		DayID:     day.ID,
		TaskID:    &task,
		Hours:     decimal.NewFromFloat(3),
		CreatedAt: time.Date(2025, time.May, 19, 9, 0, 0, 0, time.UTC),
	}
	e2 := &timesheet.TimeEntry{
		ID:        "entry-2",
		DayID:     day.ID,
		Hours:     decimal.NewFromFloat(1.5),
		CreatedAt: time.Date(2025, time.May, 19, 11, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveDayWithEntry(ctx, day, e1))
	require.NoError(t, store.SaveDayWithEntry(ctx, day, e2))

	entries, err := store.ListEntries(ctx, day.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, timesheet.EntryID("entry-1"), entries[0].ID, "entries ordered by creation time")
	require.NotNil(t, entries[0].TaskID)
	assert.Equal(t, timesheet.TaskID("task-42"), *entries[0].TaskID)
	assert.Nil(t, entries[1].TaskID, "uncoded entry has no task")
	assert.True(t, entries[1].Hours.Equal(decimal.NewFromFloat(1.5)))

	require.NoError(t, store.DeleteEntryWithDay(ctx, "entry-1", day))

	entries, err = store.ListEntries(ctx, day.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, timesheet.EntryID("entry-2"), entries[0].ID)
}

func TestSaveDayWithEntry_DuplicateEntry_RollsBackDay(t *testing.T) {
	// GIVEN: A persisted day and entry
	// WHEN: Re-inserting the same entry id with an updated day
	// THEN: The insert fails and the day keeps its previous values

	store := newTestStore(t)
	ctx := context.Background()

	day := sampleDay("day-1", "u1", "2025-05-19")
	entry := &timesheet.TimeEntry{
		ID:        "entry-1",
		DayID:     day.ID,
		Hours:     decimal.NewFromFloat(3),
		CreatedAt: time.Date(2025, time.May, 19, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveDayWithEntry(ctx, day, entry))

	day.Notes = "should not stick"
	err := store.SaveDayWithEntry(ctx, day, entry)
	require.Error(t, err)

	loaded, err := store.GetDayByID(ctx, day.ID)
	require.NoError(t, err)
	assert.Equal(t, "", loaded.Notes, "day write must roll back with the failed entry insert")

	entries, err := store.ListEntries(ctx, day.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeleteEntryWithDay_Absent_NotFound_RollsBackDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	day := sampleDay("day-1", "u1", "2025-05-19")
	require.NoError(t, store.SaveDay(ctx, day))

	day.Notes = "should not stick"
	err := store.DeleteEntryWithDay(ctx, "entry-missing", day)

	assert.ErrorIs(t, err, timesheet.ErrNotFound)

	loaded, getErr := store.GetDayByID(ctx, day.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "", loaded.Notes, "day write must roll back when the entry is absent")
}

// =============================================================================
// SERVICE OVER SQLITE - end-to-end through the real store
// =============================================================================

func TestServiceOverSQLite_FullApprovalCycle(t *testing.T) {
	store := newTestStore(t)
	svc := timesheet.NewService(store)
	ctx := context.Background()

	date := timesheet.NewWorkDate(2025, time.May, 19)
	task := timesheet.TaskID("task-42")

	_, err := svc.AddEntry(ctx, "u1", date, &task, decimal.NewFromFloat(3))
	require.NoError(t, err)
	_, err = svc.AddEntry(ctx, "u1", date, nil, decimal.NewFromFloat(1.5))
	require.NoError(t, err)

	day, err := svc.UpsertDay(ctx, "u1", date, timesheet.UpsertDayInput{DayHours: decPtr(8)})
	require.NoError(t, err)
	assert.True(t, day.UncodedHours.Equal(decimal.NewFromFloat(3.5)))

	day, err = svc.SubmitDay(ctx, day.ID)
	require.NoError(t, err)
	day, err = svc.ApproveDay(ctx, day.ID, "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusApproved, day.Status)

	// Reload from disk-backed store and verify the approved snapshot
	loaded, err := store.GetDayByID(ctx, day.ID)
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusApproved, loaded.Status)
	assert.True(t, loaded.EntryHours.Equal(decimal.NewFromFloat(4.5)))
	assert.True(t, loaded.EffectiveTotalHours.Equal(decimal.NewFromFloat(8)))
}

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
