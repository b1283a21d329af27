package timesheet_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vineops/timesheet-engine/timesheet"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func entry(hours float64) timesheet.TimeEntry {
	return timesheet.TimeEntry{Hours: dec(hours)}
}

func TestReconcile_NoDayHours_EffectiveIsEntrySum(t *testing.T) {
	// GIVEN: No declared day total, entries of 3 and 1.5 hours
	// WHEN: Reconciling
	// THEN: entry_hours = 4.5, uncoded = 0, effective = 4.5

	dh := timesheet.Reconcile(nil, []timesheet.TimeEntry{entry(3), entry(1.5)})

	if !dh.EntryHours.Equal(dec(4.5)) {
		t.Errorf("expected entry_hours 4.5, got %v", dh.EntryHours)
	}
	if !dh.UncodedHours.IsZero() {
		t.Errorf("expected uncoded_hours 0, got %v", dh.UncodedHours)
	}
	if !dh.EffectiveTotalHours.Equal(dec(4.5)) {
		t.Errorf("expected effective 4.5, got %v", dh.EffectiveTotalHours)
	}
}

func TestReconcile_DayHoursAboveEntries_UncodedIsDifference(t *testing.T) {
	// GIVEN: Declared total 8, entries summing to 4.5
	// WHEN: Reconciling
	// THEN: uncoded = 3.5, effective = 8

	dh := timesheet.Reconcile(decPtr(8), []timesheet.TimeEntry{entry(3), entry(1.5)})

	if !dh.UncodedHours.Equal(dec(3.5)) {
		t.Errorf("expected uncoded_hours 3.5, got %v", dh.UncodedHours)
	}
	if !dh.EffectiveTotalHours.Equal(dec(8)) {
		t.Errorf("expected effective 8, got %v", dh.EffectiveTotalHours)
	}
}

func TestReconcile_DayHoursBelowEntries_UncodedClampsToZero(t *testing.T) {
	// GIVEN: Declared total 2, entries summing to 5
	// WHEN: Reconciling
	// THEN: uncoded clamps to 0, effective stays at the declared 2

	dh := timesheet.Reconcile(decPtr(2), []timesheet.TimeEntry{entry(5)})

	if !dh.UncodedHours.IsZero() {
		t.Errorf("expected uncoded_hours 0, got %v", dh.UncodedHours)
	}
	if !dh.EffectiveTotalHours.Equal(dec(2)) {
		t.Errorf("expected effective 2, got %v", dh.EffectiveTotalHours)
	}
}

func TestReconcile_NoEntriesNoDayHours_AllZero(t *testing.T) {
	dh := timesheet.Reconcile(nil, nil)

	if !dh.EntryHours.IsZero() || !dh.UncodedHours.IsZero() || !dh.EffectiveTotalHours.IsZero() {
		t.Errorf("expected all-zero derived fields, got %+v", dh)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	// GIVEN: A fixed input set
	// WHEN: Reconciling repeatedly without changing inputs
	// THEN: Outputs are identical every time

	entries := []timesheet.TimeEntry{entry(3), entry(1.5), entry(0.25)}
	first := timesheet.Reconcile(decPtr(8), entries)

	for i := 0; i < 10; i++ {
		again := timesheet.Reconcile(decPtr(8), entries)
		if !again.EntryHours.Equal(first.EntryHours) ||
			!again.UncodedHours.Equal(first.UncodedHours) ||
			!again.EffectiveTotalHours.Equal(first.EffectiveTotalHours) {
			t.Fatalf("reconciliation not idempotent: run %d gave %+v, want %+v", i, again, first)
		}
	}
}

func TestReconcile_OrderIndependent(t *testing.T) {
	forward := timesheet.Reconcile(decPtr(10), []timesheet.TimeEntry{entry(1), entry(2), entry(3)})
	backward := timesheet.Reconcile(decPtr(10), []timesheet.TimeEntry{entry(3), entry(2), entry(1)})

	if !forward.EntryHours.Equal(backward.EntryHours) {
		t.Errorf("entry order changed the sum: %v vs %v", forward.EntryHours, backward.EntryHours)
	}
}
