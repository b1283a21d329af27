/*
reconcile.go - Derived-field computation for a timesheet day

PURPOSE:
  A day carries three derived hour fields. They are a pure function of the
  declared day total and the entry set, recomputed after every mutation so
  stored and derived values can never drift.

THE THREE FIELDS:
  entry_hours           sum of all entry hours
  uncoded_hours         max(day_hours - entry_hours, 0) when day_hours is set, else 0
  effective_total_hours day_hours when set, else entry_hours

IDEMPOTENCE:
  Reconcile is order-independent and idempotent: re-running it on unchanged
  inputs yields identical outputs.
*/
package timesheet

import "github.com/shopspring/decimal"

// DerivedHours is the output of a reconciliation pass.
type DerivedHours struct {
	EntryHours          decimal.Decimal
	UncodedHours        decimal.Decimal
	EffectiveTotalHours decimal.Decimal
}

// Reconcile computes the derived hour fields from the declared day total and
// the entry set. Pure: no I/O, no mutation of inputs.
func Reconcile(dayHours *decimal.Decimal, entries []TimeEntry) DerivedHours {
	entryHours := decimal.Zero
	for _, e := range entries {
		entryHours = entryHours.Add(e.Hours)
	}

	uncoded := decimal.Zero
	effective := entryHours
	if dayHours != nil {
		if diff := dayHours.Sub(entryHours); diff.IsPositive() {
			uncoded = diff
		}
		effective = *dayHours
	}

	return DerivedHours{
		EntryHours:          entryHours,
		UncodedHours:        uncoded,
		EffectiveTotalHours: effective,
	}
}

// ApplyDerived writes a reconciliation result onto the day.
func (d *TimesheetDay) ApplyDerived(dh DerivedHours) {
	d.EntryHours = dh.EntryHours
	d.UncodedHours = dh.UncodedHours
	d.EffectiveTotalHours = dh.EffectiveTotalHours
}
