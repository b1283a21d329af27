/*
status.go - Approval state machine for timesheet days

PURPOSE:
  Encodes the closed transition graph and the mutation lock rule. Transition
  guards live here as pure functions over DayStatus; the service applies them
  under the per-day lock.

STATE GRAPH:

       submit           approve
  draft ─────▶ submitted ─────▶ approved ──┐
    ▲              │                       │ release
    │              │ reject                ▼
    │              ▼                     draft
    └──────── rejected ◀───────────────────┘
       release

  Release always lands in draft; there is no path from approved or rejected
  back to submitted directly.

MUTATION LOCK RULE:
  Field mutation (day_hours, notes, entries) is permitted in draft and
  submitted. Once a reviewer has acted (approved or rejected) the record is
  frozen until an explicit release returns it to draft. This prevents silent
  post-hoc edits to records a manager has already reviewed.
*/
package timesheet

// AllowsMutation reports whether day fields and entries may change in this
// status. Approved and rejected days are frozen until released.
func (s DayStatus) AllowsMutation() bool {
	return s == StatusDraft || s == StatusSubmitted
}

// transitions maps each status to the statuses reachable from it.
var transitions = map[DayStatus][]DayStatus{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusDraft},
	StatusRejected:  {StatusDraft},
}

// CanTransitionTo reports whether the graph permits moving from s to target.
// It does not evaluate value guards (e.g. submit requires hours > 0); those
// belong to the individual transition checks below.
func (s DayStatus) CanTransitionTo(target DayStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// CheckSubmit validates the submit guard: draft status and a positive
// effective total.
func (d *TimesheetDay) CheckSubmit() error {
	if d.Status != StatusDraft {
		return &InvalidTransitionError{DayID: d.ID, From: d.Status, Attempted: StatusSubmitted}
	}
	if !d.EffectiveTotalHours.IsPositive() {
		return &InvalidTransitionError{
			DayID:     d.ID,
			From:      d.Status,
			Attempted: StatusSubmitted,
			Reason:    "effective total hours must be greater than zero",
		}
	}
	return nil
}

// CheckApprove validates the approve guard: submitted status only.
func (d *TimesheetDay) CheckApprove() error {
	if d.Status != StatusSubmitted {
		return &InvalidTransitionError{DayID: d.ID, From: d.Status, Attempted: StatusApproved}
	}
	return nil
}

// CheckReject validates the reject guard: submitted status only.
func (d *TimesheetDay) CheckReject() error {
	if d.Status != StatusSubmitted {
		return &InvalidTransitionError{DayID: d.ID, From: d.Status, Attempted: StatusRejected}
	}
	return nil
}

// CheckRelease validates the release guard: approved or rejected only.
func (d *TimesheetDay) CheckRelease() error {
	if d.Status != StatusApproved && d.Status != StatusRejected {
		return &InvalidTransitionError{DayID: d.ID, From: d.Status, Attempted: StatusDraft}
	}
	return nil
}
