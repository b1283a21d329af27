/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

HOUR FIELDS:
  Hours cross the wire as JSON numbers (float64). Conversion back to
  decimal happens once at the handler boundary; all arithmetic stays in
  decimal inside the engine.

VALIDATION:
  Structural validation (parseable dates, numeric hours) happens in
  handlers; business validation (ranges, lock rules) happens in the engine
  and surfaces through the error mapping in handlers.go.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/vineops/timesheet-engine/timesheet"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// DayDTO represents a timesheet day in API responses. Virtual days carry an
// empty id and persisted=false.
type DayDTO struct {
	ID                  string   `json:"id,omitempty"`
	UserID              string   `json:"user_id"`
	WorkDate            string   `json:"work_date"`
	DayHours            *float64 `json:"day_hours"`
	EntryHours          float64  `json:"entry_hours"`
	UncodedHours        float64  `json:"uncoded_hours"`
	EffectiveTotalHours float64  `json:"effective_total_hours"`
	Status              string   `json:"status"`
	Notes               string   `json:"notes,omitempty"`
	RejectionReason     *string  `json:"rejection_reason,omitempty"`
	RejectedBy          *string  `json:"rejected_by,omitempty"`
	ApprovedBy          *string  `json:"approved_by,omitempty"`
	ApprovedAt          string   `json:"approved_at,omitempty"`
	Persisted           bool     `json:"persisted"`
	UpdatedAt           string   `json:"updated_at,omitempty"`
}

// EntryDTO represents a time entry in API responses.
type EntryDTO struct {
	ID        string  `json:"id"`
	DayID     string  `json:"day_id"`
	TaskID    *string `json:"task_id"`
	Hours     float64 `json:"hours"`
	CreatedAt string  `json:"created_at"`
}

// WeekDTO is a user's weekly rollup with per-day breakdown.
type WeekDTO struct {
	UserID    string   `json:"user_id"`
	WeekStart string   `json:"week_start"`
	Total     float64  `json:"total"`
	Days      []DayDTO `json:"days"`
}

// TeamWeekRowDTO is one user's row in a team weekly summary.
type TeamWeekRowDTO struct {
	UserID       string         `json:"user_id"`
	Total        float64        `json:"total"`
	StatusCounts map[string]int `json:"status_counts"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  string `json:"status,omitempty"` // day status for lock/transition errors
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// UpsertDayRequest updates day-level fields. A nil day_hours leaves the
// declared total unchanged; clear_day_hours removes it.
type UpsertDayRequest struct {
	DayHours      *float64 `json:"day_hours"`
	ClearDayHours bool     `json:"clear_day_hours,omitempty"`
	Notes         *string  `json:"notes"`
}

// AddEntryRequest creates a time entry on a (user, date) day.
type AddEntryRequest struct {
	TaskID *string `json:"task_id"`
	Hours  float64 `json:"hours"`
}

// ActorRequest carries the authenticated actor for approve/release.
// Authorization itself is the caller's concern.
type ActorRequest struct {
	Actor string `json:"actor"`
}

// RejectRequest carries the actor and the (possibly empty) reason.
type RejectRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// TeamWeekRequest asks for a weekly summary across users.
type TeamWeekRequest struct {
	UserIDs   []string `json:"user_ids"`
	WeekStart string   `json:"week_start"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toDayDTO(day *timesheet.TimesheetDay) DayDTO {
	dto := DayDTO{
		ID:        string(day.ID),
		UserID:    string(day.UserID),
		WorkDate:  day.WorkDate.String(),
		Status:    string(day.Status),
		Notes:     day.Notes,
		Persisted: day.Persisted(),
	}
	dto.EntryHours, _ = day.EntryHours.Float64()
	dto.UncodedHours, _ = day.UncodedHours.Float64()
	dto.EffectiveTotalHours, _ = day.EffectiveTotalHours.Float64()
	if day.DayHours != nil {
		v, _ := day.DayHours.Float64()
		dto.DayHours = &v
	}
	dto.RejectionReason = day.RejectionReason
	dto.RejectedBy = day.RejectedBy
	dto.ApprovedBy = day.ApprovedBy
	if day.ApprovedAt != nil {
		dto.ApprovedAt = day.ApprovedAt.Format(time.RFC3339)
	}
	if !day.UpdatedAt.IsZero() {
		dto.UpdatedAt = day.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toEntryDTO(entry *timesheet.TimeEntry) EntryDTO {
	dto := EntryDTO{
		ID:        string(entry.ID),
		DayID:     string(entry.DayID),
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}
	dto.Hours, _ = entry.Hours.Float64()
	if entry.TaskID != nil {
		v := string(*entry.TaskID)
		dto.TaskID = &v
	}
	return dto
}
