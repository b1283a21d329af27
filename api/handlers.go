/*
handlers.go - HTTP API handlers for the timesheet engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the timesheet service.

ENDPOINTS:
  Days:
    GET    /api/users/{userID}/days/{date}          Get day (virtual or persisted)
    PUT    /api/users/{userID}/days/{date}          Upsert day fields
    POST   /api/users/{userID}/days/{date}/entries  Add entry
    GET    /api/days/{dayID}/entries                List entries
    DELETE /api/entries/{entryID}                   Delete entry

  Transitions:
    POST   /api/days/{dayID}/submit
    POST   /api/days/{dayID}/approve
    POST   /api/days/{dayID}/reject
    POST   /api/days/{dayID}/release

  Reporting:
    GET    /api/users/{userID}/week?start=YYYY-MM-DD
    POST   /api/teams/week

ERROR HANDLING:
  Engine errors are mapped to JSON with appropriate HTTP status:
  - 400: Validation errors, malformed input
  - 404: Day or entry not found
  - 409: Day locked (payload carries the locking status)
  - 422: Invalid status transition
  - 500: Internal errors

AUTHORIZATION:
  Approve/reject accept an actor identifier and record it; the API performs
  no role checks. Gate these routes at the deployment boundary.

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vineops/timesheet-engine/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *timesheet.Service
	Log     zerolog.Logger
}

// NewHandler creates a new handler around the service.
func NewHandler(service *timesheet.Service, log zerolog.Logger) *Handler {
	return &Handler{Service: service, Log: log}
}

// =============================================================================
// DAY HANDLERS
// =============================================================================

// GetDay returns the day for (user, date), virtual if not yet persisted.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	userID := timesheet.UserID(chi.URLParam(r, "userID"))
	date, err := timesheet.ParseWorkDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	day, err := h.Service.GetDay(r.Context(), userID, date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// UpsertDay creates or updates the day's declared total and notes.
func (h *Handler) UpsertDay(w http.ResponseWriter, r *http.Request) {
	userID := timesheet.UserID(chi.URLParam(r, "userID"))
	date, err := timesheet.ParseWorkDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var req UpsertDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := timesheet.UpsertDayInput{
		ClearDayHours: req.ClearDayHours,
		Notes:         req.Notes,
	}
	if req.DayHours != nil {
		v := decimal.NewFromFloat(*req.DayHours)
		in.DayHours = &v
	}

	day, err := h.Service.UpsertDay(r.Context(), userID, date, in)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// AddEntry creates a time entry, creating the owning day implicitly.
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	userID := timesheet.UserID(chi.URLParam(r, "userID"))
	date, err := timesheet.ParseWorkDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var taskID *timesheet.TaskID
	if req.TaskID != nil {
		v := timesheet.TaskID(*req.TaskID)
		taskID = &v
	}

	entry, err := h.Service.AddEntry(r.Context(), userID, date, taskID, decimal.NewFromFloat(req.Hours))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// ListEntries returns all entries for a day id.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	dayID := timesheet.DayID(chi.URLParam(r, "dayID"))

	entries, err := h.Service.ListEntries(r.Context(), dayID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteEntry removes an entry and reconciles its day.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID := timesheet.EntryID(chi.URLParam(r, "entryID"))

	if err := h.Service.DeleteEntry(r.Context(), entryID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSITION HANDLERS
// =============================================================================

// SubmitDay moves a draft day to submitted.
func (h *Handler) SubmitDay(w http.ResponseWriter, r *http.Request) {
	dayID := timesheet.DayID(chi.URLParam(r, "dayID"))

	day, err := h.Service.SubmitDay(r.Context(), dayID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// ApproveDay moves a submitted day to approved.
func (h *Handler) ApproveDay(w http.ResponseWriter, r *http.Request) {
	dayID := timesheet.DayID(chi.URLParam(r, "dayID"))

	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day, err := h.Service.ApproveDay(r.Context(), dayID, req.Actor)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// RejectDay moves a submitted day to rejected, recording the reason.
func (h *Handler) RejectDay(w http.ResponseWriter, r *http.Request) {
	dayID := timesheet.DayID(chi.URLParam(r, "dayID"))

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day, err := h.Service.RejectDay(r.Context(), dayID, req.Actor, req.Reason)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// ReleaseDay returns an approved or rejected day to draft.
func (h *Handler) ReleaseDay(w http.ResponseWriter, r *http.Request) {
	dayID := timesheet.DayID(chi.URLParam(r, "dayID"))

	day, err := h.Service.ReleaseDay(r.Context(), dayID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// =============================================================================
// REPORTING HANDLERS
// =============================================================================

// WeeklyTotal returns a user's week rollup with per-day breakdown.
// GET /api/users/{userID}/week?start=YYYY-MM-DD
func (h *Handler) WeeklyTotal(w http.ResponseWriter, r *http.Request) {
	userID := timesheet.UserID(chi.URLParam(r, "userID"))
	weekStart, err := timesheet.ParseWorkDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing start (use YYYY-MM-DD)", err)
		return
	}

	report, err := h.Service.WeeklyTotal(r.Context(), userID, weekStart)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto := WeekDTO{
		UserID:    string(report.UserID),
		WeekStart: report.WeekStart.String(),
		Days:      make([]DayDTO, 0, len(report.Days)),
	}
	dto.Total, _ = report.Total.Float64()
	for _, day := range report.Days {
		dto.Days = append(dto.Days, toDayDTO(day))
	}
	writeJSON(w, http.StatusOK, dto)
}

// TeamWeeklySummary returns per-user totals and status counts for a window.
func (h *Handler) TeamWeeklySummary(w http.ResponseWriter, r *http.Request) {
	var req TeamWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.UserIDs) == 0 {
		writeError(w, http.StatusBadRequest, "At least one user id is required", nil)
		return
	}
	weekStart, err := timesheet.ParseWorkDate(req.WeekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week_start (use YYYY-MM-DD)", err)
		return
	}

	userIDs := make([]timesheet.UserID, len(req.UserIDs))
	for i, id := range req.UserIDs {
		userIDs[i] = timesheet.UserID(id)
	}

	summaries, err := h.Service.TeamWeeklySummary(r.Context(), userIDs, weekStart)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	rows := make([]TeamWeekRowDTO, 0, len(summaries))
	for _, s := range summaries {
		row := TeamWeekRowDTO{
			UserID:       string(s.UserID),
			StatusCounts: make(map[string]int, len(s.StatusCounts)),
		}
		row.Total, _ = s.Total.Float64()
		for status, n := range s.StatusCounts {
			row.StatusCounts[string(status)] = n
		}
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, map[string]any{"week_start": weekStart.String(), "rows": rows})
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine error kinds to HTTP statuses. Lock and
// transition errors carry the day status so clients can explain the failure.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var lockErr *timesheet.DayLockedError
	if errors.As(err, &lockErr) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "Day is locked",
			Details: err.Error(),
			Status:  string(lockErr.Status),
		})
		return
	}

	var transErr *timesheet.InvalidTransitionError
	if errors.As(err, &transErr) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Invalid transition",
			Details: err.Error(),
			Status:  string(transErr.From),
		})
		return
	}

	switch {
	case errors.Is(err, timesheet.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, timesheet.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}
