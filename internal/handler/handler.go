// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nycd79/borough-bash/internal/model"
	"github.com/nycd79/borough-bash/internal/notify"
	"github.com/nycd79/borough-bash/internal/repository"
	"github.com/nycd79/borough-bash/internal/schedule"
	"github.com/nycd79/borough-bash/internal/service"
)

// RegistrationHandler holds all HTTP handlers for the registration API.
type RegistrationHandler struct {
	svc      *service.RegistrationService
	schedule *schedule.Schedule
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService, sched *schedule.Schedule) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, schedule: sched}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "registration not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeError(w, http.StatusConflict,
			"This email is already registered. Only one registration per person is allowed.")
	case errors.Is(err, service.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "borough is at capacity")
	case errors.Is(err, repository.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest,
			"cannot set max capacity below the current confirmed count")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "request failed, please try again")
	}
}

// ─── Public handlers ──────────────────────────────────────────────────────────

// Submit handles POST /register
// Places the registrant in the confirmed or waiting-list bucket for their
// borough, depending on remaining capacity.
func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !h.schedule.Open() {
		writeError(w, http.StatusServiceUnavailable, h.schedule.ClosedMessage())
		return
	}

	var req model.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// WindowStatus handles GET /register/status
// Reports whether the submission window is open.
func (h *RegistrationHandler) WindowStatus(w http.ResponseWriter, r *http.Request) {
	var opensAt *string
	if t := h.schedule.OpensAt(); !t.IsZero() {
		s := t.UTC().Format(time.RFC3339)
		opensAt = &s
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"open":      h.schedule.Open(),
		"opens_at":  opensAt,
		"postponed": h.schedule.Postponed(),
	})
}

// WaitingListEmail handles POST /email/waiting-list
// Returns the composed waiting-list email as {subject, body} for the
// mail-flow integration to render.
func (h *RegistrationHandler) WaitingListEmail(w http.ResponseWriter, r *http.Request) {
	var p notify.Payload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if p.FirstName == "" || p.LastName == "" || p.Email == "" {
		writeError(w, http.StatusBadRequest, "first_name, last_name and email are required")
		return
	}
	writeJSON(w, http.StatusOK, notify.WaitingListEmail(p))
}

// ─── Admin handlers ───────────────────────────────────────────────────────────

// Roster handles GET /admin/registrations
// Returns all registrations, the per-borough confirmed/waiting split, and
// the counts table.
func (h *RegistrationHandler) Roster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.svc.Roster(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load registrations")
		return
	}
	if roster.Registrations == nil {
		roster.Registrations = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, roster)
}

// Update handles PATCH /admin/registrations/{id}
// Applies a partial edit; status and region changes reconcile the capacity
// ledger.
func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch model.UpdateRequest
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updated, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /admin/registrations/{id}
// Removes a registration, returning its confirmed seat first if it holds one.
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SetCapacity handles PATCH /admin/capacity
// Adjusts one borough's maximum confirmed seats.
func (h *RegistrationHandler) SetCapacity(w http.ResponseWriter, r *http.Request) {
	var req model.SetCapacityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SetCapacity(r.Context(), req.Region, req.MaxCapacity); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"max_capacity": req.MaxCapacity,
	})
}

// Counts handles GET /admin/capacity
// Returns every borough's confirmed/waiting/max summary.
func (h *RegistrationHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Counts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load counts")
		return
	}
	if counts == nil {
		counts = []model.RegionCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
