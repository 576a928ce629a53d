package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/daymark/daymark/internal/api/respond"
	"github.com/daymark/daymark/internal/api/validate"
	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/scheduling"
	"github.com/daymark/daymark/internal/services"
)

// reminderRequest is the body shared by reminder create and update.
type reminderRequest struct {
	Kind           string `json:"kind"`
	ScheduledTime  string `json:"scheduledTime"`
	RecurrenceRule string `json:"recurrenceRule,omitempty"`
}

// reminderResponse pairs the stored reminder with the scheduling outcome so
// callers can see whether a notification was actually placed.
type reminderResponse struct {
	Reminder   *model.Reminder   `json:"reminder"`
	Scheduling scheduling.Result `json:"scheduling"`
}

// ReminderHandler is a thin HTTP transport over ReminderService.
type ReminderHandler struct {
	svc *services.ReminderService
}

func NewReminderHandler(svc *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

// CreateReminder POST /api/events/{eventId}/reminders
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	at, err := validate.Reminder(req.Kind, req.ScheduledTime, req.RecurrenceRule)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	rem := &model.Reminder{
		EventID:       mux.Vars(r)["eventId"],
		Kind:          model.ReminderKind(req.Kind),
		ScheduledTime: at,
		Rule:          model.RecurrenceRule(req.RecurrenceRule),
	}
	out, res, err := h.svc.CreateReminder(r.Context(), rem)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, reminderResponse{Reminder: out, Scheduling: res})
}

// ListReminders GET /api/events/{eventId}/reminders?includePast=true
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	includePast := r.URL.Query().Get("includePast") == "true"
	rems, err := h.svc.ListReminders(r.Context(), mux.Vars(r)["eventId"], includePast)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"reminders": rems, "count": len(rems)})
}

// GetReminder GET /api/events/{eventId}/reminders/{reminderId}
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rem, err := h.svc.GetReminder(r.Context(), vars["eventId"], vars["reminderId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rem)
}

// UpdateReminder PUT /api/events/{eventId}/reminders/{reminderId}
func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	at, err := validate.Reminder(req.Kind, req.ScheduledTime, req.RecurrenceRule)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	rem := &model.Reminder{
		ReminderID:    vars["reminderId"],
		EventID:       vars["eventId"],
		Kind:          model.ReminderKind(req.Kind),
		ScheduledTime: at,
		Rule:          model.RecurrenceRule(req.RecurrenceRule),
	}
	out, res, err := h.svc.UpdateReminder(r.Context(), rem)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, reminderResponse{Reminder: out, Scheduling: res})
}

// DeleteReminder DELETE /api/events/{eventId}/reminders/{reminderId}
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteReminder(r.Context(), vars["eventId"], vars["reminderId"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
