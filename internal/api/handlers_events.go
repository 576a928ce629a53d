package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	respond "github.com/daymark/daymark/internal/api/respond"
	"github.com/daymark/daymark/internal/api/validate"
	"github.com/daymark/daymark/internal/elapsed"
	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/services"
)

// eventRequest is the body shared by event create and update.
type eventRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	StartTime   string  `json:"startTime"`
	DisplayUnit string  `json:"displayUnit"`
	Pinned      bool    `json:"pinned"`
}

// eventResponse is a stored event with its elapsed strings rendered at
// response time.
type eventResponse struct {
	model.Event
	Elapsed       string `json:"elapsed"`
	ElapsedApprox string `json:"elapsedApprox"`
}

func toEventResponse(ev *model.Event, now time.Time) eventResponse {
	return eventResponse{
		Event:         *ev,
		Elapsed:       elapsed.Format(ev.StartTime, ev.DisplayUnit, now),
		ElapsedApprox: elapsed.FormatApprox(ev.StartTime, ev.DisplayUnit, now),
	}
}

// EventHandler is a thin HTTP transport over EventService.
type EventHandler struct {
	svc *services.EventService
}

func NewEventHandler(svc *services.EventService) *EventHandler { return &EventHandler{svc: svc} }

// CreateEvent POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	start, err := validate.Event(req.Title, req.Description, req.StartTime, req.DisplayUnit)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	ev := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		DisplayUnit: model.Unit(req.DisplayUnit),
		Pinned:      req.Pinned,
	}
	out, err := h.svc.CreateEvent(r.Context(), ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, toEventResponse(out, time.Now().UTC()))
}

// ListEvents GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	now := time.Now().UTC()
	rows := make([]eventResponse, 0, len(evs))
	for _, ev := range evs {
		rows = append(rows, toEventResponse(ev, now))
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": rows, "count": len(rows)})
}

// GetEvent GET /api/events/{eventId}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.GetEvent(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toEventResponse(ev, time.Now().UTC()))
}

// UpdateEvent PUT /api/events/{eventId}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	start, err := validate.Event(req.Title, req.Description, req.StartTime, req.DisplayUnit)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	ev := &model.Event{
		EventID:     mux.Vars(r)["eventId"],
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		DisplayUnit: model.Unit(req.DisplayUnit),
		Pinned:      req.Pinned,
	}
	out, err := h.svc.UpdateEvent(r.Context(), ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toEventResponse(out, time.Now().UTC()))
}

// DeleteEvent DELETE /api/events/{eventId}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), mux.Vars(r)["eventId"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMilestones GET /api/events/{eventId}/milestones
func (h *EventHandler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListMilestones(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"milestones": rows, "count": len(rows)})
}
