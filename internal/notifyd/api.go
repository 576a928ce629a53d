package notifyd

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/daymark/daymark/internal/api/recovery"
	respond "github.com/daymark/daymark/internal/api/respond"
	"github.com/daymark/daymark/internal/notify"
)

// API is the daemon's HTTP surface. The service side never touches the
// registry directly; everything goes through these routes.
type API struct {
	reg     *Registry
	granted bool
	logger  zerolog.Logger
}

// NewAPI builds the HTTP layer. grantPermission is the daemon-wide
// answer to permission requests, so denied-permission flows can be
// exercised against a real daemon.
func NewAPI(reg *Registry, grantPermission bool, logger zerolog.Logger) *API {
	return &API{reg: reg, granted: grantPermission, logger: logger}
}

// Router returns the daemon's route table.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery.Middleware)
	r.HandleFunc("/v1/permission/request", a.RequestPermission).Methods("POST")
	r.HandleFunc("/v1/notifications", a.Schedule).Methods("POST")
	r.HandleFunc("/v1/notifications", a.List).Methods("GET")
	r.HandleFunc("/v1/notifications/{handle}", a.Cancel).Methods("DELETE")
	r.HandleFunc("/v1/healthz", a.Healthz).Methods("GET")
	return r
}

// RequestPermission POST /v1/permission/request
func (a *API) RequestPermission(w http.ResponseWriter, r *http.Request) {
	a.logger.Info().Bool("granted", a.granted).Msg("permission requested")
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"granted": a.granted})
}

// Schedule POST /v1/notifications
func (a *API) Schedule(w http.ResponseWriter, r *http.Request) {
	var req notify.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := req.Trigger.Validate(); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := req.Correlation.Validate(); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	now := time.Now().UTC()
	var next time.Time
	if req.Trigger.At != nil {
		next = req.Trigger.At.UTC()
	} else {
		n, err := req.Trigger.Repeat.NextAfter(now)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		next = n
	}

	rec := Record{
		Handle:      uuid.NewString(),
		Trigger:     req.Trigger,
		Content:     req.Content,
		Correlation: req.Correlation,
		NextFireAt:  next,
		CreatedAt:   now,
	}
	if err := a.reg.Put(rec); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	a.logger.Info().
		Str("handle", rec.Handle).
		Str("type", rec.Correlation.Type).
		Time("next_fire_at", rec.NextFireAt).
		Msg("notification scheduled")
	respond.WriteJSON(w, http.StatusCreated, map[string]string{"handle": rec.Handle})
}

// Cancel DELETE /v1/notifications/{handle}
func (a *API) Cancel(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	if err := a.reg.Delete(handle); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	a.logger.Info().Str("handle", handle).Msg("notification cancelled")
	w.WriteHeader(http.StatusNoContent)
}

// List GET /v1/notifications
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	recs, err := a.reg.List()
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	out := make([]notify.Scheduled, 0, len(recs))
	for _, rec := range recs {
		out = append(out, notify.Scheduled{
			Handle:      rec.Handle,
			Correlation: rec.Correlation,
			Content:     rec.Content,
			NextFireAt:  rec.NextFireAt,
		})
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": out, "count": len(out)})
}

// Healthz GET /v1/healthz
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
