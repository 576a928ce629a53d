package api

import (
	"net/http"
	"time"

	respond "github.com/daymark/daymark/internal/api/respond"
	"github.com/daymark/daymark/internal/api/validate"
	"github.com/daymark/daymark/internal/elapsed"
	"github.com/daymark/daymark/internal/model"
)

// ElapsedHandler handles GET /api/elapsed, a stateless formatter probe.
// It renders elapsed strings for an arbitrary start instant without
// touching the store.
type ElapsedHandler struct{}

func NewElapsedHandler() *ElapsedHandler { return &ElapsedHandler{} }

// Elapsed GET /api/elapsed?start=RFC3339&unit=days[&now=RFC3339]
// The now parameter pins the reference instant; it defaults to wall time.
func (h *ElapsedHandler) Elapsed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := validate.RFC3339("start", q.Get("start"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	unitStr := q.Get("unit")
	if unitStr == "" {
		unitStr = string(model.UnitDays)
	}
	if err := validate.Unit(unitStr); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	unit := model.Unit(unitStr)

	now := time.Now().UTC()
	if v := q.Get("now"); v != "" {
		now, err = validate.RFC3339("now", v)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"start":         start.Format(time.RFC3339),
		"unit":          unit,
		"totalDays":     elapsed.DaysBetween(start, now),
		"elapsed":       elapsed.Format(start, unit, now),
		"elapsedApprox": elapsed.FormatApprox(start, unit, now),
	})
}
