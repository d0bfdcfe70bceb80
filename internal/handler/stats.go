package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tableside/api/internal/service"
)

type StatsHandler struct {
	state StateReader
	now   func() time.Time
}

func NewStatsHandler(state StateReader) *StatsHandler {
	return &StatsHandler{state: state, now: time.Now}
}

// RegisterRoutes registers stats endpoints. Expected mount: /stats
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Dashboard)
	r.Get("/analytics", h.Analytics)
}

// Dashboard returns the staff counters and revenue totals.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.ComputeStats(h.state.Snapshot().Orders, h.now()))
}

func (h *StatsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.Analyze(h.state.Snapshot().Orders, h.now()))
}
