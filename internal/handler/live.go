package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tableside/api/internal/ws"
)

// LiveHandler upgrades staff dashboards and table screens to websockets.
// Each connection first receives the current view, then every update.
type LiveHandler struct {
	hub         *ws.Hub
	broadcaster *ws.Broadcaster
	state       StateReader
	tableCount  int
}

func NewLiveHandler(hub *ws.Hub, broadcaster *ws.Broadcaster, state StateReader, tableCount int) *LiveHandler {
	return &LiveHandler{hub: hub, broadcaster: broadcaster, state: state, tableCount: tableCount}
}

// RegisterRoutes registers websocket endpoints. Expected mount: /ws
func (h *LiveHandler) RegisterRoutes(r chi.Router) {
	r.Get("/staff", h.Staff)
	r.Get("/tables/{table}", h.Table)
}

func (h *LiveHandler) Staff(w http.ResponseWriter, r *http.Request) {
	initial, err := h.broadcaster.StaffEvent(h.state.Snapshot())
	if err != nil {
		log.Printf("ERROR: build staff snapshot: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	ws.ServeWS(h.hub, ws.StaffRoom, initial, w, r)
}

func (h *LiveHandler) Table(w http.ResponseWriter, r *http.Request) {
	table, err := strconv.Atoi(chi.URLParam(r, "table"))
	if err != nil || table < 1 || table > h.tableCount {
		writeError(w, http.StatusBadRequest, "table must be between 1 and "+strconv.Itoa(h.tableCount))
		return
	}

	initial, err := h.broadcaster.TableEvent(h.state.Snapshot(), table)
	if err != nil {
		log.Printf("ERROR: build table snapshot: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	ws.ServeWS(h.hub, ws.TableRoom(table), initial, w, r)
}
