package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tableside/api/internal/qr"
	"github.com/tableside/api/internal/service"
)

// TableHandler serves occupancy, per-table orders and the QR links that
// bind a table to its menu URL.
type TableHandler struct {
	state      StateReader
	tableCount int
	origin     string
}

func NewTableHandler(state StateReader, tableCount int, origin string) *TableHandler {
	return &TableHandler{state: state, tableCount: tableCount, origin: origin}
}

// RegisterRoutes registers table endpoints. Expected mount: /tables
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{table}/order", h.CurrentOrder)
	r.Get("/{table}/qr", h.QRCode)
	r.Get("/{table}/qr-url", h.QRURL)
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.DeriveTableOccupancy(h.state.Snapshot().Orders, h.tableCount))
}

// CurrentOrder returns the table's newest active order, or null.
func (h *TableHandler) CurrentOrder(w http.ResponseWriter, r *http.Request) {
	table, ok := h.parseTable(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, service.CurrentTableOrder(h.state.Snapshot().Orders, table))
}

func (h *TableHandler) QRURL(w http.ResponseWriter, r *http.Request) {
	table, ok := h.parseTable(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table_number": table,
		"url":          qr.MenuURL(h.origin, table),
	})
}

// QRCode renders the table's menu URL as a PNG. ?size= sets the edge in
// pixels (64..1024).
func (h *TableHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	table, ok := h.parseTable(w, r)
	if !ok {
		return
	}

	size := qr.DefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			writeError(w, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = n
	}

	png, err := qr.PNG(qr.MenuURL(h.origin, table), size)
	if err != nil {
		log.Printf("ERROR: render qr for table %d: %v", table, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+qr.FileName(table)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("ERROR: write qr png: %v", err)
	}
}

func (h *TableHandler) parseTable(w http.ResponseWriter, r *http.Request) (int, bool) {
	table, err := strconv.Atoi(chi.URLParam(r, "table"))
	if err != nil || table < 1 || table > h.tableCount {
		writeError(w, http.StatusBadRequest, "table must be between 1 and "+strconv.Itoa(h.tableCount))
		return 0, false
	}
	return table, true
}
