package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tableside/api/internal/model"
	"github.com/tableside/api/internal/service"
)

// OrderLifecycle is the write side of the order service used by staff.
// Satisfied by *service.OrderService.
type OrderLifecycle interface {
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error)
	RecordPayment(ctx context.Context, orderID uuid.UUID, method string) (*model.Order, error)
}

// OrderHandler handles the staff order endpoints.
type OrderHandler struct {
	state  StateReader
	svc    OrderLifecycle
	window time.Duration
	now    func() time.Time
}

// NewOrderHandler creates an OrderHandler. window bounds the recently
// completed list.
func NewOrderHandler(state StateReader, svc OrderLifecycle, window time.Duration) *OrderHandler {
	return &OrderHandler{state: state, svc: svc, window: window, now: time.Now}
}

// RegisterRoutes registers order endpoints. Expected mount: /orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/recent-completed", h.RecentCompleted)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/payment", h.RecordPayment)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type recordPaymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// List returns orders newest first. ?status=all (the default) means every
// order that is not completed.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := service.FilterOrders(h.state.Snapshot().Orders, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) RecentCompleted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.RecentlyCompleted(h.state.Snapshot().Orders, h.now(), h.window))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	if o := h.findOrder(id); o != nil {
		writeJSON(w, http.StatusOK, o)
		return
	}
	writeError(w, http.StatusNotFound, "order not found")
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req updateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.svc.AdvanceStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, h.withItems(order))
}

func (h *OrderHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req recordPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.svc.RecordPayment(r.Context(), id, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, "record payment", err)
		return
	}
	writeJSON(w, http.StatusOK, h.withItems(order))
}

func (h *OrderHandler) findOrder(id uuid.UUID) *model.Order {
	orders := h.state.Snapshot().Orders
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i]
		}
	}
	return nil
}

// withItems prefers the reloaded snapshot copy, which carries the items;
// the row returned by a write does not.
func (h *OrderHandler) withItems(o *model.Order) *model.Order {
	if fresh := h.findOrder(o.ID); fresh != nil && !fresh.UpdatedAt.Before(o.UpdatedAt) {
		return fresh
	}
	return o
}
