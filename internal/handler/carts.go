package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tableside/api/internal/cart"
	"github.com/tableside/api/internal/model"
)

// OrderSubmitter turns a cart into an order. Satisfied by *service.OrderService.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, c *cart.Cart, tableNumber int) (*model.Order, error)
	TableCount() int
}

// CartHandler exposes customer cart sessions. A session is opened for the
// table in the scanned QR link; table 0 means the customer arrived without one
// and may browse and fill a cart but not submit it.
type CartHandler struct {
	carts     *cart.Registry
	state     StateReader
	submitter OrderSubmitter
}

func NewCartHandler(carts *cart.Registry, state StateReader, submitter OrderSubmitter) *CartHandler {
	return &CartHandler{carts: carts, state: state, submitter: submitter}
}

// RegisterRoutes registers cart endpoints. Expected mount: /carts
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Open)
	r.Route("/{cid}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Delete("/items", h.Clear)
		r.Delete("/items/{rowID}", h.RemoveItem)
		r.Post("/submit", h.Submit)
	})
}

// --- Request / Response types ---

type openCartRequest struct {
	TableNumber int `json:"table_number" validate:"min=0"`
}

type addItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"min=0,max=50"`
}

type cartResponse struct {
	ID          uuid.UUID       `json:"id"`
	TableNumber int             `json:"table_number"`
	Items       []cart.Item     `json:"items"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
}

func toCartResponse(s *cart.Session) cartResponse {
	items := s.Cart.Items()
	return cartResponse{
		ID:          s.ID,
		TableNumber: s.TableNumber,
		Items:       items,
		Count:       len(items),
		Total:       cart.Total(items),
	}
}

type submitResponse struct {
	Submitted bool         `json:"submitted"`
	Order     *model.Order `json:"order"`
}

// --- Handlers ---

func (h *CartHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openCartRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.TableNumber > h.submitter.TableCount() {
		writeError(w, http.StatusBadRequest, "table_number is out of range")
		return
	}

	s := h.carts.Open(req.TableNumber)
	writeJSON(w, http.StatusCreated, toCartResponse(s))
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(s))
}

// AddItem adds quantity one-unit rows of a menu item (0 adds one).
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	menuID, _ := uuid.Parse(req.MenuItemID)

	item, found := h.menuItem(menuID)
	if !found {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	if _, err := s.Cart.Add(item, req.Quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrItemUnavailable):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(s))
}

// RemoveItem drops one row by its cart id.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Cart.Remove(chi.URLParam(r, "rowID")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Cart.Clear()
	writeJSON(w, http.StatusOK, toCartResponse(s))
}

// Submit places the cart as an order for the session's table. An empty
// cart or a session without a table submits nothing and reports so.
func (h *CartHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	order, err := h.submitter.SubmitOrder(r.Context(), s.Cart, s.TableNumber)
	if err != nil {
		writeServiceError(w, "submit order", err)
		return
	}
	if order == nil {
		writeJSON(w, http.StatusOK, submitResponse{Submitted: false})
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Submitted: true, Order: order})
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*cart.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart ID")
		return nil, false
	}
	s, ok := h.carts.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return nil, false
	}
	return s, true
}

func (h *CartHandler) menuItem(id uuid.UUID) (model.MenuItem, bool) {
	for _, m := range h.state.Snapshot().MenuItems {
		if m.ID == id {
			return m, true
		}
	}
	return model.MenuItem{}, false
}
