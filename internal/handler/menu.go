package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/tableside/api/internal/database"
	"github.com/tableside/api/internal/model"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CreateMenuItemRating(ctx context.Context, arg database.CreateMenuItemRatingParams) (database.MenuItemRating, error)
}

// MenuHandler serves the menu to customers and menu management to staff.
// Reads come from the shared snapshot; writes go to the database and then
// refresh it.
type MenuHandler struct {
	store MenuStore
	state StateReader
}

func NewMenuHandler(store MenuStore, state StateReader) *MenuHandler {
	return &MenuHandler{store: store, state: state}
}

// RegisterRoutes registers menu endpoints. Expected mount: /menu-items
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/ratings", h.Rate)
}

// --- Request types ---

type menuItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required,menu_category"`
	Type        string          `json:"type" validate:"required,oneof=veg non-veg"`
	Available   *bool           `json:"available"`
	PrepTime    int32           `json:"prep_time" validate:"required,gt=0"`
	Image       string          `json:"image" validate:"omitempty,url"`
}

type ratingRequest struct {
	Rating  int32  `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=200"`
}

func (req menuItemRequest) available() bool {
	return req.Available == nil || *req.Available
}

// --- Handlers ---

// List returns the menu. ?available=true hides unavailable items and
// ?category= narrows to one category.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyAvailable := false
	if v := r.URL.Query().Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid available filter")
			return
		}
		onlyAvailable = b
	}
	category := r.URL.Query().Get("category")

	items := []model.MenuItem{}
	for _, m := range h.state.Snapshot().MenuItems {
		if onlyAvailable && !m.Available {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		items = append(items, m)
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}
	for _, m := range h.state.Snapshot().MenuItems {
		if m.ID == id {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	writeError(w, http.StatusNotFound, "menu item not found")
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must be >= 0")
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:        req.Name,
		Description: model.TextFromString(req.Description),
		Price:       model.DecimalToNumeric(req.Price),
		Category:    req.Category,
		Type:        req.Type,
		Available:   req.available(),
		PrepTime:    req.PrepTime,
		Image:       model.TextFromString(req.Image),
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeError(w, http.StatusInternalServerError, "could not save changes, please retry")
		return
	}

	h.refreshMenu(r.Context())
	writeJSON(w, http.StatusCreated, model.MenuItemFromDB(item))
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	var req menuItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must be >= 0")
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          id,
		Name:        req.Name,
		Description: model.TextFromString(req.Description),
		Price:       model.DecimalToNumeric(req.Price),
		Category:    req.Category,
		Type:        req.Type,
		Available:   req.available(),
		PrepTime:    req.PrepTime,
		Image:       model.TextFromString(req.Image),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeError(w, http.StatusInternalServerError, "could not save changes, please retry")
		return
	}

	h.refreshMenu(r.Context())
	writeJSON(w, http.StatusOK, model.MenuItemFromDB(item))
}

// Delete removes a menu item. Past order items keep their name and price
// and lose only the link.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeError(w, http.StatusInternalServerError, "could not save changes, please retry")
		return
	}

	h.refreshMenu(r.Context())
	if err := h.state.Reload(r.Context()); err != nil {
		log.Printf("ERROR: reload orders after menu delete: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Rate stores a 1..5 rating with an optional short comment.
func (h *MenuHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu item ID")
		return
	}

	var req ratingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rating, err := h.store.CreateMenuItemRating(r.Context(), database.CreateMenuItemRatingParams{
		MenuItemID: id,
		Rating:     req.Rating,
		Comment:    model.TextFromString(req.Comment),
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		log.Printf("ERROR: create rating: %v", err)
		writeError(w, http.StatusInternalServerError, "could not save changes, please retry")
		return
	}

	h.refreshMenu(r.Context())
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":           rating.ID,
		"menu_item_id": rating.MenuItemID,
		"rating":       rating.Rating,
		"comment":      req.Comment,
		"created_at":   rating.CreatedAt,
	})
}

func (h *MenuHandler) refreshMenu(ctx context.Context) {
	if err := h.state.ReloadMenu(ctx); err != nil {
		log.Printf("ERROR: reload menu: %v", err)
	}
}

// isForeignKeyViolation checks for pgconn error code 23503.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
