package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/tableside/api/internal/database"
	"github.com/tableside/api/internal/handler"
	"github.com/tableside/api/internal/model"
	"github.com/tableside/api/internal/store"
)

// --- Mock store ---

type mockMenuStore struct {
	items   map[uuid.UUID]database.MenuItem
	ratings []database.CreateMenuItemRatingParams
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{items: make(map[uuid.UUID]database.MenuItem)}
}

func (m *mockMenuStore) CreateMenuItem(_ context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	item := database.MenuItem{
		ID:          uuid.New(),
		Name:        arg.Name,
		Description: arg.Description,
		Price:       arg.Price,
		Category:    arg.Category,
		Type:        arg.Type,
		Available:   arg.Available,
		PrepTime:    arg.PrepTime,
		Image:       arg.Image,
		CreatedAt:   time.Now(),
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuStore) UpdateMenuItem(_ context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	item.Name = arg.Name
	item.Price = arg.Price
	item.Available = arg.Available
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuStore) DeleteMenuItem(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.items[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.items, id)
	return id, nil
}

func (m *mockMenuStore) CreateMenuItemRating(_ context.Context, arg database.CreateMenuItemRatingParams) (database.MenuItemRating, error) {
	if _, ok := m.items[arg.MenuItemID]; !ok {
		return database.MenuItemRating{}, &pgconn.PgError{Code: "23503"}
	}
	m.ratings = append(m.ratings, arg)
	return database.MenuItemRating{
		ID:         uuid.New(),
		MenuItemID: arg.MenuItemID,
		Rating:     arg.Rating,
		Comment:    arg.Comment,
		CreatedAt:  time.Now(),
	}, nil
}

// --- Helpers ---

func setupMenuRouter(ms *mockMenuStore, state *mockState) *chi.Mux {
	h := handler.NewMenuHandler(ms, state)
	r := chi.NewRouter()
	r.Route("/menu-items", h.RegisterRoutes)
	return r
}

func validMenuBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Paneer Butter Masala",
		"description": "Cottage cheese in tomato gravy",
		"price":       "220.00",
		"category":    "Main Course",
		"type":        "veg",
		"prep_time":   20,
	}
}

func menuSnapshot() (store.Snapshot, model.MenuItem, model.MenuItem) {
	tea := model.MenuItem{ID: uuid.New(), Name: "Masala Chai", Price: decimal.NewFromInt(30), Category: "Tea & Coffee", Type: "veg", Available: true, PrepTime: 5, AverageRating: 4.5, RatingCount: 2}
	soup := model.MenuItem{ID: uuid.New(), Name: "Tomato Soup", Price: decimal.NewFromInt(90), Category: "Soups", Type: "veg", Available: false, PrepTime: 10}
	return store.Snapshot{MenuItems: []model.MenuItem{tea, soup}}, tea, soup
}

// --- List / Get ---

func TestMenuList_Filters(t *testing.T) {
	snap, tea, _ := menuSnapshot()
	router := setupMenuRouter(newMockMenuStore(), &mockState{snap: snap})

	rr := doRequest(t, router, "GET", "/menu-items", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if got := decodeListResponse(t, rr); len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}

	rr = doRequest(t, router, "GET", "/menu-items?available=true", nil)
	got := decodeListResponse(t, rr)
	if len(got) != 1 || got[0]["id"] != tea.ID.String() {
		t.Errorf("expected only the available item, got %v", got)
	}
	if got[0]["average_rating"] != 4.5 {
		t.Errorf("expected average_rating 4.5, got %v", got[0]["average_rating"])
	}

	rr = doRequest(t, router, "GET", "/menu-items?category=Soups", nil)
	if got := decodeListResponse(t, rr); len(got) != 1 || got[0]["name"] != "Tomato Soup" {
		t.Errorf("expected soups only, got %v", got)
	}

	rr = doRequest(t, router, "GET", "/menu-items?available=maybe", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuGet(t *testing.T) {
	snap, tea, _ := menuSnapshot()
	router := setupMenuRouter(newMockMenuStore(), &mockState{snap: snap})

	rr := doRequest(t, router, "GET", "/menu-items/"+tea.ID.String(), nil)
	if rr.Code != http.StatusOK || decodeResponse(t, rr)["name"] != "Masala Chai" {
		t.Errorf("unexpected response: %d %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, router, "GET", "/menu-items/"+uuid.New().String(), nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = doRequest(t, router, "GET", "/menu-items/not-a-uuid", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Create / Update / Delete ---

func TestMenuCreate_Valid(t *testing.T) {
	ms := newMockMenuStore()
	state := &mockState{}
	router := setupMenuRouter(ms, state)

	rr := doRequest(t, router, "POST", "/menu-items", validMenuBody())
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["name"] != "Paneer Butter Masala" {
		t.Errorf("unexpected name: %v", resp["name"])
	}
	price, err := decimal.NewFromString(resp["price"].(string))
	if err != nil || !price.Equal(decimal.NewFromInt(220)) {
		t.Errorf("expected price 220, got %v", resp["price"])
	}
	if resp["available"] != true {
		t.Errorf("available should default to true, got %v", resp["available"])
	}
	if len(ms.items) != 1 {
		t.Errorf("expected 1 stored item, got %d", len(ms.items))
	}
	if state.reloadMenuCalls != 1 {
		t.Errorf("expected menu reload, got %d", state.reloadMenuCalls)
	}
}

func TestMenuCreate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing name", func(b map[string]interface{}) { delete(b, "name") }},
		{"unknown category", func(b map[string]interface{}) { b["category"] = "Sushi" }},
		{"bad type", func(b map[string]interface{}) { b["type"] = "vegan" }},
		{"zero prep time", func(b map[string]interface{}) { b["prep_time"] = 0 }},
		{"negative price", func(b map[string]interface{}) { b["price"] = "-1" }},
		{"bad image url", func(b map[string]interface{}) { b["image"] = "not a url" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ms := newMockMenuStore()
			router := setupMenuRouter(ms, &mockState{})
			body := validMenuBody()
			tc.mutate(body)

			rr := doRequest(t, router, "POST", "/menu-items", body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
			}
			if len(ms.items) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestMenuCreate_ValidationDetailsUseJSONNames(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore(), &mockState{})
	body := validMenuBody()
	delete(body, "prep_time")

	rr := doRequest(t, router, "POST", "/menu-items", body)
	resp := decodeResponse(t, rr)
	details, _ := resp["details"].([]interface{})
	if len(details) != 1 || details[0] != "prep_time is required" {
		t.Errorf("unexpected details: %v", resp["details"])
	}
}

func TestMenuUpdate(t *testing.T) {
	ms := newMockMenuStore()
	created, _ := ms.CreateMenuItem(context.Background(), database.CreateMenuItemParams{Name: "Old", Category: "Soups", Type: "veg", PrepTime: 5, Available: true})
	state := &mockState{}
	router := setupMenuRouter(ms, state)

	body := validMenuBody()
	body["available"] = false
	rr := doRequest(t, router, "PUT", "/menu-items/"+created.ID.String(), body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if ms.items[created.ID].Available {
		t.Error("item should now be unavailable")
	}

	rr = doRequest(t, router, "PUT", "/menu-items/"+uuid.New().String(), validMenuBody())
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMenuDelete(t *testing.T) {
	ms := newMockMenuStore()
	created, _ := ms.CreateMenuItem(context.Background(), database.CreateMenuItemParams{Name: "Gone", Category: "Soups", Type: "veg", PrepTime: 5})
	state := &mockState{}
	router := setupMenuRouter(ms, state)

	rr := doRequest(t, router, "DELETE", "/menu-items/"+created.ID.String(), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if state.reloadMenuCalls != 1 || state.reloadCalls != 1 {
		t.Errorf("expected menu and order reloads, got %d/%d", state.reloadMenuCalls, state.reloadCalls)
	}

	rr = doRequest(t, router, "DELETE", "/menu-items/"+created.ID.String(), nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Ratings ---

func TestMenuRate(t *testing.T) {
	ms := newMockMenuStore()
	created, _ := ms.CreateMenuItem(context.Background(), database.CreateMenuItemParams{Name: "Dosa", Category: "Dosas", Type: "veg", PrepTime: 10})
	state := &mockState{}
	router := setupMenuRouter(ms, state)
	path := "/menu-items/" + created.ID.String() + "/ratings"

	rr := doRequest(t, router, "POST", path, map[string]interface{}{"rating": 5, "comment": "crispy"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if len(ms.ratings) != 1 || ms.ratings[0].Comment.String != "crispy" {
		t.Errorf("rating not stored: %+v", ms.ratings)
	}
	if state.reloadMenuCalls != 1 {
		t.Error("ratings change the menu averages and should reload it")
	}

	for _, body := range []map[string]interface{}{
		{"rating": 0},
		{"rating": 6},
		{"rating": 3, "comment": strings.Repeat("a", 201)},
	} {
		rr := doRequest(t, router, "POST", path, body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %v: status got %d, want %d", body, rr.Code, http.StatusBadRequest)
		}
	}

	rr = doRequest(t, router, "POST", "/menu-items/"+uuid.New().String()+"/ratings", map[string]interface{}{"rating": 4})
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
