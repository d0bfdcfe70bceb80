package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tableside/api/internal/cart"
	"github.com/tableside/api/internal/config"
	"github.com/tableside/api/internal/database"
	"github.com/tableside/api/internal/handler"
	"github.com/tableside/api/internal/service"
	"github.com/tableside/api/internal/store"
	"github.com/tableside/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Customer routes (menu, carts, table screens) and staff routes share one
// tree; there is no authentication layer.
func New(
	cfg *config.Config,
	queries *database.Queries,
	state *store.Store,
	orders *service.OrderService,
	carts *cart.Registry,
	hub *ws.Hub,
	broadcaster *ws.Broadcaster,
) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	menuHandler := handler.NewMenuHandler(queries, state)
	r.Route("/menu-items", menuHandler.RegisterRoutes)

	orderHandler := handler.NewOrderHandler(state, orders, cfg.RecentCompletedWindow)
	r.Route("/orders", orderHandler.RegisterRoutes)

	tableHandler := handler.NewTableHandler(state, cfg.TableCount, cfg.PublicOrigin)
	r.Route("/tables", tableHandler.RegisterRoutes)

	cartHandler := handler.NewCartHandler(carts, state, orders)
	r.Route("/carts", cartHandler.RegisterRoutes)

	statsHandler := handler.NewStatsHandler(state)
	r.Route("/stats", statsHandler.RegisterRoutes)

	liveHandler := handler.NewLiveHandler(hub, broadcaster, state, cfg.TableCount)
	r.Route("/ws", liveHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}
