package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/tableside/api/internal/cart"
	"github.com/tableside/api/internal/config"
	"github.com/tableside/api/internal/database"
	"github.com/tableside/api/internal/jobs"
	"github.com/tableside/api/internal/realtime"
	"github.com/tableside/api/internal/router"
	"github.com/tableside/api/internal/service"
	"github.com/tableside/api/internal/store"
	"github.com/tableside/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations applied")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	queries := database.New(pool)
	state := store.New(queries)
	if err := state.ReloadAll(ctx); err != nil {
		log.Fatalf("Failed to load menu and orders: %v", err)
	}

	feed, publisher, closeFeed, err := newChangefeed(cfg, pool)
	if err != nil {
		log.Fatalf("Failed to set up changefeed: %v", err)
	}
	defer closeFeed()

	orders := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, state, service.Options{
		TableCount:        cfg.TableCount,
		StrictTransitions: cfg.StrictStatusTransitions,
		Publisher:         publisher,
	})

	hub := ws.NewHub()
	broadcaster := ws.NewBroadcaster(hub, cfg.TableCount)
	unsubscribe := state.Subscribe(broadcaster.OnSnapshot)
	defer unsubscribe()

	bridge := realtime.NewBridge(feed, state, realtime.BridgeOptions{
		MinInterval: cfg.ReloadMinInterval,
		Backoff:     cfg.ResubscribeBackoff,
	})

	carts := cart.NewRegistry()
	scheduler, err := jobs.Start(jobs.Config{
		PollInterval:  cfg.PollInterval,
		SweepInterval: cfg.CartSweepInterval,
		CartIdleTTL:   cfg.CartIdleTTL,
	}, bridge, carts)
	if err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		bridge.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, queries, state, orders, carts, hub, broadcaster),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (changefeed: %s, tables: %d)", cfg.Port, cfg.ChangefeedDriver, cfg.TableCount)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: http shutdown: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("ERROR: scheduler shutdown: %v", err)
	}
	wg.Wait()
}

// newChangefeed picks the change event source. With postgres the database
// notifies on its own and the service publishes nothing; with redis the
// service publishes every write to the same channels it subscribes to.
func newChangefeed(cfg *config.Config, pool *pgxpool.Pool) (realtime.Changefeed, realtime.Publisher, func(), error) {
	switch cfg.ChangefeedDriver {
	case "postgres":
		return realtime.NewPGFeed(pool), realtime.NopPublisher{}, func() {}, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		feed := realtime.NewRedisFeed(client)
		return feed, feed, func() {
			if err := client.Close(); err != nil {
				log.Printf("ERROR: close redis: %v", err)
			}
		}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown CHANGEFEED_DRIVER %q", cfg.ChangefeedDriver)
	}
}
