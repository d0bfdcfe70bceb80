package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tableside/api/internal/config"
	"github.com/tableside/api/internal/database"
	"github.com/tableside/api/internal/enum"
	"github.com/tableside/api/internal/model"
)

type sampleItem struct {
	name        string
	description string
	price       string
	category    string
	kind        string
	prepTime    int32
}

var sampleMenu = []sampleItem{
	{"Masala Chai", "Spiced milk tea", "30", "Tea & Coffee", enum.MenuTypeVeg, 5},
	{"Cold Coffee", "Blended with ice cream", "120", "Tea & Coffee", enum.MenuTypeVeg, 5},
	{"Tomato Soup", "With croutons", "110", "Soups", enum.MenuTypeVeg, 10},
	{"Paneer Tikka", "Tandoor-grilled cottage cheese", "240", "Starters", enum.MenuTypeVeg, 20},
	{"Chicken Burger", "Grilled patty, lettuce, mayo", "180", "Burgers", enum.MenuTypeNonVeg, 15},
	{"Margherita Pizza", "Tomato, mozzarella, basil", "260", "Pizza", enum.MenuTypeVeg, 20},
	{"Masala Dosa", "With sambar and chutney", "140", "Dosas", enum.MenuTypeVeg, 15},
	{"Veg Biryani", "Served with raita", "220", "Rice / Pulao / Biryanis / Raitas", enum.MenuTypeVeg, 25},
	{"Butter Naan", "", "45", "Breads", enum.MenuTypeVeg, 8},
	{"Gulab Jamun", "Two pieces", "80", "Dessert", enum.MenuTypeVeg, 5},
}

func main() {
	dbURL := flag.String("database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	migrate := flag.Bool("migrate", true, "Apply pending migrations first")
	flag.Parse()

	cfg := config.Load()
	if *dbURL == "" {
		*dbURL = cfg.DatabaseURL
	}

	if *migrate {
		if err := database.Migrate(*dbURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, *dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// One transaction: the whole sample menu or none of it.
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	created := 0
	for _, item := range sampleMenu {
		ok, err := seedMenuItem(ctx, tx, item)
		if err != nil {
			log.Fatalf("Failed to seed %q: %v", item.name, err)
		}
		if ok {
			created++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Printf("Seed completed: %d created, %d already present", created, len(sampleMenu)-created)
}

// seedMenuItem creates the item unless one with the same name exists.
func seedMenuItem(ctx context.Context, tx pgx.Tx, item sampleItem) (bool, error) {
	var existingID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM menu_items WHERE name = $1 LIMIT 1`, item.name).Scan(&existingID)
	if err == nil {
		log.Printf("Menu item '%s' already exists (ID: %s), skipping", item.name, existingID)
		return false, nil
	}
	if err != pgx.ErrNoRows {
		return false, fmt.Errorf("check menu item: %w", err)
	}

	price, err := decimal.NewFromString(item.price)
	if err != nil {
		return false, fmt.Errorf("parse price: %w", err)
	}
	if !enum.IsMenuCategory(item.category) {
		return false, fmt.Errorf("unknown category %q", item.category)
	}

	row, err := database.New(tx).CreateMenuItem(ctx, database.CreateMenuItemParams{
		Name:        item.name,
		Description: model.TextFromString(item.description),
		Price:       model.DecimalToNumeric(price),
		Category:    item.category,
		Type:        item.kind,
		Available:   true,
		PrepTime:    item.prepTime,
	})
	if err != nil {
		return false, fmt.Errorf("insert menu item: %w", err)
	}

	log.Printf("Created menu item '%s' (ID: %s)", row.Name, row.ID)
	return true, nil
}
