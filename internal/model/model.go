// Package model holds the in-memory views of menu items and orders that the
// store, services, handlers and websocket fan-out share.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	Type          string          `json:"type"`
	Available     bool            `json:"available"`
	PrepTime      int             `json:"prep_time"`
	Image         *string         `json:"image"`
	AverageRating float64         `json:"average_rating"`
	RatingCount   int64           `json:"rating_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	TableNumber   int             `json:"table_number"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod *string         `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem is one line of an order. Name and Price are the values captured
// when the order was placed; MenuItem is the live menu row, nil once deleted.
type OrderItem struct {
	ID         uuid.UUID       `json:"id"`
	MenuItemID *uuid.UUID      `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	MenuItem   *MenuItem       `json:"menu_item"`
}

// LineTotal is price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Category returns the live menu category, or "" when the menu item is gone.
func (i OrderItem) Category() string {
	if i.MenuItem == nil {
		return ""
	}
	return i.MenuItem.Category
}
