package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type MenuItem struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description pgtype.Text    `json:"description"`
	Price       pgtype.Numeric `json:"price"`
	Category    string         `json:"category"`
	Type        string         `json:"type"`
	Available   bool           `json:"available"`
	PrepTime    int32          `json:"prep_time"`
	Image       pgtype.Text    `json:"image"`
	CreatedAt   time.Time      `json:"created_at"`
}

type MenuItemRating struct {
	ID         uuid.UUID   `json:"id"`
	MenuItemID uuid.UUID   `json:"menu_item_id"`
	Rating     int32       `json:"rating"`
	Comment    pgtype.Text `json:"comment"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Order struct {
	ID            uuid.UUID          `json:"id"`
	TableNumber   int32              `json:"table_number"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	PaymentMethod pgtype.Text        `json:"payment_method"`
	Total         pgtype.Numeric     `json:"total"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CompletedAt   pgtype.Timestamptz `json:"completed_at"`
}

type OrderItem struct {
	ID         uuid.UUID      `json:"id"`
	OrderID    uuid.UUID      `json:"order_id"`
	MenuItemID pgtype.UUID    `json:"menu_item_id"`
	Name       string         `json:"name"`
	Quantity   int32          `json:"quantity"`
	Price      pgtype.Numeric `json:"price"`
	CreatedAt  time.Time      `json:"created_at"`
}
