package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, table_number, status, payment_status, payment_method, total, created_at, updated_at, completed_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableNumber,
		&i.Status,
		&i.PaymentStatus,
		&i.PaymentMethod,
		&i.Total,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
`

func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderItemsWithMenu = `-- name: ListOrderItemsWithMenu :many
SELECT oi.id, oi.order_id, oi.menu_item_id, oi.name, oi.quantity, oi.price, oi.created_at,
       m.name, m.description, m.price, m.category, m.type, m.available, m.prep_time, m.image
FROM order_items oi
LEFT JOIN menu_items m ON m.id = oi.menu_item_id
ORDER BY oi.created_at, oi.id
`

type ListOrderItemsWithMenuRow struct {
	ID              uuid.UUID      `json:"id"`
	OrderID         uuid.UUID      `json:"order_id"`
	MenuItemID      pgtype.UUID    `json:"menu_item_id"`
	Name            string         `json:"name"`
	Quantity        int32          `json:"quantity"`
	Price           pgtype.Numeric `json:"price"`
	CreatedAt       time.Time      `json:"created_at"`
	MenuName        pgtype.Text    `json:"menu_name"`
	MenuDescription pgtype.Text    `json:"menu_description"`
	MenuPrice       pgtype.Numeric `json:"menu_price"`
	MenuCategory    pgtype.Text    `json:"menu_category"`
	MenuType        pgtype.Text    `json:"menu_type"`
	MenuAvailable   pgtype.Bool    `json:"menu_available"`
	MenuPrepTime    pgtype.Int4    `json:"menu_prep_time"`
	MenuImage       pgtype.Text    `json:"menu_image"`
}

func (q *Queries) ListOrderItemsWithMenu(ctx context.Context) ([]ListOrderItemsWithMenuRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsWithMenu)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrderItemsWithMenuRow
	for rows.Next() {
		var i ListOrderItemsWithMenuRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuItemID,
			&i.Name,
			&i.Quantity,
			&i.Price,
			&i.CreatedAt,
			&i.MenuName,
			&i.MenuDescription,
			&i.MenuPrice,
			&i.MenuCategory,
			&i.MenuType,
			&i.MenuAvailable,
			&i.MenuPrepTime,
			&i.MenuImage,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (table_number, total, status, payment_status)
VALUES ($1, $2, 'pending', 'pending')
RETURNING ` + orderColumns

type CreateOrderParams struct {
	TableNumber int32          `json:"table_number"`
	Total       pgtype.Numeric `json:"total"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder, arg.TableNumber, arg.Total))
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_item_id, name, quantity, price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, menu_item_id, name, quantity, price, created_at
`

type CreateOrderItemParams struct {
	OrderID    uuid.UUID      `json:"order_id"`
	MenuItemID pgtype.UUID    `json:"menu_item_id"`
	Name       string         `json:"name"`
	Quantity   int32          `json:"quantity"`
	Price      pgtype.Numeric `json:"price"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.Name,
		arg.Quantity,
		arg.Price,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.Name,
		&i.Quantity,
		&i.Price,
		&i.CreatedAt,
	)
	return i, err
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2,
    updated_at = GREATEST($3, created_at),
    completed_at = CASE WHEN $2 = 'completed' THEN GREATEST($3, created_at) ELSE completed_at END
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
	Now    time.Time `json:"now"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.Now))
}

const markOrderPaid = `-- name: MarkOrderPaid :one
UPDATE orders
SET payment_status = 'paid',
    payment_method = $2,
    status = 'completed',
    completed_at = GREATEST($3, created_at),
    updated_at = GREATEST($3, created_at)
WHERE id = $1
RETURNING ` + orderColumns

type MarkOrderPaidParams struct {
	ID            uuid.UUID `json:"id"`
	PaymentMethod string    `json:"payment_method"`
	Now           time.Time `json:"now"`
}

func (q *Queries) MarkOrderPaid(ctx context.Context, arg MarkOrderPaidParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderPaid, arg.ID, arg.PaymentMethod, arg.Now))
}
