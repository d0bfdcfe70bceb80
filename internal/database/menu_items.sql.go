package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listMenuItems = `-- name: ListMenuItems :many
SELECT m.id, m.name, m.description, m.price, m.category, m.type, m.available, m.prep_time, m.image, m.created_at,
       COALESCE(AVG(r.rating), 0)::float8 AS average_rating,
       COUNT(r.id) AS rating_count
FROM menu_items m
LEFT JOIN menu_item_ratings r ON r.menu_item_id = m.id
GROUP BY m.id
ORDER BY m.category, m.name
`

type ListMenuItemsRow struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Description   pgtype.Text    `json:"description"`
	Price         pgtype.Numeric `json:"price"`
	Category      string         `json:"category"`
	Type          string         `json:"type"`
	Available     bool           `json:"available"`
	PrepTime      int32          `json:"prep_time"`
	Image         pgtype.Text    `json:"image"`
	CreatedAt     time.Time      `json:"created_at"`
	AverageRating float64        `json:"average_rating"`
	RatingCount   int64          `json:"rating_count"`
}

func (q *Queries) ListMenuItems(ctx context.Context) ([]ListMenuItemsRow, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMenuItemsRow
	for rows.Next() {
		var i ListMenuItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.Category,
			&i.Type,
			&i.Available,
			&i.PrepTime,
			&i.Image,
			&i.CreatedAt,
			&i.AverageRating,
			&i.RatingCount,
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

const getMenuItem = `-- name: GetMenuItem :one
SELECT id, name, description, price, category, type, available, prep_time, image, created_at
FROM menu_items
WHERE id = $1
`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, id)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.Category,
		&i.Type,
		&i.Available,
		&i.PrepTime,
		&i.Image,
		&i.CreatedAt,
	)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (name, description, price, category, type, available, prep_time, image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, name, description, price, category, type, available, prep_time, image, created_at
`

type CreateMenuItemParams struct {
	Name        string         `json:"name"`
	Description pgtype.Text    `json:"description"`
	Price       pgtype.Numeric `json:"price"`
	Category    string         `json:"category"`
	Type        string         `json:"type"`
	Available   bool           `json:"available"`
	PrepTime    int32          `json:"prep_time"`
	Image       pgtype.Text    `json:"image"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.Type,
		arg.Available,
		arg.PrepTime,
		arg.Image,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.Category,
		&i.Type,
		&i.Available,
		&i.PrepTime,
		&i.Image,
		&i.CreatedAt,
	)
	return i, err
}

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET name = $1, description = $2, price = $3, category = $4, type = $5,
    available = $6, prep_time = $7, image = $8
WHERE id = $9
RETURNING id, name, description, price, category, type, available, prep_time, image, created_at
`

type UpdateMenuItemParams struct {
	Name        string         `json:"name"`
	Description pgtype.Text    `json:"description"`
	Price       pgtype.Numeric `json:"price"`
	Category    string         `json:"category"`
	Type        string         `json:"type"`
	Available   bool           `json:"available"`
	PrepTime    int32          `json:"prep_time"`
	Image       pgtype.Text    `json:"image"`
	ID          uuid.UUID      `json:"id"`
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.Type,
		arg.Available,
		arg.PrepTime,
		arg.Image,
		arg.ID,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.Category,
		&i.Type,
		&i.Available,
		&i.PrepTime,
		&i.Image,
		&i.CreatedAt,
	)
	return i, err
}

const deleteMenuItem = `-- name: DeleteMenuItem :one
DELETE FROM menu_items
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteMenuItem, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}

const createMenuItemRating = `-- name: CreateMenuItemRating :one
INSERT INTO menu_item_ratings (menu_item_id, rating, comment)
VALUES ($1, $2, $3)
RETURNING id, menu_item_id, rating, comment, created_at
`

type CreateMenuItemRatingParams struct {
	MenuItemID uuid.UUID   `json:"menu_item_id"`
	Rating     int32       `json:"rating"`
	Comment    pgtype.Text `json:"comment"`
}

func (q *Queries) CreateMenuItemRating(ctx context.Context, arg CreateMenuItemRatingParams) (MenuItemRating, error) {
	row := q.db.QueryRow(ctx, createMenuItemRating, arg.MenuItemID, arg.Rating, arg.Comment)
	var i MenuItemRating
	err := row.Scan(
		&i.ID,
		&i.MenuItemID,
		&i.Rating,
		&i.Comment,
		&i.CreatedAt,
	)
	return i, err
}
