package model

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tableside/api/internal/database"
)

func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

// TextFromString maps "" to SQL NULL.
func TextFromString(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// MenuItemFromRow converts a listing row (with rating aggregates).
func MenuItemFromRow(r database.ListMenuItemsRow) MenuItem {
	return MenuItem{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description.String,
		Price:         NumericToDecimal(r.Price),
		Category:      r.Category,
		Type:          r.Type,
		Available:     r.Available,
		PrepTime:      int(r.PrepTime),
		Image:         textPtr(r.Image),
		AverageRating: r.AverageRating,
		RatingCount:   r.RatingCount,
		CreatedAt:     r.CreatedAt,
	}
}

func MenuItemFromDB(m database.MenuItem) MenuItem {
	return MenuItem{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description.String,
		Price:       NumericToDecimal(m.Price),
		Category:    m.Category,
		Type:        m.Type,
		Available:   m.Available,
		PrepTime:    int(m.PrepTime),
		Image:       textPtr(m.Image),
		CreatedAt:   m.CreatedAt,
	}
}

// OrderFromDB converts an order row; Items is left empty.
func OrderFromDB(o database.Order) Order {
	order := Order{
		ID:            o.ID,
		TableNumber:   int(o.TableNumber),
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: textPtr(o.PaymentMethod),
		Total:         NumericToDecimal(o.Total),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         []OrderItem{},
	}
	if o.CompletedAt.Valid {
		t := o.CompletedAt.Time
		order.CompletedAt = &t
	}
	return order
}

func OrderItemFromDB(i database.OrderItem) OrderItem {
	item := OrderItem{
		ID:       i.ID,
		Name:     i.Name,
		Quantity: int(i.Quantity),
		Price:    NumericToDecimal(i.Price),
	}
	if i.MenuItemID.Valid {
		id := uuid.UUID(i.MenuItemID.Bytes)
		item.MenuItemID = &id
	}
	return item
}

// OrderItemFromJoinedRow converts an order item joined with its menu item.
func OrderItemFromJoinedRow(r database.ListOrderItemsWithMenuRow) OrderItem {
	item := OrderItem{
		ID:       r.ID,
		Name:     r.Name,
		Quantity: int(r.Quantity),
		Price:    NumericToDecimal(r.Price),
	}
	if r.MenuItemID.Valid {
		id := uuid.UUID(r.MenuItemID.Bytes)
		item.MenuItemID = &id
		item.MenuItem = &MenuItem{
			ID:          id,
			Name:        r.MenuName.String,
			Description: r.MenuDescription.String,
			Price:       NumericToDecimal(r.MenuPrice),
			Category:    r.MenuCategory.String,
			Type:        r.MenuType.String,
			Available:   r.MenuAvailable.Bool,
			PrepTime:    int(r.MenuPrepTime.Int32),
			Image:       textPtr(r.MenuImage),
		}
	}
	return item
}

// AssembleOrders attaches joined item rows to their orders, keeping the order
// of both inputs. Items whose order is not in orders are dropped.
func AssembleOrders(orders []database.Order, items []database.ListOrderItemsWithMenuRow) []Order {
	out := make([]Order, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		out[i] = OrderFromDB(o)
		index[o.ID] = i
	}
	for _, r := range items {
		if i, ok := index[r.OrderID]; ok {
			out[i].Items = append(out[i].Items, OrderItemFromJoinedRow(r))
		}
	}
	return out
}
