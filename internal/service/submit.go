package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tableside/api/internal/cart"
	"github.com/tableside/api/internal/database"
	"github.com/tableside/api/internal/model"
	"github.com/tableside/api/internal/realtime"
)

// SubmitOrder turns the cart into one pending order for tableNumber.
//
// An empty cart or a missing table (0) is a no-op and returns nil, nil.
// Rows of the same menu item at the same price become one order item with
// quantity equal to the row count, so the sum of price × quantity always
// equals the order total. The cart is held for the whole submission and is
// cleared only when the transaction commits.
func (s *OrderService) SubmitOrder(ctx context.Context, c *cart.Cart, tableNumber int) (*model.Order, error) {
	if tableNumber == 0 {
		return nil, nil
	}
	if tableNumber < 1 || tableNumber > s.tableCount {
		return nil, &ValidationError{
			Field:   "table_number",
			Message: fmt.Sprintf("must be between 1 and %d", s.tableCount),
		}
	}

	var created *model.Order
	ran, err := c.Checkout(func(items []cart.Item) error {
		order, err := s.createOrderTx(ctx, tableNumber, items)
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !ran {
		return nil, nil
	}

	events := []realtime.Event{{Table: realtime.TableOrders, Op: "INSERT", ID: created.ID}}
	for _, it := range created.Items {
		events = append(events, realtime.Event{Table: realtime.TableOrderItems, Op: "INSERT", ID: it.ID})
	}
	s.afterWrite(ctx, events...)

	return created, nil
}

func (s *OrderService) createOrderTx(ctx context.Context, tableNumber int, items []cart.Item) (*model.Order, error) {
	total := cart.Total(items)
	lines := cart.Lines(items)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistErr("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	row, err := store.CreateOrder(ctx, database.CreateOrderParams{
		TableNumber: int32(tableNumber),
		Total:       model.DecimalToNumeric(total),
	})
	if err != nil {
		return nil, persistErr("create order", err)
	}

	order := model.OrderFromDB(row)
	for i, line := range lines {
		menu := line.MenuItem
		itemRow, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    row.ID,
			MenuItemID: pgtype.UUID{Bytes: menu.ID, Valid: true},
			Name:       menu.Name,
			Quantity:   int32(line.Quantity),
			Price:      model.DecimalToNumeric(line.UnitPrice),
		})
		if err != nil {
			return nil, persistErr(fmt.Sprintf("create order item[%d]", i), err)
		}
		item := model.OrderItemFromDB(itemRow)
		item.MenuItem = &menu
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistErr("commit tx", err)
	}

	return &order, nil
}
