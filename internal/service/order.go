package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tableside/api/internal/database"
	"github.com/tableside/api/internal/enum"
	"github.com/tableside/api/internal/model"
	"github.com/tableside/api/internal/realtime"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create and advance orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, arg database.MarkOrderPaidParams) (database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Reloader refreshes the shared order snapshot after a write.
type Reloader interface {
	Reload(ctx context.Context) error
}

// strictTransitions is the linear lifecycle used when strict mode is on.
// delivered → completed is absent: only RecordPayment completes an order.
var strictTransitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusPreparing},
	enum.OrderStatusPreparing: {enum.OrderStatusReady},
	enum.OrderStatusReady:     {enum.OrderStatusDelivered},
}

// OrderService handles the order lifecycle: submission, status changes and
// payment. Every write is one transaction followed by a full reload.
type OrderService struct {
	pool       TxBeginner
	newStore   NewOrderStore
	reloader   Reloader
	publisher  realtime.Publisher
	tableCount int
	strict     bool
	now        func() time.Time
}

// Options tune an OrderService. Zero values give 20 tables, permissive
// status changes and no publishing.
type Options struct {
	TableCount        int
	StrictTransitions bool
	Publisher         realtime.Publisher
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore, reloader Reloader, opts Options) *OrderService {
	if opts.TableCount <= 0 {
		opts.TableCount = 20
	}
	if opts.Publisher == nil {
		opts.Publisher = realtime.NopPublisher{}
	}
	return &OrderService{
		pool:       pool,
		newStore:   newStore,
		reloader:   reloader,
		publisher:  opts.Publisher,
		tableCount: opts.TableCount,
		strict:     opts.StrictTransitions,
		now:        time.Now,
	}
}

// TableCount is the number of tables orders may be placed for.
func (s *OrderService) TableCount() int { return s.tableCount }

// AdvanceStatus moves an order to newStatus. Any known status is accepted
// unless strict transitions are enabled.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*model.Order, error) {
	if !enum.IsOrderStatus(newStatus) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistErr("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, persistErr("get order", err)
	}

	if s.strict && !transitionAllowed(current.Status, newStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", current.Status, newStatus, ErrTransitionNotAllowed)
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: newStatus,
		Now:    notBefore(s.now(), current.CreatedAt),
	})
	if err != nil {
		return nil, persistErr("update order status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistErr("commit tx", err)
	}

	s.afterWrite(ctx, realtime.Event{Table: realtime.TableOrders, Op: "UPDATE", ID: orderID})

	order := model.OrderFromDB(updated)
	return &order, nil
}

// RecordPayment settles a delivered order: payment_status becomes paid and
// status becomes completed in the same write. The row is locked while the
// guard is checked so two concurrent payments cannot both succeed.
func (s *OrderService) RecordPayment(ctx context.Context, orderID uuid.UUID, method string) (*model.Order, error) {
	if !enum.IsPaymentMethod(method) {
		return nil, &ValidationError{Field: "payment_method", Message: "must be cash or online"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistErr("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, persistErr("get order", err)
	}

	if current.Status != enum.OrderStatusDelivered || current.PaymentStatus != enum.PaymentStatusPending {
		return nil, ErrPaymentNotAllowed
	}

	paid, err := store.MarkOrderPaid(ctx, database.MarkOrderPaidParams{
		ID:            orderID,
		PaymentMethod: method,
		Now:           notBefore(s.now(), current.CreatedAt),
	})
	if err != nil {
		return nil, persistErr("mark order paid", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistErr("commit tx", err)
	}

	s.afterWrite(ctx, realtime.Event{Table: realtime.TableOrders, Op: "UPDATE", ID: orderID})

	order := model.OrderFromDB(paid)
	return &order, nil
}

// afterWrite announces committed changes and refreshes the snapshot. Both
// failures are logged only: the write itself already succeeded and the poll
// will catch up.
func (s *OrderService) afterWrite(ctx context.Context, events ...realtime.Event) {
	for _, e := range events {
		if err := s.publisher.Publish(ctx, e); err != nil {
			log.Printf("ERROR: publish %s change: %v", e.Table, err)
		}
	}
	if s.reloader == nil {
		return
	}
	if err := s.reloader.Reload(ctx); err != nil {
		log.Printf("ERROR: reload after write: %v", err)
	}
}

func transitionAllowed(from, to string) bool {
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func notBefore(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}
