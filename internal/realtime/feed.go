// Package realtime turns row-change notifications from the backend into
// reloads of the shared store.
package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Tables whose changes invalidate the order snapshot.
const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
)

// Event is one row change. Only the table matters to the bridge; Op and ID
// are carried for logging.
type Event struct {
	Table string    `json:"table"`
	Op    string    `json:"op"`
	ID    uuid.UUID `json:"id"`
}

// Subscription delivers events until Close is called or the underlying
// connection is lost, in which case Events is closed and Err reports why.
type Subscription interface {
	Events() <-chan Event
	Err() error
	Close() error
}

// Changefeed opens subscriptions on one or more tables.
type Changefeed interface {
	Subscribe(ctx context.Context, tables ...string) (Subscription, error)
}

// Publisher announces a row change made by this process. The Postgres feed
// gets its events from triggers, so it pairs with NopPublisher.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// SubscriptionError reports that a change subscription could not be opened
// or was lost.
type SubscriptionError struct {
	Channel string
	Err     error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription %s: %v", e.Channel, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

func channelName(table string) string {
	return table + "_changes"
}
