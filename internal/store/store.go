// Package store holds the process-wide snapshot of menu items and orders.
//
// Readers take an immutable Snapshot; writers go through Dispatch, which
// replaces the snapshot wholesale and notifies listeners.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tableside/api/internal/database"
	"github.com/tableside/api/internal/model"
)

// Querier is the read side of the database used to rebuild the snapshot.
// Satisfied by *database.Queries.
type Querier interface {
	ListMenuItems(ctx context.Context) ([]database.ListMenuItemsRow, error)
	ListOrders(ctx context.Context) ([]database.Order, error)
	ListOrderItemsWithMenu(ctx context.Context) ([]database.ListOrderItemsWithMenuRow, error)
}

// Snapshot must be treated as read-only; it is shared by every reader.
type Snapshot struct {
	MenuItems      []model.MenuItem
	Orders         []model.Order
	MenuLoadedAt   time.Time
	OrdersLoadedAt time.Time
}

// Action is a state transition applied by Dispatch.
type Action interface {
	apply(s *Snapshot)
}

type SetMenuItems struct {
	Items []model.MenuItem
	At    time.Time
}

func (a SetMenuItems) apply(s *Snapshot) {
	s.MenuItems = a.Items
	s.MenuLoadedAt = a.At
}

type SetOrders struct {
	Orders []model.Order
	At     time.Time
}

func (a SetOrders) apply(s *Snapshot) {
	s.Orders = a.Orders
	s.OrdersLoadedAt = a.At
}

// Listener is called after every dispatch with the new snapshot.
type Listener func(Snapshot)

type Store struct {
	q Querier

	mu        sync.RWMutex
	state     Snapshot
	listeners map[int]Listener
	nextID    int

	// reloadMu serializes loads so an older read never overwrites a newer one.
	reloadMu sync.Mutex
	now      func() time.Time
}

func New(q Querier) *Store {
	return &Store{
		q: q,
		state: Snapshot{
			MenuItems: []model.MenuItem{},
			Orders:    []model.Order{},
		},
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	next := s.state
	a.apply(&next)
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Reload re-reads every order with its items and their menu entries. On
// error the previous orders stay in place.
func (s *Store) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	orders, err := s.q.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	items, err := s.q.ListOrderItemsWithMenu(ctx)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}

	s.Dispatch(SetOrders{Orders: model.AssembleOrders(orders, items), At: s.now()})
	return nil
}

// ReloadMenu re-reads the menu with rating aggregates.
func (s *Store) ReloadMenu(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	rows, err := s.q.ListMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("list menu items: %w", err)
	}

	items := make([]model.MenuItem, len(rows))
	for i, r := range rows {
		items[i] = model.MenuItemFromRow(r)
	}
	s.Dispatch(SetMenuItems{Items: items, At: s.now()})
	return nil
}

// ReloadAll loads the menu and then the orders.
func (s *Store) ReloadAll(ctx context.Context) error {
	if err := s.ReloadMenu(ctx); err != nil {
		return err
	}
	return s.Reload(ctx)
}
