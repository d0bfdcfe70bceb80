// Package cart holds not-yet-submitted order rows for a customer session.
//
// Every row is exactly one unit of a menu item; adding three of a dish adds
// three rows with distinct cart ids, so removing a row always removes one unit.
package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tableside/api/internal/model"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be >= 0")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrItemNotFound    = errors.New("cart item not found")
)

// Item is a copy of a menu item plus a session-local row id.
type Item struct {
	model.MenuItem
	CartID string `json:"cart_id"`
}

// Line groups rows that share a menu item and unit price.
type Line struct {
	MenuItem  model.MenuItem
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total is UnitPrice × Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	mu    sync.Mutex
	items []Item
	newID func() string
}

func New() *Cart {
	return &Cart{newID: uuid.NewString}
}

// Add appends quantity one-unit rows for item and returns the new rows.
// A quantity of 0 adds a single row.
func (c *Cart) Add(item model.MenuItem, quantity int) ([]Item, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if !item.Available {
		return nil, ErrItemUnavailable
	}
	if quantity == 0 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	added := make([]Item, quantity)
	for i := range added {
		added[i] = Item{MenuItem: item, CartID: c.newID()}
	}
	c.items = append(c.items, added...)
	return added, nil
}

// Remove drops the single row with the given cart id.
func (c *Cart) Remove(cartID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, it := range c.items {
		if it.CartID == cartID {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Items returns a copy of the current rows in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.items)
}

// Checkout hands the current rows to fn while holding the cart, and empties
// the cart only if fn succeeds. It reports false without calling fn when the
// cart is empty. A concurrent second checkout waits and then sees the result
// of the first.
func (c *Cart) Checkout(fn func(items []Item) error) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return false, nil
	}
	snapshot := make([]Item, len(c.items))
	copy(snapshot, c.items)

	if err := fn(snapshot); err != nil {
		return true, err
	}
	c.items = nil
	return true, nil
}

// Total sums the price of every row.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}

// Lines aggregates rows by (menu item, unit price), in first-added order.
func Lines(items []Item) []Line {
	type key struct {
		id    uuid.UUID
		price string
	}
	var lines []Line
	index := make(map[key]int)
	for _, it := range items {
		k := key{id: it.ID, price: it.Price.String()}
		if i, ok := index[k]; ok {
			lines[i].Quantity++
			continue
		}
		index[k] = len(lines)
		lines = append(lines, Line{MenuItem: it.MenuItem, Quantity: 1, UnitPrice: it.Price})
	}
	return lines
}
