// Package cart holds a shopper's in-progress selection and keeps it durable
// through a Storage port.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StorageKey is the fixed key the cart snapshot is saved under.
const StorageKey = "cart"

// Item is one cart line. Items are unique by ID within a cart.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns Price × Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Product is what gets added to a cart.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Cart is the cart aggregate. It is not safe for concurrent use; callers
// load one per request.
type Cart struct {
	items   []Item
	storage Storage
	logger  *zap.Logger
}

// New returns an empty cart backed by storage.
func New(storage Storage, logger *zap.Logger) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cart{storage: storage, logger: logger}
}

// Load restores the cart from storage. A missing snapshot yields an empty
// cart. A snapshot that cannot be decoded is discarded and the cart starts
// empty.
func Load(ctx context.Context, storage Storage, logger *zap.Logger) (*Cart, error) {
	c := New(storage, logger)

	data, err := storage.Load(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("Discarding malformed cart snapshot", zap.Error(err))
		if err := storage.Delete(ctx, StorageKey); err != nil {
			c.logger.Warn("Failed to delete malformed cart snapshot", zap.Error(err))
		}
		return c, nil
	}

	// Drop lines that could never have been produced by AddItem and fold
	// repeated ids into the first line so ids stay unique.
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity <= 0 {
			continue
		}
		if i, ok := seen[item.ID]; ok {
			c.items[i].Quantity += item.Quantity
			continue
		}
		seen[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

// AddItem adds one unit of p. An existing line with the same id has its
// quantity incremented in place; otherwise a new line is appended.
func (c *Cart) AddItem(ctx context.Context, p Product) (Item, error) {
	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i].Quantity++
			return c.items[i], c.persist(ctx)
		}
	}

	item := Item{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1}
	c.items = append(c.items, item)
	return item, c.persist(ctx)
}

// RemoveItem drops the whole line with the given id, whatever its quantity.
// It reports whether a line was removed.
func (c *Cart) RemoveItem(ctx context.Context, id string) (bool, error) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true, c.persist(ctx)
		}
	}
	return false, nil
}

// Clear empties the cart and deletes the stored snapshot.
func (c *Cart) Clear(ctx context.Context) error {
	c.items = nil
	if err := c.storage.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the sum of Price × Quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count is the total number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) persist(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := c.storage.Save(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
