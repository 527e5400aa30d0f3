// Package cart keeps a shopper's cart as an ordered list of line items backed
// by a pluggable storage adapter.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// Item is a cart line. ID is the product id and is unique within a cart.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	PriceRM  decimal.Decimal `json:"priceRM"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.PriceRM.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// View is the serialisable state of a cart.
type View struct {
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
	Count           int             `json:"count"`
}

// Cart serialises mutations and writes the full item list after each one.
type Cart struct {
	mu      sync.Mutex
	storage Storage
	logg    *logger.Logger
	items   []Item
}

// New builds an empty cart over storage. Call Load to read persisted items.
func New(storage Storage, logg *logger.Logger) *Cart {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Cart{storage: storage, logg: logg}
}

// Load replaces the in-memory items with the persisted ones. Undecodable data
// is logged and treated as an empty cart.
func (c *Cart) Load(ctx context.Context) error {
	raw, err := c.storage.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	if len(raw) == 0 {
		return nil
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "cart.decode_failed")
		}
		return nil
	}
	c.items = normalize(items)
	return nil
}

// AddItem merges into an existing line by id or appends a new one.
func (c *Cart) AddItem(ctx context.Context, item Item) error {
	item.ID = strings.TrimSpace(item.ID)
	if err := validateItem(item); err != nil {
		return err
	}

	return c.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].ID == item.ID {
				items[i].Quantity += item.Quantity
				return items
			}
		}
		return append(items, item)
	})
}

// RemoveItem drops the line with id; absent ids are a no-op.
func (c *Cart) RemoveItem(ctx context.Context, id string) error {
	return c.mutate(ctx, func(items []Item) []Item {
		out := items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
}

// SetQuantity replaces a line's quantity. Values below one are ignored.
func (c *Cart) SetQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return nil
	}
	return c.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	return c.mutate(ctx, func([]Item) []Item { return []Item{} })
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Subtotal is recomputed from the lines on every call.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotal(c.items)
}

// Count is the total number of units.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

func (c *Cart) View() View {
	items := c.Items()
	sub := subtotal(items)
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return View{
		Items:           items,
		Subtotal:        sub,
		SubtotalDisplay: pricing.FormatMYR(sub),
		Count:           count,
	}
}

// mutate applies fn to a copy, persists the result and commits it only when
// the write succeeds.
func (c *Cart) mutate(ctx context.Context, fn func([]Item) []Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := fn(cloneItems(c.items))
	if next == nil {
		next = []Item{}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := c.storage.Save(ctx, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	c.items = next
	return nil
}

func validateItem(item Item) error {
	details := map[string]string{}
	if item.ID == "" {
		details["id"] = "is required"
	}
	if strings.TrimSpace(item.Name) == "" {
		details["name"] = "is required"
	}
	if item.Quantity < 1 {
		details["quantity"] = "must be at least 1"
	}
	if item.PriceRM.IsNegative() {
		details["priceRM"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid cart item %q", item.ID)).WithDetails(details)
	}
	return nil
}

// normalize drops invalid lines and merges duplicate ids from persisted data.
func normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := map[string]int{}
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		if pos, ok := index[it.ID]; ok {
			out[pos].Quantity += it.Quantity
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

func subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
