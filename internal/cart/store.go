package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
)

// Item is a product line held in the cart.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Persister is the durable record behind a cart.
type Persister interface {
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

// Snapshot is a read-only view with derived values.
type Snapshot struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Store owns the cart for one shopper session and writes every change through to its Persister.
// In-memory state only changes after the write succeeds.
type Store struct {
	mu      sync.Mutex
	items   []Item
	persist Persister
}

func NewStore(persist Persister) *Store {
	return &Store{persist: persist}
}

// Load restores the stored cart and reports whether it belongs to an order that was already sent.
// A corrupt record leaves the cart empty and returns an error wrapping ErrCorruptRecord.
func (s *Store) Load(ctx context.Context) (bool, error) {
	raw, ok, err := s.persist.Load(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if !ok {
		return false, nil
	}
	items, sent, err := DecodeRecord(raw)
	if err != nil {
		return false, err
	}
	s.items = items
	return sent, nil
}

// Add merges product into the cart, incrementing an existing line or appending a new one.
func (s *Store) Add(ctx context.Context, product models.Product) error {
	return s.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].ID == product.ID {
				items[i].Quantity++
				return items
			}
		}
		return append(items, Item{
			ID:          product.ID,
			Name:        product.Name,
			Description: product.Description,
			Price:       product.Price,
			Image:       product.Image,
			Quantity:    1,
		})
	})
}

// UpdateQuantity applies a signed delta, clamping at zero and dropping emptied lines.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, delta int) error {
	return s.mutate(ctx, func(items []Item) []Item {
		out := items[:0]
		for _, item := range items {
			if item.ID == id {
				item.Quantity = max(0, item.Quantity+delta)
			}
			if item.Quantity > 0 {
				out = append(out, item)
			}
		}
		return out
	})
}

func (s *Store) Remove(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(items []Item) []Item {
		out := items[:0]
		for _, item := range items {
			if item.ID != id {
				out = append(out, item)
			}
		}
		return out
	})
}

// Clear empties the cart and deletes the durable record.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.items = nil
	return nil
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) Total() decimal.Decimal {
	return Total(s.Items())
}

func (s *Store) Count() int {
	return Count(s.Items())
}

func (s *Store) Snapshot() Snapshot {
	items := s.Items()
	if items == nil {
		items = []Item{}
	}
	return Snapshot{Items: items, Total: Total(items), Count: Count(items)}
}

func (s *Store) mutate(ctx context.Context, apply func([]Item) []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := apply(append([]Item(nil), s.items...))
	raw, err := EncodeItems(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.persist.Save(ctx, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	s.items = next
	return nil
}

// Total sums price times quantity over items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count sums quantities over items.
func Count(items []Item) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
