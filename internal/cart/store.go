// Package cart maintains a server-synchronized view of the cart. Local state
// is only ever the result of a full fetch: every mutation is followed by a
// resync rather than an optimistic patch, so the local view can never drift
// from server state after a completed operation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"shopfront/internal/api"
	"shopfront/pkg/domain"
)

// Store is the cart store. Mutations are serialized: a second mutation
// issued while one is in flight waits for the first's resync to land, so
// resyncs are never observed out of order.
type Store struct {
	client *api.Client
	logger *slog.Logger

	// opMu serializes mutations end to end, network call included.
	opMu sync.Mutex
	sf   singleflight.Group

	mu     sync.RWMutex
	items  []domain.CartItem
	loaded bool
}

// NewStore constructs a cart store. Call Fetch to populate it.
func NewStore(client *api.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, logger: logger}
}

// Items returns a copy of the current line items.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// Loaded reports whether at least one fetch (or Clear) has completed. An
// empty loaded cart is a meaningful state, distinct from not-yet-loaded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Fetch retrieves the item list and replaces local state wholesale.
// Concurrent callers collapse onto a single request.
func (s *Store) Fetch(ctx context.Context) error {
	_, err, _ := s.sf.Do("fetch", func() (any, error) {
		return nil, s.doFetch(ctx)
	})
	return err
}

func (s *Store) doFetch(ctx context.Context) error {
	cart, err := s.client.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("%s", api.Detail(err, "Failed to fetch cart"))
	}
	s.mu.Lock()
	s.items = cart.Items
	s.loaded = true
	s.mu.Unlock()
	s.logger.Debug("cart resynced", "items", len(cart.Items))
	return nil
}

// Add sends an add request for quantity of the product, then resyncs.
// Success is reported only after the resync lands; on failure local state is
// untouched and the error message is display-ready.
func (s *Store) Add(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return errors.New("Quantity must be at least 1")
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if err := s.client.AddCartItem(ctx, productID, quantity); err != nil {
		return fmt.Errorf("%s", api.Detail(err, "Failed to add to cart"))
	}
	return s.doFetch(ctx)
}

// UpdateQuantity sets a line item's quantity, then resyncs. Quantity 0 is
// defined as removal, not an error.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 0 {
		return errors.New("Quantity must not be negative")
	}
	if quantity == 0 {
		return s.Remove(ctx, itemID)
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if err := s.client.UpdateCartItem(ctx, itemID, quantity); err != nil {
		return fmt.Errorf("%s", api.Detail(err, "Failed to update quantity"))
	}
	return s.doFetch(ctx)
}

// Remove deletes a line item, then resyncs.
func (s *Store) Remove(ctx context.Context, itemID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if err := s.client.RemoveCartItem(ctx, itemID); err != nil {
		return fmt.Errorf("%s", api.Detail(err, "Failed to remove from cart"))
	}
	return s.doFetch(ctx)
}

// Clear empties the cart. The operation's postcondition is known, so local
// state is set to empty directly instead of issuing a redundant fetch.
func (s *Store) Clear(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if err := s.client.ClearCart(ctx); err != nil {
		return fmt.Errorf("%s", api.Detail(err, "Failed to clear cart"))
	}
	s.mu.Lock()
	s.items = nil
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Subtotal is the sum of price times quantity over current items,
// recomputed on every call.
func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, item := range s.items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities over current items.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Summary prices the current cart.
func (s *Store) Summary() Summary {
	return Summarize(s.Subtotal())
}
