// Package cart holds the per-session shopping cart.
//
// A Store keeps line items in insertion order with at most one line per
// product id. Every operation is total: ids that are not in the cart are
// ignored.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"shopmart/internal/domain"
)

type Store struct {
	mu    sync.Mutex
	items []domain.CartLineItem

	checkout chan struct{} // one slot, held while an order is in flight
	touched  time.Time     // guarded by the owning Sessions
}

func NewStore() *Store {
	return &Store{checkout: make(chan struct{}, 1)}
}

// ReserveCheckout waits until no other order from this cart is in flight.
// The caller must ReleaseCheckout once the submission settles.
func (s *Store) ReserveCheckout(ctx context.Context) error {
	select {
	case s.checkout <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) ReleaseCheckout() { <-s.checkout }

func (s *Store) checkingOut() bool { return len(s.checkout) > 0 }

func (s *Store) indexOf(id int) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the cart, bumping the existing line if present.
func (s *Store) Add(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(p)
}

func (s *Store) add(p domain.Product) {
	if i := s.indexOf(p.ID); i >= 0 {
		s.items[i].Quantity++
		return
	}
	s.items = append(s.items, domain.CartLineItem{Product: p, Quantity: 1})
}

// AddN behaves like n successive calls to Add. n < 1 adds a single unit.
func (s *Store) AddN(p domain.Product, n int) {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.add(p)
	}
}

func (s *Store) Increase(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i].Quantity++
	}
}

// Decrease drops the line entirely once its quantity would reach zero.
func (s *Store) Decrease(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	if s.items[i].Quantity <= 1 {
		s.removeAt(i)
		return
	}
	s.items[i].Quantity--
}

func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.removeAt(i)
	}
}

func (s *Store) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Take removes the ordered quantities. Lines added or increased after the
// order was priced stay in the cart.
func (s *Store) Take(ordered []domain.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range ordered {
		i := s.indexOf(o.ID)
		if i < 0 {
			continue
		}
		if s.items[i].Quantity <= o.Quantity {
			s.removeAt(i)
			continue
		}
		s.items[i].Quantity -= o.Quantity
	}
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Total is recomputed from the current lines on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count is the number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
