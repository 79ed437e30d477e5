package services

import (
	"context"

	"github.com/shopspring/decimal"

	"shopmart/internal/cart"
	"shopmart/internal/checkout"
	"shopmart/internal/domain"
)

type CartService struct {
	Carts   *cart.Sessions
	Catalog Catalog
}

func NewCartService(carts *cart.Sessions, api Catalog) *CartService {
	return &CartService{Carts: carts, Catalog: api}
}

// Add looks the product up upstream so prices never come from the client.
func (s *CartService) Add(ctx context.Context, sessionID string, productID, qty int) (domain.Product, error) {
	p, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	s.Carts.Update(sessionID, true, func(st *cart.Store) { st.AddN(p, qty) })
	return p, nil
}

// The remaining mutations never create a cart for an unknown session.

func (s *CartService) Increase(sessionID string, productID int) {
	s.Carts.Update(sessionID, false, func(st *cart.Store) { st.Increase(productID) })
}

func (s *CartService) Decrease(sessionID string, productID int) {
	s.Carts.Update(sessionID, false, func(st *cart.Store) { st.Decrease(productID) })
}

func (s *CartService) Remove(sessionID string, productID int) {
	s.Carts.Update(sessionID, false, func(st *cart.Store) { st.Remove(productID) })
}

func (s *CartService) Clear(sessionID string) {
	s.Carts.Update(sessionID, false, func(st *cart.Store) { st.Clear() })
}

type CartView struct {
	Items   []domain.CartLineItem `json:"items"`
	Count   int                   `json:"count"`
	Total   decimal.Decimal       `json:"total"`
	Summary checkout.Summary      `json:"summary"`
}

func (v CartView) Empty() bool { return len(v.Items) == 0 }

func (s *CartService) View(sessionID string) CartView {
	st, ok := s.Carts.Peek(sessionID)
	if !ok {
		return CartView{Items: []domain.CartLineItem{}, Summary: checkout.Summarize(decimal.Zero)}
	}
	items := st.Items()
	total := decimal.Zero
	count := 0
	for _, it := range items {
		total = total.Add(it.Subtotal())
		count += it.Quantity
	}
	return CartView{Items: items, Count: count, Total: total, Summary: checkout.Summarize(total)}
}
