package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"shopmart/internal/domain"
	"shopmart/internal/repos"
)

// Failure kinds a real order backend can report. Only ErrNetwork is retried.
var (
	ErrNetwork         = errors.New("order backend unreachable")
	ErrRejected        = errors.New("order rejected")
	ErrPaymentDeclined = errors.New("payment declined")
)

// OrderRequest is what leaves the storefront. It has no payment fields.
type OrderRequest struct {
	SessionID string
	Customer  domain.Customer
	Shipping  domain.Shipping
	Items     []domain.CartLineItem
	Total     decimal.Decimal
}

type Backend interface {
	Submit(ctx context.Context, req OrderRequest) (domain.Order, error)
}

// SimulatedBackend confirms every order. Receipts are kept in the order repo
// so the confirmation page can be shown again by id.
type SimulatedBackend struct {
	Orders *repos.OrderRepo
	Now    func() time.Time
}

func NewSimulatedBackend(orders *repos.OrderRepo) *SimulatedBackend {
	return &SimulatedBackend{Orders: orders, Now: time.Now}
}

func (b *SimulatedBackend) Submit(ctx context.Context, req OrderRequest) (domain.Order, error) {
	o := domain.Order{
		SessionID: req.SessionID,
		Customer:  req.Customer,
		Shipping:  req.Shipping,
		Items:     req.Items,
		Total:     req.Total,
		Status:    domain.OrderConfirmed,
		CreatedAt: b.Now().UTC(),
	}
	id, err := b.Orders.Create(ctx, o)
	if err != nil {
		return domain.Order{}, err
	}
	o.ID = id
	return o, nil
}
