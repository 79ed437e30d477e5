package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shopmart/internal/cart"
	"shopmart/internal/checkout"
	"shopmart/internal/domain"
	applog "shopmart/internal/log"
	"shopmart/internal/repos"
)

var (
	ErrEmptyCart      = errors.New("cart empty")
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderForbidden = errors.New("order belongs to another session")
)

type OrderPublisher interface {
	PublishOrder(ctx context.Context, o domain.Order) error
}

type OrderService struct {
	Carts   *cart.Sessions
	Backend Backend
	Events  OrderPublisher
	Orders  *repos.OrderRepo

	Attempts int           // total tries for ErrNetwork
	Backoff  time.Duration // doubled after each failed try
}

func NewOrderService(carts *cart.Sessions, backend Backend, events OrderPublisher, orders *repos.OrderRepo) *OrderService {
	return &OrderService{
		Carts:    carts,
		Backend:  backend,
		Events:   events,
		Orders:   orders,
		Attempts: 3,
		Backoff:  200 * time.Millisecond,
	}
}

// Get returns a receipt only to the session that placed it.
func (s *OrderService) Get(ctx context.Context, sessionID string, id int64) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	if o.SessionID != sessionID {
		return domain.Order{}, ErrOrderForbidden
	}
	return o, nil
}

func (s *OrderService) History(ctx context.Context, sessionID string) ([]repos.OrderSummary, error) {
	return s.Orders.ListBySession(ctx, sessionID)
}

// Submit validates the form, prices the session cart and hands the order to
// the backend. Only after a confirmation are the ordered lines taken out of
// the cart.
func (s *OrderService) Submit(ctx context.Context, sessionID string, form checkout.Form) (domain.Order, error) {
	if errs := checkout.Validate(form); !errs.Valid() {
		return domain.Order{}, &checkout.ValidationError{Fields: errs}
	}

	st, ok := s.Carts.Peek(sessionID)
	if !ok {
		return domain.Order{}, ErrEmptyCart
	}
	// One submission per cart at a time. A second one waits and then finds
	// only what the first left behind.
	if err := st.ReserveCheckout(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("submit order: %w", err)
	}
	defer st.ReleaseCheckout()

	items := st.Items()
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	summary := checkout.Summarize(lineTotal(items))

	req := OrderRequest{
		SessionID: sessionID,
		Customer:  form.Customer(),
		Shipping:  form.Shipping(),
		Items:     items,
		Total:     summary.GrandTotal,
	}
	o, err := s.submitWithRetry(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}

	if s.Events != nil {
		if err := s.Events.PublishOrder(ctx, o); err != nil {
			applog.Event("order.publish.fail", err, map[string]any{"order_id": o.ID})
		}
	}
	s.Carts.Settle(sessionID, st, items)
	return o, nil
}

func lineTotal(items []domain.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (s *OrderService) submitWithRetry(ctx context.Context, req OrderRequest) (domain.Order, error) {
	attempts := s.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := s.Backoff
	var lastErr error
	for i := 0; i < attempts; i++ {
		o, err := s.Backend.Submit(ctx, req)
		if err == nil {
			return o, nil
		}
		lastErr = err
		if !errors.Is(err, ErrNetwork) || i == attempts-1 {
			break
		}
		applog.Event("order.submit.retry", err, map[string]any{"attempt": i + 1})
		select {
		case <-ctx.Done():
			return domain.Order{}, fmt.Errorf("submit order: %w", ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return domain.Order{}, fmt.Errorf("submit order: %w", lastErr)
}
