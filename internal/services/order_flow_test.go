package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmart/internal/cart"
	"shopmart/internal/checkout"
	"shopmart/internal/domain"
	"shopmart/internal/repos"
	"shopmart/internal/services"
)

type fakeCatalog struct {
	products map[int]domain.Product
	cats     []string
	err      error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[int]domain.Product{
			1: {ID: 1, Title: "Backpack", Price: decimal.RequireFromString("10.00"), Category: "men's clothing", Rating: domain.Rating{Rate: 3.9}},
			2: {ID: 2, Title: "Ring", Price: decimal.RequireFromString("5.00"), Category: "jewelery", Rating: domain.Rating{Rate: 4.6}},
			3: {ID: 3, Title: "Drive", Price: decimal.RequireFromString("64.00"), Category: "electronics", Rating: domain.Rating{Rate: 3.3}},
		},
		cats: []string{"electronics", "jewelery", "men's clothing"},
	}
}

func (f *fakeCatalog) Products(ctx context.Context) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Product, 0, len(f.products))
	for id := 1; id <= len(f.products); id++ {
		out = append(out, f.products[id])
	}
	return out, nil
}

func (f *fakeCatalog) Product(ctx context.Context, id int) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, errors.New("not found")
	}
	return p, nil
}

func (f *fakeCatalog) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	all, err := f.Products(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Categories(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cats, nil
}

// flakyBackend fails with the given errors before delegating.
type flakyBackend struct {
	mu    sync.Mutex
	fails []error
	calls int
	next  services.Backend
	last  services.OrderRequest
}

func (b *flakyBackend) Submit(ctx context.Context, req services.OrderRequest) (domain.Order, error) {
	b.mu.Lock()
	b.calls++
	b.last = req
	var err error
	if len(b.fails) > 0 {
		err, b.fails = b.fails[0], b.fails[1:]
	}
	b.mu.Unlock()
	if err != nil {
		return domain.Order{}, err
	}
	return b.next.Submit(ctx, req)
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (p *recordingPublisher) PublishOrder(_ context.Context, o domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, o)
	return p.err
}

func validForm() checkout.Form {
	return checkout.Form{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "(555) 123-4567",
		Address: "1 Main St", City: "Springfield", State: "IL", Zip: "62704",
		CardName: "Ada Lovelace", CardNumber: "4111 1111 1111 1111", ExpDate: "12/30", CVV: "123",
	}
}

type harness struct {
	carts   *cart.Sessions
	cartSvc *services.CartService
	orders  *services.OrderService
	backend *flakyBackend
	events  *recordingPublisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	orderRepo := repos.NewOrderRepo(db)
	sim := services.NewSimulatedBackend(orderRepo)
	sim.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	h := &harness{
		carts:   cart.NewSessions(),
		backend: &flakyBackend{next: sim},
		events:  &recordingPublisher{},
	}
	h.cartSvc = services.NewCartService(h.carts, newFakeCatalog())
	h.orders = services.NewOrderService(h.carts, h.backend, h.events, orderRepo)
	h.orders.Backoff = time.Millisecond
	return h
}

func TestOrderFlow_AddCartCheckout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sid := "test-session"

	_, err := h.cartSvc.Add(ctx, sid, 1, 2)
	require.NoError(t, err)
	_, err = h.cartSvc.Add(ctx, sid, 2, 1)
	require.NoError(t, err)

	cv := h.cartSvc.View(sid)
	require.Len(t, cv.Items, 2)
	assert.Equal(t, 3, cv.Count)
	assert.Equal(t, "25.00", cv.Total.StringFixed(2))
	assert.Equal(t, "33.49", cv.Summary.GrandTotal.StringFixed(2))

	o, err := h.orders.Submit(ctx, sid, validForm())
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.Equal(t, domain.OrderConfirmed, o.Status)
	assert.Equal(t, "33.49", o.Total.StringFixed(2))
	assert.Equal(t, "Ada", o.Customer.FirstName)
	assert.Equal(t, "62704", o.Shipping.Zip)

	assert.True(t, h.cartSvc.View(sid).Empty(), "cart cleared after confirmation")
	assert.Zero(t, h.carts.Len())
	require.Len(t, h.events.orders, 1)
	assert.Equal(t, o.ID, h.events.orders[0].ID)

	got, err := h.orders.Get(ctx, sid, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Total.String(), got.Total.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestOrderSubmit_RequestCarriesNoPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "s", 3, 1)
	require.NoError(t, err)

	_, err = h.orders.Submit(ctx, "s", validForm())
	require.NoError(t, err)

	req := h.backend.last
	assert.Equal(t, "ada@example.com", req.Customer.Email)
	assert.Equal(t, "1 Main St", req.Shipping.Address)
	assert.Len(t, req.Items, 1)
}

func TestOrderSubmit_InvalidFormKeepsCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "s", 1, 1)
	require.NoError(t, err)

	f := validForm()
	f.Email = "nope"
	f.Zip = "12"
	_, err = h.orders.Submit(ctx, "s", f)

	var verr *checkout.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, checkout.FieldEmail)
	assert.Contains(t, verr.Fields, checkout.FieldZip)
	assert.Zero(t, h.backend.calls)
	assert.False(t, h.cartSvc.View("s").Empty())
}

func TestOrderSubmit_EmptyCart(t *testing.T) {
	h := newHarness(t)
	_, err := h.orders.Submit(context.Background(), "nobody", validForm())
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Zero(t, h.backend.calls)
}

func TestOrderSubmit_RetriesNetworkErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "s", 1, 1)
	require.NoError(t, err)

	h.backend.fails = []error{services.ErrNetwork, services.ErrNetwork}
	o, err := h.orders.Submit(ctx, "s", validForm())
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.Equal(t, 3, h.backend.calls)
}

func TestOrderSubmit_GivesUpAfterAttempts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "s", 1, 1)
	require.NoError(t, err)

	h.backend.fails = []error{services.ErrNetwork, services.ErrNetwork, services.ErrNetwork}
	_, err = h.orders.Submit(ctx, "s", validForm())
	assert.ErrorIs(t, err, services.ErrNetwork)
	assert.Equal(t, 3, h.backend.calls)
	assert.False(t, h.cartSvc.View("s").Empty(), "cart kept on failure")
	assert.Empty(t, h.events.orders)
}

func TestOrderSubmit_DeclinedIsNotRetried(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "s", 1, 1)
	require.NoError(t, err)

	h.backend.fails = []error{services.ErrPaymentDeclined}
	_, err = h.orders.Submit(ctx, "s", validForm())
	assert.ErrorIs(t, err, services.ErrPaymentDeclined)
	assert.Equal(t, 1, h.backend.calls)
}

func TestOrderSubmit_CancelledDuringBackoff(t *testing.T) {
	h := newHarness(t)
	_, err := h.cartSvc.Add(context.Background(), "s", 1, 1)
	require.NoError(t, err)

	h.orders.Backoff = time.Hour
	h.backend.fails = []error{services.ErrNetwork}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = h.orders.Submit(ctx, "s", validForm())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, h.backend.calls)
}

func TestOrderSubmit_PublishFailureStillConfirms(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "s", 2, 1)
	require.NoError(t, err)

	h.events.err = errors.New("broker down")
	o, err := h.orders.Submit(ctx, "s", validForm())
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.True(t, h.cartSvc.View("s").Empty())
}

func TestOrderGet_OtherSessionForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "owner", 1, 1)
	require.NoError(t, err)
	o, err := h.orders.Submit(ctx, "owner", validForm())
	require.NoError(t, err)

	_, err = h.orders.Get(ctx, "intruder", o.ID)
	assert.ErrorIs(t, err, services.ErrOrderForbidden)

	_, err = h.orders.Get(ctx, "owner", o.ID+100)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	hist, err := h.orders.History(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, o.ID, hist[0].ID)
}

// gatedBackend parks every call until release is closed.
type gatedBackend struct {
	entered chan struct{}
	release chan struct{}
	next    services.Backend

	mu    sync.Mutex
	calls int
}

func newGatedBackend(next services.Backend) *gatedBackend {
	return &gatedBackend{entered: make(chan struct{}, 2), release: make(chan struct{}), next: next}
}

func (b *gatedBackend) Submit(ctx context.Context, req services.OrderRequest) (domain.Order, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered <- struct{}{}
	<-b.release
	return b.next.Submit(ctx, req)
}

type submitResult struct {
	order domain.Order
	err   error
}

func TestOrderSubmit_KeepsItemsAddedWhileInFlight(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "s", 1, 1)
	require.NoError(t, err)

	gate := newGatedBackend(h.backend)
	h.orders.Backend = gate

	done := make(chan submitResult, 1)
	go func() {
		o, err := h.orders.Submit(ctx, "s", validForm())
		done <- submitResult{o, err}
	}()
	<-gate.entered

	_, err = h.cartSvc.Add(ctx, "s", 2, 1)
	require.NoError(t, err)
	_, err = h.cartSvc.Add(ctx, "s", 1, 1)
	require.NoError(t, err)
	close(gate.release)

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.order.Items, 1)
	assert.Equal(t, 1, res.order.Items[0].ID)

	left := h.cartSvc.View("s")
	require.Len(t, left.Items, 2)
	assert.Equal(t, 1, left.Items[0].ID)
	assert.Equal(t, 1, left.Items[0].Quantity)
	assert.Equal(t, 2, left.Items[1].ID)
}

func TestOrderSubmit_ConcurrentSubmitsPlaceOneOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.cartSvc.Add(ctx, "s", 3, 2)
	require.NoError(t, err)

	gate := newGatedBackend(h.backend)
	h.orders.Backend = gate

	results := make(chan submitResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			o, err := h.orders.Submit(ctx, "s", validForm())
			results <- submitResult{o, err}
		}()
	}
	<-gate.entered
	close(gate.release)

	var placed, empty int
	for i := 0; i < 2; i++ {
		res := <-results
		switch {
		case res.err == nil:
			placed++
		case errors.Is(res.err, services.ErrEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected error: %v", res.err)
		}
	}
	assert.Equal(t, 1, placed)
	assert.Equal(t, 1, empty)
	assert.Equal(t, 1, gate.calls)

	hist, err := h.orders.History(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}
