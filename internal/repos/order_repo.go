package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopmart/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type OrderSummary struct {
	ID        int64           `db:"id"`
	SessionID string          `db:"session_id"`
	Email     string          `db:"email"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
}

type orderRow struct {
	ID        int64           `db:"id"`
	SessionID string          `db:"session_id"`
	FirstName string          `db:"first_name"`
	LastName  string          `db:"last_name"`
	Email     string          `db:"email"`
	Phone     string          `db:"phone"`
	Address   string          `db:"address"`
	City      string          `db:"city"`
	State     string          `db:"state"`
	Zip       string          `db:"zip"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
}

type orderItemRow struct {
	ProductID int             `db:"product_id"`
	Title     string          `db:"title"`
	Category  string          `db:"category"`
	Image     string          `db:"image"`
	Price     decimal.Decimal `db:"price"`
	Qty       int             `db:"qty"`
}

// Create stores the order with its lines and returns the new id.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (session_id, first_name, last_name, email, phone, address, city, state, zip, total, status, created_at)
	  VALUES
	    (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.SessionID,
		o.Customer.FirstName, o.Customer.LastName, o.Customer.Email, o.Customer.Phone,
		o.Shipping.Address, o.Shipping.City, o.Shipping.State, o.Shipping.Zip,
		o.Total.String(), o.Status, o.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, product_id, title, category, image, price, qty, position)
		  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		`, id, it.ID, it.Title, it.Category, it.Image, it.Price.String(), it.Quantity, i); err != nil {
			return 0, fmt.Errorf("order item %d: %w", it.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Get loads an order and its lines. Missing ids yield sql.ErrNoRows.
func (r *OrderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, `
		SELECT id, session_id, first_name, last_name, email, phone, address, city, state, zip, total, status, created_at
		FROM orders WHERE id = ?
	`, id); err != nil {
		return domain.Order{}, err
	}

	var items []orderItemRow
	if err := r.db.SelectContext(ctx, &items, `
		SELECT product_id, title, category, image, price, qty
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, id); err != nil {
		return domain.Order{}, err
	}

	created, _ := time.Parse(time.RFC3339Nano, row.CreatedAt)
	o := domain.Order{
		ID:        row.ID,
		SessionID: row.SessionID,
		Customer:  domain.Customer{FirstName: row.FirstName, LastName: row.LastName, Email: row.Email, Phone: row.Phone},
		Shipping:  domain.Shipping{Address: row.Address, City: row.City, State: row.State, Zip: row.Zip},
		Total:     row.Total,
		Status:    row.Status,
		CreatedAt: created,
		Items:     make([]domain.CartLineItem, 0, len(items)),
	}
	for _, it := range items {
		o.Items = append(o.Items, domain.CartLineItem{
			Product: domain.Product{
				ID: it.ProductID, Title: it.Title, Category: it.Category, Image: it.Image, Price: it.Price,
			},
			Quantity: it.Qty,
		})
	}
	return o, nil
}

// ListBySession returns the session's orders, newest first.
func (r *OrderRepo) ListBySession(ctx context.Context, sessionID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, session_id, email, total, status, created_at
		FROM orders
		WHERE session_id = ?
		ORDER BY id DESC
	`, sessionID)
	return out, err
}
