// Package events announces confirmed orders on an AMQP queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"shopmart/internal/domain"
	applog "shopmart/internal/log"
)

const TypeOrderConfirmed = "order.confirmed"

// OrderConfirmed is the message body. Payment details are never part of it.
type OrderConfirmed struct {
	Type      string               `json:"type"`
	OrderID   int64                `json:"order_id"`
	Email     string               `json:"email"`
	Total     string               `json:"total"`
	Items     []OrderConfirmedItem `json:"items"`
	CreatedAt time.Time            `json:"created_at"`
}

type OrderConfirmedItem struct {
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

func NewOrderConfirmed(o domain.Order) OrderConfirmed {
	msg := OrderConfirmed{
		Type:      TypeOrderConfirmed,
		OrderID:   o.ID,
		Email:     o.Customer.Email,
		Total:     o.Total.StringFixed(2),
		CreatedAt: o.CreatedAt.UTC(),
		Items:     make([]OrderConfirmedItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		msg.Items = append(msg.Items, OrderConfirmedItem{ProductID: it.ID, Quantity: it.Quantity, Price: it.Price.StringFixed(2)})
	}
	return msg
}

// Publisher sends order events to a durable queue.
type Publisher struct {
	conn  *amqp.Connection
	pool  *channelPool
	queue string
}

func Dial(url, queue string, channels int) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: connect: %w", err)
	}
	pool, err := newChannelPool(conn, queue, channels)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: %w", err)
	}
	applog.Event("events.connected", nil, map[string]any{"queue": queue})
	return &Publisher{conn: conn, pool: pool, queue: queue}, nil
}

func (p *Publisher) PublishOrder(ctx context.Context, o domain.Order) error {
	body, err := json.Marshal(NewOrderConfirmed(o))
	if err != nil {
		return fmt.Errorf("events: marshal order %d: %w", o.ID, err)
	}
	ch, err := p.pool.get()
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer p.pool.put(ch)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         TypeOrderConfirmed,
		MessageId:    fmt.Sprintf("order-%d", o.ID),
		Timestamp:    o.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("events: publish order %d: %w", o.ID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.pool.close()
	return p.conn.Close()
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishOrder(context.Context, domain.Order) error { return nil }
