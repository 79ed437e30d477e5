package events

import (
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrPoolClosed = errors.New("events: channel pool closed")

// channelPool hands out AMQP channels that already declared the order queue.
type channelPool struct {
	conn   *amqp.Connection
	queue  string
	idle   chan *amqp.Channel
	mu     sync.Mutex
	closed bool
}

func newChannelPool(conn *amqp.Connection, queue string, size int) (*channelPool, error) {
	if size < 1 {
		size = 1
	}
	p := &channelPool{conn: conn, queue: queue, idle: make(chan *amqp.Channel, size)}
	// one warm channel also proves the queue can be declared
	ch, err := p.open()
	if err != nil {
		return nil, err
	}
	p.idle <- ch
	return p, nil
}

func (p *channelPool) open() (*amqp.Channel, error) {
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	return ch, nil
}

func (p *channelPool) get() (*amqp.Channel, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}
	select {
	case ch, ok := <-p.idle:
		if ok && !ch.IsClosed() {
			return ch, nil
		}
	default:
	}
	return p.open()
}

func (p *channelPool) put(ch *amqp.Channel) {
	if ch == nil || ch.IsClosed() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = ch.Close()
		return
	}
	select {
	case p.idle <- ch:
	default:
		_ = ch.Close()
	}
}

func (p *channelPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.idle)
	for ch := range p.idle {
		_ = ch.Close()
	}
}
