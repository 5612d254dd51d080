// Package events publishes booking lifecycle events to RabbitMQ.
// Consumers bind to the bookings topic exchange; the ledger never waits on
// them and never fails because of them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pkordes/railbook/internal/domain"
)

const (
	ExchangeName = "bookings"
	ExchangeKind = "topic"

	RoutingConfirmed = "booking.confirmed"
	RoutingCancelled = "booking.cancelled"
)

// BookingEvent is the JSON body of every published message.
type BookingEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Booking    domain.Booking `json:"booking"`
}

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends BookingEvents to the bookings exchange.
// It satisfies service.BookingNotifier.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel channel
	now     func() time.Time
	logger  *slog.Logger
}

// Dial connects to the broker at url, opens a channel and declares the
// exchange.
func Dial(url string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events.Dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events.Dial: channel: %w", err)
	}

	p, err := NewPublisher(ch, logger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events.Dial: %w", err)
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares the exchange on ch and returns a Publisher using it.
// A nil logger falls back to slog.Default().
func NewPublisher(ch channel, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("exchange declare: %w", err)
	}
	return &Publisher{channel: ch, now: time.Now, logger: logger}, nil
}

// BookingConfirmed publishes b under RoutingConfirmed.
func (p *Publisher) BookingConfirmed(ctx context.Context, b domain.Booking) error {
	return p.publish(ctx, RoutingConfirmed, b)
}

// BookingCancelled publishes b under RoutingCancelled.
func (p *Publisher) BookingCancelled(ctx context.Context, b domain.Booking) error {
	return p.publish(ctx, RoutingCancelled, b)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, b domain.Booking) error {
	body, err := json.Marshal(BookingEvent{
		Type:       routingKey,
		OccurredAt: p.now().UTC(),
		Booking:    b,
	})
	if err != nil {
		return fmt.Errorf("events.Publisher.publish: marshal: %w", err)
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    b.ID,
		Timestamp:    p.now(),
		Body:         body,
	})
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("events.Publisher.publish: %s: %w", routingKey, err)
	}

	p.logger.DebugContext(ctx, "event published",
		"exchange", ExchangeName,
		"routing_key", routingKey,
		"booking_id", b.ID,
	)
	return nil
}

// Close releases the channel and, when the publisher dialled it, the
// connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
