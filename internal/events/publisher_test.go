package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/railbook/internal/domain"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

// mockChannel is a hand-written test double for the amqp channel.
type mockChannel struct {
	declareErr error
	publishErr error
	closed     bool
	sent       []published
	declared   []string
}

func (m *mockChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	m.declared = append(m.declared, name+"/"+kind)
	return m.declareErr
}

func (m *mockChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.sent = append(m.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (m *mockChannel) Close() error {
	m.closed = true
	return nil
}

// compile-time check: mockChannel must satisfy channel.
var _ channel = (*mockChannel)(nil)

func testBooking() domain.Booking {
	return domain.Booking{
		ID:        "B1",
		TrainID:   "T001",
		Passenger: domain.Passenger{ID: "P1", Name: "Alice", Email: "alice@example.com"},
		Status:    domain.StatusConfirmed,
	}
}

func TestNewPublisher_DeclaresExchange(t *testing.T) {
	ch := &mockChannel{}

	_, err := NewPublisher(ch, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"bookings/topic"}, ch.declared)
}

func TestNewPublisher_DeclareErrorClosesChannel(t *testing.T) {
	ch := &mockChannel{declareErr: errors.New("access refused")}

	_, err := NewPublisher(ch, nil)

	assert.ErrorIs(t, err, ch.declareErr)
	assert.True(t, ch.closed)
}

func TestPublisher_BookingConfirmed(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch, nil)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	err = p.BookingConfirmed(context.Background(), testBooking())

	require.NoError(t, err)
	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, ExchangeName, got.exchange)
	assert.Equal(t, RoutingConfirmed, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, "B1", got.msg.MessageId)

	var ev BookingEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &ev))
	assert.Equal(t, RoutingConfirmed, ev.Type)
	assert.Equal(t, "B1", ev.Booking.ID)
	assert.Equal(t, "alice@example.com", ev.Booking.Passenger.Email)
	assert.True(t, ev.OccurredAt.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))
}

func TestPublisher_BookingCancelled(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch, nil)
	require.NoError(t, err)

	b := testBooking()
	b.Status = domain.StatusCancelled
	require.NoError(t, p.BookingCancelled(context.Background(), b))

	require.Len(t, ch.sent, 1)
	assert.Equal(t, RoutingCancelled, ch.sent[0].key)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &mockChannel{publishErr: amqp.ErrClosed}
	p, err := NewPublisher(ch, nil)
	require.NoError(t, err)

	err = p.BookingConfirmed(context.Background(), testBooking())

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestPublisher_Close(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewPublisher(ch, nil)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
