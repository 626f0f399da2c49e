package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared  string
	kind      string
	published []amqp.Publishing
	keys      []string
	fail      error
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = name
	f.kind = kind
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.fail != nil {
		return f.fail
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisherRoutesByType(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newRabbitPublisher(ch, "market.orders")
	require.NoError(t, err)
	assert.Equal(t, "market.orders", ch.declared)
	assert.Equal(t, "topic", ch.kind)

	ev := OrderEvent{
		Type:        TypeOrderCreated,
		OrderID:     uuid.New(),
		BuyerID:     uuid.New(),
		OrderStatus: "pending",
		Total:       12.5,
		OccurredAt:  time.Now().UTC(),
	}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, ch.published, 1)
	assert.Equal(t, TypeOrderCreated, ch.keys[0])
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var got OrderEvent
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &got))
	assert.Equal(t, ev.OrderID, got.OrderID)
	assert.Equal(t, 12.5, got.Total)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisherBreakerOpens(t *testing.T) {
	ch := &fakeChannel{fail: errors.New("channel closed")}
	p, err := newRabbitPublisher(ch, "market.orders")
	require.NoError(t, err)

	ev := OrderEvent{Type: TypeOrderItemStatusChanged, OrderID: uuid.New()}
	for i := 0; i < 5; i++ {
		err := p.Publish(context.Background(), ev)
		require.Error(t, err)
		assert.ErrorContains(t, err, "channel closed")
	}

	err = p.Publish(context.Background(), ev)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, gobreaker.StateOpen, p.breaker.State())
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderEvent{}))
	assert.NoError(t, p.Close())
}
