package broadcast

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisRelay publishes through a Redis channel so that every instance of the
// service delivers to its own locally connected clients.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	ready   chan struct{}
}

func NewRedisRelay(client *redis.Client, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, hub: hub, ready: make(chan struct{})}
}

func (r *RedisRelay) Publish(ctx context.Context, audience, event string, payload any) error {
	ev, err := newEvent(audience, event, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Close releases the Redis client.
func (r *RedisRelay) Close() error {
	return r.client.Close()
}

// Ready is closed once Run has subscribed.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run forwards every message on the channel into the hub until ctx ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	close(r.ready)
	log.WithField("channel", r.channel).Info("broadcast relay subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.WithError(err).Warn("discarding malformed broadcast envelope")
				continue
			}
			r.hub.Deliver(ev)
		}
	}
}
