package broadcast

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/campus-market-backend/internal/auth"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHubDeliversToRoomOnly(t *testing.T) {
	hub := NewHub(4)
	vendors := hub.Subscribe(AudienceVendors)
	defer vendors.Close()
	customers := hub.Subscribe(AudienceCustomers)
	defer customers.Close()

	require.NoError(t, hub.Publish(context.Background(), AudienceVendors, "notification", map[string]string{"message": "hi"}))

	ev := receive(t, vendors)
	assert.Equal(t, "notification", ev.Name)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "hi", payload["message"])

	select {
	case ev := <-customers.C:
		t.Fatalf("customers got %+v", ev)
	default:
	}
}

func TestHubPersonalRoom(t *testing.T) {
	hub := NewHub(4)
	id := uuid.New()
	sub := hub.Subscribe(UserAudience(id), RoleAudience(auth.RoleVendor))
	defer sub.Close()

	assert.Equal(t, 1, hub.Subscribers(UserAudience(id)))
	assert.Equal(t, 1, hub.Subscribers(AudienceVendors))

	require.NoError(t, hub.Publish(context.Background(), UserAudience(id), "order:new", map[string]int{"n": 1}))
	assert.Equal(t, "order:new", receive(t, sub).Name)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe(AudienceAdmins)
	defer sub.Close()

	ev := Event{Audience: AudienceAdmins, Name: "x"}
	assert.Equal(t, 1, hub.Deliver(ev))
	assert.Equal(t, 0, hub.Deliver(ev))
}

func TestSubscriptionClose(t *testing.T) {
	hub := NewHub(1)
	sub := hub.Subscribe(AudienceCustomers)
	sub.Close()
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Zero(t, hub.Subscribers(AudienceCustomers))
	assert.Zero(t, hub.Deliver(Event{Audience: AudienceCustomers}))
}

func TestRoleAudience(t *testing.T) {
	assert.Equal(t, AudienceVendors, RoleAudience(auth.RoleVendor))
	assert.Equal(t, AudienceAdmins, RoleAudience(auth.RoleAdmin))
	assert.Equal(t, AudienceCustomers, RoleAudience(auth.RoleCustomer))
}
