package broadcast

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Hub is the in-process set of rooms. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscription]struct{}
	buffer int
}

type Subscription struct {
	C <-chan Event

	ch        chan Event
	audiences []string
	hub       *Hub
	once      sync.Once
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{rooms: map[string]map[*Subscription]struct{}{}, buffer: buffer}
}

// Subscribe joins the given rooms. Close the subscription when done.
func (h *Hub) Subscribe(audiences ...string) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, audiences: audiences, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, a := range audiences {
		room, ok := h.rooms[a]
		if !ok {
			room = map[*Subscription]struct{}{}
			h.rooms[a] = room
		}
		room[sub] = struct{}{}
	}
	return sub
}

// Close leaves every room and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		for _, a := range s.audiences {
			if room, ok := s.hub.rooms[a]; ok {
				delete(room, s)
				if len(room) == 0 {
					delete(s.hub.rooms, a)
				}
			}
		}
		close(s.ch)
	})
}

func (h *Hub) Publish(_ context.Context, audience, event string, payload any) error {
	ev, err := newEvent(audience, event, payload)
	if err != nil {
		return err
	}
	h.Deliver(ev)
	return nil
}

// Deliver hands ev to the room's subscribers and returns how many got it.
func (h *Hub) Deliver(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.rooms[ev.Audience] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			log.WithFields(log.Fields{"audience": ev.Audience, "event": ev.Name}).Warn("subscriber buffer full, event dropped")
		}
	}
	return delivered
}

// Subscribers counts the members of one room.
func (h *Hub) Subscribers(audience string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[audience])
}
