package fanout

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultBuffer is the per-subscription event buffer used when the hub is
// built without an explicit size.
const DefaultBuffer = 16

// Subscription is one viewer's registration of interest in a listing.
// Events arrive on its channel in publish order; the channel is closed
// when the subscription is removed from the hub.
type Subscription struct {
	id        uuid.UUID
	listingID int64
	events    chan Event
}

// Events is the subscriber's inbound queue.
func (s *Subscription) Events() <-chan Event { return s.events }

func (s *Subscription) ListingID() int64 { return s.listingID }

// Hub keeps subscription sets per listing and fans accepted-bid events out
// to all of them. All methods are safe for concurrent use.
type Hub struct {
	buffer int

	mu    sync.RWMutex
	rooms map[int64]map[uuid.UUID]*Subscription
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		buffer: buffer,
		rooms:  make(map[int64]map[uuid.UUID]*Subscription),
	}
}

// Subscribe registers a new viewer for events on the listing. A viewer may
// hold subscriptions to many listings at once.
func (h *Hub) Subscribe(listingID int64) *Subscription {
	sub := &Subscription{
		id:        uuid.New(),
		listingID: listingID,
		events:    make(chan Event, h.buffer),
	}

	h.mu.Lock()
	room, ok := h.rooms[listingID]
	if !ok {
		room = make(map[uuid.UUID]*Subscription)
		h.rooms[listingID] = room
	}
	room[sub.id] = sub
	h.mu.Unlock()

	return sub
}

// Unsubscribe removes the subscription and closes its channel. Removing an
// already-removed subscription is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	room, ok := h.rooms[sub.listingID]
	if ok {
		_, ok = room[sub.id]
	}
	if ok {
		delete(room, sub.id)
		if len(room) == 0 {
			delete(h.rooms, sub.listingID)
		}
	}
	h.mu.Unlock()

	if ok {
		close(sub.events)
	}
}

// Publish delivers the event to every current subscriber of the listing.
// The send never blocks: a subscriber whose buffer is full is dropped from
// the set, the same way a dead websocket is.
func (h *Hub) Publish(listingID int64, ev Event) {
	// Sends stay under the read lock so Unsubscribe (which closes the
	// channel under the write lock) can never race a send. They cannot
	// block: every send has a non-blocking default arm.
	var stalled []*Subscription
	h.mu.RLock()
	for _, sub := range h.rooms[listingID] {
		select {
		case sub.events <- ev:
		default:
			stalled = append(stalled, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range stalled {
		h.Unsubscribe(sub)
	}
}

// PublishBid lets the hub stand in as the coordinator's publisher when no
// cross-instance bridge is wired.
func (h *Hub) PublishBid(_ context.Context, ev Event) {
	h.Publish(ev.ListingID, ev)
}
