package ws

import (
	"log/slog"
	"sync"
)

// Channel naming. Rooms, per-user inboxes, and the global presence feed all
// live in one namespace.
const PresenceChannel = "presence"

func RoomChannel(roomID string) string { return "room:" + roomID }
func UserChannel(userID string) string { return "user:" + userID }

// Subscriber is one deliverable endpoint, normally a WebSocket connection.
// Send must never block; it reports false once the endpoint is dead so the
// hub can drop it.
type Subscriber interface {
	Send(data []byte) bool
}

// Registry is the in-memory channel fabric: named channels with dynamic
// subscriber sets. Publishing to a channel nobody subscribed to is a no-op.
type Registry interface {
	Subscribe(channel string, sub Subscriber)
	Unsubscribe(channel string, sub Subscriber)
	Publish(channel string, data []byte) int
	DropSubscriber(sub Subscriber)
}

// Hub is the default Registry. All state is guarded by one RWMutex;
// Publish takes the read lock for fan-out and upgrades only to prune
// subscribers whose send path has died.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[Subscriber]struct{}
	log      *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[Subscriber]struct{}),
		log:      log,
	}
}

// Subscribe adds the subscriber to a channel, creating it on first use.
// Subscribing twice is a no-op.
func (h *Hub) Subscribe(channel string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[Subscriber]struct{})
		h.channels[channel] = subs
	}
	subs[sub] = struct{}{}
}

// Unsubscribe removes the subscriber from a channel. Empty channels are
// deleted so the map does not accumulate dead room names.
func (h *Hub) Unsubscribe(channel string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(channel, sub)
}

// DropSubscriber removes the subscriber from every channel it is in.
// Called once on disconnect.
func (h *Hub) DropSubscriber(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel, subs := range h.channels {
		if _, ok := subs[sub]; ok {
			h.removeLocked(channel, sub)
		}
	}
}

// Publish delivers data to every current subscriber of the channel and
// returns the delivery count. Subscribers that refuse the payload are
// treated as dead and dropped from all channels.
func (h *Hub) Publish(channel string, data []byte) int {
	h.mu.RLock()
	subs := h.channels[channel]
	targets := make([]Subscriber, 0, len(subs))
	for sub := range subs {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	var dead []Subscriber
	delivered := 0
	for _, sub := range targets {
		if sub.Send(data) {
			delivered++
		} else {
			dead = append(dead, sub)
		}
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, sub := range dead {
			for ch, set := range h.channels {
				if _, ok := set[sub]; ok {
					h.removeLocked(ch, sub)
				}
			}
		}
		h.mu.Unlock()
		h.log.Debug("pruned dead subscribers", slog.Int("count", len(dead)), slog.String("channel", channel))
	}
	return delivered
}

// SubscriberCount reports how many subscribers a channel currently has.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) removeLocked(channel string, sub Subscriber) {
	subs, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.channels, channel)
	}
}
