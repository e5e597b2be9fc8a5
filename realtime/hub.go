package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"arcadeboard/core"
)

// Filter selects which events a subscriber receives. A nil Filter accepts all.
type Filter func(core.Event) bool

// ForGame accepts score events of one game type. Guess events are rejected.
func ForGame(game core.GameType) Filter {
	return func(ev core.Event) bool {
		return ev.Score != nil && ev.Score.GameType == game
	}
}

// OfType accepts events of a single type.
func OfType(typ core.EventType) Filter {
	return func(ev core.Event) bool { return ev.Type == typ }
}

type subscriber struct {
	ch     chan core.Event
	filter Filter
}

// Hub is a simple pub/sub for broadcasting submission events to live viewers.
type Hub struct {
	mu      sync.RWMutex
	subs    map[int]subscriber
	next    int
	dropped atomic.Int64
}

func NewHub() *Hub { return &Hub{subs: map[int]subscriber{}} }

func (h *Hub) Subscribe(buffer int, filter Filter) (int, <-chan core.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	ch := make(chan core.Event, buffer)
	h.subs[id] = subscriber{ch: ch, filter: filter}
	return id, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(s.ch)
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped counts events discarded because a subscriber's buffer was full.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Broadcast never blocks: slow subscribers miss events instead of stalling
// submissions.
func (h *Hub) Broadcast(_ context.Context, ev core.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		if s.filter != nil && !s.filter(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// MarshalJSON is a helper to convert events to JSON bytes for WebSocket/SSE.
func MarshalJSON(ev core.Event) []byte {
	b, _ := json.Marshal(ev)
	return b
}
