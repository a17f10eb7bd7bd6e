package locks

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// Subscriber represents one consumer of a player's lock events.
type Subscriber struct {
	PlayerID string
	Ch       chan Event
	Done     chan struct{}
}

// connInfo holds subscription metadata
type connInfo struct {
	id           ulid.ULID
	subscribedAt time.Time
	subscriber   *Subscriber
}

// playerSubs holds subscribers for a specific player
type playerSubs struct {
	mu sync.RWMutex
	m  map[ulid.ULID]connInfo
}

// Hub fans lock events out to per-player subscribers. Channels are buffered;
// a subscriber that stops draining has events dropped rather than blocking
// the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*playerSubs
	connIndex   map[ulid.ULID]string
	bufferSize  int
	dropped     uint64
}

// NewHub creates a new lock event hub with configurable buffer size
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subscribers: make(map[string]*playerSubs),
		connIndex:   make(map[ulid.ULID]string),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a consumer for one player's lock events and returns the
// subscriber plus a cancel func that detaches it.
func (h *Hub) Subscribe(playerID string) (*Subscriber, func()) {
	connID := ulid.Make()

	h.mu.Lock()
	bucket, exists := h.subscribers[playerID]
	if !exists {
		bucket = &playerSubs{m: make(map[ulid.ULID]connInfo)}
		h.subscribers[playerID] = bucket
	}
	h.connIndex[connID] = playerID
	h.mu.Unlock()

	sub := &Subscriber{
		PlayerID: playerID,
		Ch:       make(chan Event, h.bufferSize),
		Done:     make(chan struct{}),
	}

	bucket.mu.Lock()
	bucket.m[connID] = connInfo{
		id:           connID,
		subscribedAt: time.Now(),
		subscriber:   sub,
	}
	bucket.mu.Unlock()

	cancel := func() {
		h.unsubscribe(connID)
	}
	return sub, cancel
}

// unsubscribe detaches a subscriber and closes its channels.
func (h *Hub) unsubscribe(connID ulid.ULID) {
	h.mu.RLock()
	playerID, ok := h.connIndex[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	h.mu.RLock()
	bucket := h.subscribers[playerID]
	h.mu.RUnlock()
	if bucket == nil {
		h.mu.Lock()
		delete(h.connIndex, connID)
		h.mu.Unlock()
		return
	}

	bucket.mu.Lock()
	info, exists := bucket.m[connID]
	if exists {
		delete(bucket.m, connID)
	}
	empty := len(bucket.m) == 0
	bucket.mu.Unlock()

	if exists {
		close(info.subscriber.Ch)
		close(info.subscriber.Done)
	}

	h.mu.Lock()
	delete(h.connIndex, connID)
	if empty {
		delete(h.subscribers, playerID)
	}
	h.mu.Unlock()
}

// Publish delivers ev to every subscriber of ev.PlayerID.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	bucket := h.subscribers[ev.PlayerID]
	h.mu.RUnlock()
	if bucket == nil {
		return
	}

	bucket.mu.RLock()
	for _, info := range bucket.m {
		sendOrDrop(info.subscriber.Ch, ev, func() {
			atomic.AddUint64(&h.dropped, 1)
		})
	}
	bucket.mu.RUnlock()
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan Event, ev Event, onDrop func()) {
	select {
	case ch <- ev:
	default:
		onDrop()
	}
}

// Stats returns current counters for observability / tests.
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, bucket := range h.subscribers {
		bucket.mu.RLock()
		total += len(bucket.m)
		bucket.mu.RUnlock()
	}
	return total, atomic.LoadUint64(&h.dropped)
}
