package store

import "sync"

// Hub fans out container-change notifications to live query subscribers.
// Notifications are coalesced level triggers, not deltas: a watcher learns
// that its container changed and re-runs its query for the full snapshot.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]*hubSub
	next int
}

type hubSub struct {
	container string
	ch        chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*hubSub)}
}

// Notify wakes every watcher of container. It never blocks: a watcher that
// already has a pending notification keeps the one it has.
func (h *Hub) Notify(container string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.container != container {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Watch registers interest in a container. The returned channel carries
// coalesced change ticks; the cancel func removes the registration. After
// cancel returns no further tick is sent.
func (h *Hub) Watch(container string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = &hubSub{container: container, ch: ch}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}
