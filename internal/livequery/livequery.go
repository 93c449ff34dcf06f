// Package livequery binds a store query to a continuously updated snapshot
// stream. Consumers get the full recomputed result set on every change to the
// watched container, never a diff. On query failure the last-known-good
// result set stays in place alongside a container-scoped error string, so a
// transient store problem never blanks a view.
package livequery

import (
	"context"
	"fmt"
	"sync"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/slacklinehq/slackline/internal/store"
)

// Snapshot is one full delivery: the ordered result set plus a sticky,
// human-readable error when the latest recompute failed. Docs holds the
// last-known-good set in that case.
type Snapshot struct {
	Docs []store.Fields `json:"docs"`
	Err  string         `json:"error,omitempty"`
}

type Manager struct {
	store store.Store
}

func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// Subscribe opens a live query against container. The watch registration
// happens before the initial query so no change can slip between the first
// snapshot and the first tick. The constraint set is fixed for the life of
// the subscription; callers re-subscribe when either the container or the
// query changes.
func (m *Manager) Subscribe(ctx context.Context, container string, q store.Query) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	ticks, stopWatch := m.store.Changes().Watch(container)

	sub := &Subscription{
		snapshots: make(chan Snapshot, 1),
		cancel:    cancel,
		stopWatch: stopWatch,
	}

	go sub.run(ctx, m.store, container, q, ticks)
	return sub
}

// Subscription is a standing live query. Snapshots are delivered with
// replace-on-overflow semantics: a slow consumer only ever sees the newest
// full snapshot, which is equivalent under full-snapshot replacement.
type Subscription struct {
	snapshots chan Snapshot
	cancel    context.CancelFunc
	stopWatch func()

	mu       sync.Mutex
	closed   bool
	lastGood []store.Fields
}

// Snapshots is the delivery channel. It is closed by Close.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.snapshots
}

// Close tears the subscription down. Once it returns, no further snapshot is
// delivered.
func (s *Subscription) Close() {
	s.cancel()
	s.stopWatch()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	// Drop any buffered snapshot: a closed channel still yields buffered
	// items, which would reach the consumer after Close returned.
	select {
	case <-s.snapshots:
	default:
	}
	close(s.snapshots)
}

func (s *Subscription) run(ctx context.Context, st store.Store, container string, q store.Query, ticks <-chan struct{}) {
	s.recompute(ctx, st, container, q)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			s.recompute(ctx, st, container, q)
		}
	}
}

func (s *Subscription) recompute(ctx context.Context, st store.Store, container string, q store.Query) {
	docs, err := st.Query(ctx, container, q)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Errorw(ctx, "live query recompute failed", "container", container, "error", err)
		s.mu.Lock()
		stale := s.lastGood
		s.mu.Unlock()
		if stale == nil {
			stale = []store.Fields{}
		}
		s.deliver(Snapshot{
			Docs: stale,
			Err:  fmt.Sprintf("Error fetching %s. Please try again.", container),
		})
		return
	}

	if docs == nil {
		docs = []store.Fields{}
	}
	s.mu.Lock()
	s.lastGood = docs
	s.mu.Unlock()
	s.deliver(Snapshot{Docs: docs})
}

func (s *Subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.snapshots <- snap:
	default:
		// Stale pending snapshot: replace it with the newer one.
		select {
		case <-s.snapshots:
		default:
		}
		select {
		case s.snapshots <- snap:
		default:
		}
	}
}
