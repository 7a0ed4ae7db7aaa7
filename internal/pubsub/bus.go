// Package pubsub carries the in-process "something changed" signals that keep
// independent surfaces (header badge, cart listing, checkout) in sync without
// wiring them to each other. Events have no payload; subscribers re-derive
// whatever view they need.
package pubsub

import "sync"

type Event string

const (
	// CartChanged fires once per settled cart mutation, never on a failed one.
	CartChanged Event = "cart_changed"
	// SessionChanged fires on login, registration-then-login and logout.
	SessionChanged Event = "session_changed"
	// SessionExpired fires when the backend rejects the stored token.
	SessionExpired Event = "session_expired"
)

type Handler func(Event)

type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers h and returns its unsubscribe func. Handlers run on the
// publishing goroutine, in no guaranteed order.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = h
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers e synchronously to every current subscriber. The handler
// list is snapshotted first so a handler may unsubscribe itself.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	hs := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		hs = append(hs, h)
	}
	b.mu.Unlock()
	for _, h := range hs {
		h(e)
	}
}
