// Package memorybus fans sync-pass and cache-changed events out to the
// SSE subscribers, in process. A slow subscriber loses events rather
// than block a running pass.
package memorybus

import (
	"sync"

	"github.com/xavion03/openings-tierlist/internal/ports"
)

type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ports.Event
	closed bool
}

func New() *Bus {
	return &Bus{subs: map[int]chan ports.Event{}}
}

func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ports.Event{Topic: topic, Payload: payload}:
		default:
			// abonné trop lent: il perd cet événement
		}
	}
}

func (b *Bus) Subscribe() (<-chan ports.Event, func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		ch := make(chan ports.Event)
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	ch := make(chan ports.Event, 32)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close drops every subscriber and closes their channels; later Publish
// calls are no-ops. Called once at server shutdown.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
