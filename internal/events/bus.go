package events

import (
	"fmt"
	"slices"
	"sync"

	"github.com/charleschow/superleague-points/internal/telemetry"
)

// Handler processes an event. A returned error is logged and counted; the
// remaining handlers still run.
type Handler func(Event) error

type subscription struct {
	id uint64
	h  Handler
}

// Bus is a synchronous in-process event bus. Handlers run in subscription
// order on the publisher's goroutine, so a slow handler delays the caller.
// Handlers that need to block should hand off to their own goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[EventType][]subscription
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[EventType][]subscription),
	}
}

// Subscribe registers h for eventType and returns a func that removes it.
// Calling the returned func more than once is a no-op.
func (b *Bus) Subscribe(eventType EventType, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	// Copy on write: Publish iterates a snapshot without holding the lock.
	b.subs[eventType] = append(slices.Clip(b.subs[eventType]), subscription{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(eventType, id) })
	}
}

func (b *Bus) remove(eventType EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[eventType]
	i := slices.IndexFunc(subs, func(s subscription) bool { return s.id == id })
	if i < 0 {
		return
	}
	b.subs[eventType] = slices.Delete(slices.Clone(subs), i, i+1)
}

// Subscribers reports how many handlers are registered for eventType.
func (b *Bus) Subscribers(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType])
}

// Publish dispatches e to every handler registered for its type.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := b.subs[e.Type]
	b.mu.RUnlock()

	for _, s := range subs {
		if err := dispatch(s.h, e); err != nil {
			telemetry.Metrics.HandlerFailures.Inc()
			telemetry.Warnf("bus: %s handler: %v", e.Type, err)
		}
	}
}

func dispatch(h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(e)
}
