package pubsub

import (
	"context"
	"path"
	"sync"
)

type memorySubscription struct {
	pattern string
	ch      chan *Event
	cancel  context.CancelFunc
}

// MemoryPubSub is an in-process bus with Redis-style glob patterns.
// Delivery is best-effort: a full subscriber buffer drops the event.
type MemoryPubSub struct {
	mu   sync.RWMutex
	subs map[string]*memorySubscription
}

// NewMemoryPubSub creates an empty in-process bus.
func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{subs: make(map[string]*memorySubscription)}
}

// Publish delivers the event to every matching subscription.
func (m *MemoryPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subs {
		if ok, _ := path.Match(sub.pattern, channel); !ok {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe subscribes to a specific channel.
func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return m.add(ctx, channel), nil
}

// SubscribePattern subscribes to channels matching a glob pattern.
func (m *MemoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	return m.add(ctx, pattern), nil
}

func (m *MemoryPubSub) add(ctx context.Context, pattern string) <-chan *Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.subs[pattern]; ok {
		existing.cancel()
		close(existing.ch)
		delete(m.subs, pattern)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{pattern: pattern, ch: make(chan *Event, 100), cancel: cancel}
	m.subs[pattern] = sub

	go func() {
		<-subCtx.Done()
		m.remove(pattern, sub)
	}()

	return sub.ch
}

func (m *MemoryPubSub) remove(pattern string, sub *memorySubscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.subs[pattern]; ok && current == sub {
		delete(m.subs, pattern)
		close(sub.ch)
	}
}

// Unsubscribe unsubscribes from a channel or pattern.
func (m *MemoryPubSub) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.RLock()
	sub, ok := m.subs[channel]
	m.mu.RUnlock()
	if ok {
		sub.cancel()
		m.remove(channel, sub)
	}
	return nil
}

// Close drops every subscription.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, sub := range m.subs {
		sub.cancel()
		close(sub.ch)
		delete(m.subs, key)
	}
	return nil
}
