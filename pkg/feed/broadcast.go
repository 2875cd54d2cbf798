package feed

import (
	"context"
	"sync"
)

// Broadcaster fans updates out to any number of listeners. Slow
// listeners drop updates rather than stall the publisher.
type Broadcaster struct {
	mu        sync.Mutex
	listeners map[chan Update]struct{}
	buffer    int
}

// NewBroadcaster creates a broadcaster whose listener channels hold
// buffer updates each.
func NewBroadcaster(buffer int) *Broadcaster {
	return &Broadcaster{
		listeners: make(map[chan Update]struct{}),
		buffer:    buffer,
	}
}

// Send publishes an update to every listener, dropping per listener
// when its channel is full.
func (b *Broadcaster) Send(update Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.listeners {
		select {
		case ch <- update:
		default:
		}
	}
}

// Listen registers a listener and returns its channel plus a cancel
// function that unregisters it.
func (b *Broadcaster) Listen(ctx context.Context) (<-chan Update, context.CancelFunc) {
	ch := make(chan Update, b.buffer)

	b.mu.Lock()
	b.listeners[ch] = struct{}{}
	b.mu.Unlock()

	listenerCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-listenerCtx.Done()
		b.mu.Lock()
		delete(b.listeners, ch)
		b.mu.Unlock()
		close(ch)
	}()

	return ch, cancel
}
