package events

import (
	"context"
	"sync"
)

// LocalBus is the in-process bus used with the memory backend. Slow
// subscribers miss events rather than block publishers.
type LocalBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]chan Event)}
}

func (b *LocalBus) Publish(_ context.Context, e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context) (*Subscription, error) {
	ch := make(chan Event, 64)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-subCtx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return &Subscription{C: ch, stop: func() {
		cancel()
		<-done
	}}, nil
}
