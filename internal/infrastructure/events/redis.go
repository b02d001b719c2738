package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/waste3d/codelearn/internal/logging"
)

type RedisBus struct {
	client *redis.Client
	log    logging.Logger
}

func NewRedisBus(client *redis.Client, log logging.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}
	return nil
}

// Subscribe returns once redis has confirmed the subscription, so events
// published after it returns are not lost.
func (b *RedisBus) Subscribe(ctx context.Context) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, Channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan Event, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					b.log.Warn(subCtx, "dropping malformed auth event", "error", err)
					continue
				}
				select {
				case out <- e:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{C: out, stop: func() {
		cancel()
		<-done
	}}, nil
}
