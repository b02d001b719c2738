package usecase

import (
	"context"

	"github.com/waste3d/codelearn/internal/infrastructure/events"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/metrics"
)

// SessionWatcher is the single consumer of the auth event stream. It drops
// cached profiles whose owner signed in, out or changed, and counts session
// events.
type SessionWatcher struct {
	sub     EventSubscriber
	cache   ProfileCache
	metrics *metrics.Metrics
	log     logging.Logger
}

func NewSessionWatcher(sub EventSubscriber, cache ProfileCache, m *metrics.Metrics, log logging.Logger) *SessionWatcher {
	if cache == nil {
		cache = nopProfileCache{}
	}
	return &SessionWatcher{sub: sub, cache: cache, metrics: m, log: log.With("component", "session_watcher")}
}

// Run blocks until ctx is cancelled or the subscription ends.
func (w *SessionWatcher) Run(ctx context.Context) error {
	sub, err := w.sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	w.log.Info(ctx, "watching auth events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			w.handle(ctx, e)
		}
	}
}

func (w *SessionWatcher) handle(ctx context.Context, e events.Event) {
	switch e.Kind {
	case events.SignedIn, events.SignedOut:
		w.metrics.SessionEvents.WithLabelValues(string(e.Kind)).Inc()
	case events.ProfileChanged:
	default:
		w.log.Debug(ctx, "auth event", "kind", e.Kind, "user_id", e.UserID)
		return
	}
	if err := w.cache.Delete(ctx, e.UserID); err != nil {
		w.log.Warn(ctx, "profile cache delete failed", "user_id", e.UserID, "error", err)
	}
}
