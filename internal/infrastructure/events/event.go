// Package events carries auth/session notifications between the use cases,
// the admin CLI and the session watcher.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	UserRegistered Kind = "user.registered"
	SignedIn       Kind = "session.signed_in"
	SignedOut      Kind = "session.signed_out"
	ProfileChanged Kind = "profile.changed"
)

// Channel is the redis pub/sub channel auth events travel on.
const Channel = "codelearn:auth:events"

type Event struct {
	Kind      Kind      `json:"kind"`
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id,omitempty"`
	At        time.Time `json:"at"`
}

func New(kind Kind, userID uuid.UUID, sessionID string) Event {
	return Event{Kind: kind, UserID: userID, SessionID: sessionID, At: time.Now().UTC()}
}

// Subscription delivers events on C until Close is called or the context
// passed to Subscribe is cancelled. C is closed afterwards.
type Subscription struct {
	C <-chan Event

	once sync.Once
	stop func()
}

func (s *Subscription) Close() {
	s.once.Do(s.stop)
}
