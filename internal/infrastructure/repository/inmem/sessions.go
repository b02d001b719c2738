package inmem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
)

type SessionStore struct {
	s *Store
}

func (st *SessionStore) SaveSession(_ context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	st.s.sessions[sessionID] = expiring{value: userID.String(), expiresAt: st.s.now().Add(ttl)}
	return nil
}

func (st *SessionStore) GetSession(_ context.Context, sessionID string) (uuid.UUID, error) {
	st.s.mu.RLock()
	e, ok := st.s.sessions[sessionID]
	now := st.s.now()
	st.s.mu.RUnlock()

	if !ok || !now.Before(e.expiresAt) {
		return uuid.Nil, domain.ErrSessionExpired
	}
	return uuid.Parse(e.value)
}

func (st *SessionStore) DeleteSession(_ context.Context, sessionID string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	delete(st.s.sessions, sessionID)
	return nil
}

func (st *SessionStore) SaveRefresh(_ context.Context, sessionID, token string, ttl time.Duration) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	st.s.refresh[sessionID] = expiring{value: token, expiresAt: st.s.now().Add(ttl)}
	return nil
}

func (st *SessionStore) RotateRefresh(_ context.Context, sessionID, old, next string, ttl, grace time.Duration) (string, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	now := st.s.now()
	cur, ok := st.s.refresh[sessionID]
	if !ok || !now.Before(cur.expiresAt) {
		return "", domain.ErrSessionExpired
	}
	if cur.value == old {
		st.s.refresh[sessionID] = expiring{value: next, expiresAt: now.Add(ttl)}
		if grace > 0 {
			st.s.rotated[sessionID] = expiring{value: old, expiresAt: now.Add(grace)}
		} else {
			delete(st.s.rotated, sessionID)
		}
		return next, nil
	}
	if prev, ok := st.s.rotated[sessionID]; ok && now.Before(prev.expiresAt) && prev.value == old {
		return cur.value, nil
	}
	return "", domain.ErrSessionExpired
}

func (st *SessionStore) DeleteRefresh(_ context.Context, sessionID string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	delete(st.s.refresh, sessionID)
	delete(st.s.rotated, sessionID)
	return nil
}

type counter struct {
	n         int64
	expiresAt time.Time
}

// RateCounter is the in-process twin of cache.RateCounter.
type RateCounter struct {
	s *Store
}

func (rc *RateCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	rc.s.mu.Lock()
	defer rc.s.mu.Unlock()

	now := rc.s.now()
	c, ok := rc.s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &counter{expiresAt: now.Add(window)}
		rc.s.counters[key] = c
	}
	c.n++
	return c.n, c.expiresAt.Sub(now), nil
}
