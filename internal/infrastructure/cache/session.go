package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/waste3d/codelearn/internal/domain"
)

const (
	sessionPrefix = "session:"
	refreshPrefix = "refresh_token:"
	rotatedPrefix = "refresh_rotated:"
)

// KEYS: current token, rotated token. ARGV: old, next, ttl ms, grace ms.
var rotateRefresh = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
  return false
end
if cur == ARGV[1] then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
  if tonumber(ARGV[4]) > 0 then
    redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[4])
  else
    redis.call('DEL', KEYS[2])
  end
  return ARGV[2]
end
if redis.call('GET', KEYS[2]) == ARGV[1] then
  return cur
end
return false
`)

// SessionStore keeps one session key and one refresh-token key per
// session id. Both expire with the refresh TTL.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) SaveSession(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, sessionPrefix+sessionID, userID.String(), ttl).Err()
}

func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, sessionPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, domain.ErrSessionExpired
		}
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionPrefix+sessionID).Err()
}

func (s *SessionStore) SaveRefresh(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshPrefix+sessionID, token, ttl).Err()
}

// RotateRefresh runs as one script so parallel refreshes of the same token
// cannot both rotate.
func (s *SessionStore) RotateRefresh(ctx context.Context, sessionID, old, next string, ttl, grace time.Duration) (string, error) {
	keys := []string{refreshPrefix + sessionID, rotatedPrefix + sessionID}
	cur, err := rotateRefresh.Run(ctx, s.client, keys, old, next, ttl.Milliseconds(), grace.Milliseconds()).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrSessionExpired
		}
		return "", err
	}
	return cur, nil
}

func (s *SessionStore) DeleteRefresh(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, refreshPrefix+sessionID, rotatedPrefix+sessionID).Err()
}
