package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/waste3d/codelearn/internal/domain"
)

const profileTTL = 15 * time.Minute

type ProfileCache struct {
	client *redis.Client
}

func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

func profileKey(userID uuid.UUID) string {
	return "profile:" + userID.String()
}

func (c *ProfileCache) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	raw, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		return nil, err
	}
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProfileCache) Set(ctx context.Context, p *domain.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, profileKey(p.UserID), raw, profileTTL).Err()
}

func (c *ProfileCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, profileKey(userID)).Err()
}
