package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-diet-planner/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pending_plan:"

// RedisStore keeps pending plans in Redis with a TTL so they survive
// restarts and are shared between server instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, p Plan) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode pending plan: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+p.ID, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store pending plan %s: %w", p.ID, err)
	}
	return p.ID, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Plan, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pending plan %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending plan %s: %w", id, err)
	}

	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode pending plan %s: %w", id, err)
	}
	p.Plan = p.Plan.Normalize()
	return &p, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}
