package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jafar090/CompliBot/internal/cache"
)

// RedisStore keeps session state in Redis with a TTL. It exists for
// deployments that opt into durability across restarts; the state machine is
// unaware of which backend is in use.
type RedisStore struct {
	redis *cache.Redis
	ttl   time.Duration
}

// NewRedisStore wraps an existing Redis connection.
func NewRedisStore(r *cache.Redis, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{redis: r, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:state:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	raw, err := s.redis.Client().Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	if state.Record == nil {
		state.Record = map[string]string{}
	}
	if state.Mode == "" {
		state.Mode = ModeGeneral
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.redis.Client().Set(ctx, sessionKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Client().Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
