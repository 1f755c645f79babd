package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelbot/models"

	"github.com/go-redis/redis/v8"
)

const conversationKeyPrefix = "hotelbot:conv:"

// RedisBackend stores each conversation as a JSON value under
// hotelbot:conv:<user_id>. Every write refreshes the idle TTL, so abandoned
// conversations expire on their own.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func conversationKey(userID string) string {
	return conversationKeyPrefix + userID
}

func (r *RedisBackend) Load(ctx context.Context, userID string) (*models.ConversationState, error) {
	data, err := r.client.Get(ctx, conversationKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("decode conversation state: %w", err)
	}
	return &state, nil
}

func (r *RedisBackend) Create(ctx context.Context, state *models.ConversationState) (bool, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return false, fmt.Errorf("encode conversation state: %w", err)
	}
	ok, err := r.client.SetNX(ctx, conversationKey(state.UserID), data, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (r *RedisBackend) Save(ctx context.Context, state *models.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode conversation state: %w", err)
	}
	if err := r.client.Set(ctx, conversationKey(state.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, conversationKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
