// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"hotelbot/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient holds conversation state.
	CacheClient *redis.Client
	// QueueClient points at the task queue DB; only used for health checks.
	QueueClient *redis.Client
)

func newRedisClient(db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis db %d: %w", db, err)
	}
	return client, nil
}

// InitCache connects the conversation-state client.
func InitCache() error {
	client, err := newRedisClient(config.AppConfig.RedisConversationDB)
	if err != nil {
		return err
	}
	CacheClient = client
	return nil
}

// InitQueueCache connects the client used to probe the queue DB.
func InitQueueCache() error {
	client, err := newRedisClient(config.AppConfig.RedisQueueDB)
	if err != nil {
		return err
	}
	QueueClient = client
	return nil
}

// CloseCaches closes whichever clients were opened.
func CloseCaches() {
	for _, c := range []*redis.Client{CacheClient, QueueClient} {
		if c != nil {
			c.Close()
		}
	}
}
