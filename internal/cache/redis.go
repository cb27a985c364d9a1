package cache

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// Connect opens the Redis client used for short-lived forecast caching.
// Returns nil when the address is empty or Redis is unreachable; the caller
// treats a nil client as cache-disabled.
func Connect(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		log.Println("REDIS_URL not set, forecast caching disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("failed to connect to Redis at %s, forecast caching disabled: %v", addr, err)
		client.Close()
		return nil
	}
	log.Println("Connected to Redis")
	return client
}
