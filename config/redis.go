package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

// ConnectRedis initializes the cache client from REDIS_ADDR.
// Redis is optional: without it, auth data and email summaries are simply
// recomputed on every request.
func ConnectRedis() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		slog.Warn("REDIS_ADDR is not set, caching is disabled")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		RDB = nil
		return
	}

	slog.Info("Redis connection established")
}
