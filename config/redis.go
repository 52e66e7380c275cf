package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

func InitRedis() error {
	opt, err := redisOptions()
	if err != nil {
		return err
	}
	RedisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return RedisClient.Ping(ctx).Err()
}

// redisOptions reads REDIS_ADDR, REDIS_URI or REDIS_URL, first one set wins.
// Both host:port and redis:// URLs are accepted.
func redisOptions() (*redis.Options, error) {
	val := firstEnv("REDIS_ADDR", "REDIS_URI", "REDIS_URL")
	if val == "" {
		return nil, errors.New("REDIS_ADDR (or REDIS_URI/REDIS_URL) environment variable is not set")
	}
	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		return redis.ParseURL(val)
	}
	return &redis.Options{Addr: val}, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
