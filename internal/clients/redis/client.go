// Package redis owns the shared Redis connection used by the lock manager.
package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"roster-pulse/internal/config"

	"github.com/redis/go-redis/v9"
)

var (
	client  *redis.Client
	initErr error
	mu      sync.Mutex
)

// Init initializes the Redis connection (first call wins, thread-safe).
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*redis.Client, error) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil {
		return client, initErr
	}

	opts, err := redis.ParseURL(cfg.RedisAddr)
	if err != nil {
		log.Error("invalid redis address", "err", err)
		return nil, err
	}

	cli := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pingErr := cli.Ping(pingCtx).Err()
	if pingErr != nil {
		log.Error("failed to ping redis", "err", pingErr)
	} else {
		log.Info("successfully connected to redis", "addr", opts.Addr)
	}

	client = cli
	initErr = pingErr

	return client, pingErr
}

// Client returns the singleton Redis client instance.
func Client() *redis.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// Shutdown closes the Redis connection. Safe to call more than once.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		return nil
	}

	err := client.Close()
	client = nil
	initErr = nil
	return err
}
