package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config carries the connection settings the caller resolved from the
// environment. Zero PoolSize and OpTimeout fall back to defaults.
type Config struct {
	Addr      string
	Username  string
	Password  string
	PoolSize  int
	OpTimeout time.Duration
}

const (
	defaultPoolSize  = 10
	defaultOpTimeout = 2 * time.Second
)

// New connects, verifies the connection with a ping, and returns the client.
// The ping is bounded by ctx plus the configured operation timeout.
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = defaultOpTimeout
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.OpTimeout+3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}
