package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Address  string // Redis server address (host:port)
	Password string // Redis password (empty if no password)
	DB       int    // Redis database number (0-15)

	PoolSize     int
	MinIdleConns int
}

// RedisConfig mirrors the main config's Redis section so callers can pass it
// without importing the config package here.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// NewConfigFromRedisConfig creates a cache.Config from a RedisConfig
func NewConfigFromRedisConfig(rc RedisConfig) Config {
	address := rc.Addr
	if address == "" {
		address = rc.Host + ":" + rc.Port
	}

	return Config{
		Address:      address,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     10,
		MinIdleConns: 5,
	}
}

// NewClient creates a Redis client and checks the connection
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// Connection pool settings
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// Timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return client, nil
}
