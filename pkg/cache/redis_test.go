package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromRedisConfig(t *testing.T) {
	cfg := NewConfigFromRedisConfig(RedisConfig{Host: "redis", Port: "6380", DB: 2})

	assert.Equal(t, "redis:6380", cfg.Address)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 10, cfg.PoolSize)
}

func TestNewConfigFromRedisConfig_AddrWins(t *testing.T) {
	cfg := NewConfigFromRedisConfig(RedisConfig{Host: "redis", Port: "6380", Addr: "cache:6379"})

	assert.Equal(t, "cache:6379", cfg.Address)
}

func TestNewClient_EmptyAddress(t *testing.T) {
	client, err := NewClient(context.Background(), Config{})

	require.Error(t, err)
	assert.Nil(t, client)
}
