package ratelimit

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tagging/internal/shared/config"
	"tagging/internal/shared/constants"
)

type RateLimitType string

const (
	RateLimitTypeDefault RateLimitType = "default"
	RateLimitTypePublic  RateLimitType = "public"
	RateLimitTypeAuth    RateLimitType = "auth"
	RateLimitTypeAdmin   RateLimitType = "admin"
	RateLimitTypeHealth  RateLimitType = "health"
)

type Config struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	AuthRequests    int           `json:"auth_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// NewConfig maps the application rate limit settings
func NewConfig(rc config.RateLimitConfig) *Config {
	return &Config{
		Enabled:         rc.Enabled,
		WindowDuration:  rc.WindowDuration,
		DefaultRequests: rc.DefaultRequests,
		PublicRequests:  rc.PublicRequests,
		AuthRequests:    rc.AuthRequests,
		AdminRequests:   rc.AdminRequests,
		HealthRequests:  rc.HealthRequests,
		WhitelistedIPs:  rc.WhitelistedIPs,
	}
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// Sliding window over a sorted set scored by request time in milliseconds
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_seconds = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current_count = redis.call('ZCARD', key)
	if current_count >= limit then
		redis.call('EXPIRE', key, window_seconds)
		return {0, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, window_seconds)
	return {1, limit - current_count - 1}
`)

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *redis.Client
	config *Config
}

func NewRateLimiter(client *redis.Client, config *Config) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// IsAllowed records the request and reports whether it fits in the window
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)

	if !r.config.Enabled || r.client == nil || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: time.Now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := constants.BuildRateLimitKey(clientIP, string(limitType))
	return r.checkLimit(ctx, key, limit)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-r.config.WindowDuration)

	values, err := slidingWindow.Run(ctx, r.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		int(r.config.WindowDuration.Seconds()),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response: %v", values)
	}

	return &Result{
		Allowed:   values[0] == 1,
		Limit:     limit,
		Remaining: int(values[1]),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeAuth:
		return r.config.AuthRequests
	case RateLimitTypeAdmin:
		return r.config.AdminRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	return slices.Contains(r.config.WhitelistedIPs, ip)
}
