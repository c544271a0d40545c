package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for the tagging service
// Pattern: tagging:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG = 24 * time.Hour // 24 hours - for very stable data
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_SHORT = 1 * time.Hour    // 1 hour - for tag listings
	TTL_SEMI_STATIC_QUICK = 15 * time.Minute // 15 minutes - for object tag lists
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "tagging"
)

// ================== TAGS MODULE ==================

// Tag Cache Keys
const (
	CACHE_KEY_TAG_RESOLVE    = CACHE_PREFIX + ":tags:resolve:name:" // + synonym name
	CACHE_KEY_TAG_BY_ID      = CACHE_PREFIX + ":tags:detail:uuid:"  // + tag-id
	CACHE_KEY_TAGS_LIST      = CACHE_PREFIX + ":tags:list"          // + :page:X:limit:Y:q:Z
	CACHE_KEY_TAGS_BY_OBJECT = CACHE_PREFIX + ":tags:by_object:"    // + type:id
)

// Tag Cache TTLs
const (
	TTL_TAG_RESOLVE    = TTL_STATIC_LONG       // 24 hours
	TTL_TAG_DETAIL     = TTL_STATIC_LONG       // 24 hours
	TTL_TAGS_LIST      = TTL_SEMI_STATIC_SHORT // 1 hour
	TTL_TAGS_BY_OBJECT = TTL_SEMI_STATIC_QUICK // 15 minutes
)

// ================== RATE LIMITING ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + ip:type
)

// ================== CACHE INVALIDATION PATTERNS ==================

// Patterns for cache invalidation (matched with SCAN)
const (
	// Every tag entry: joins, imports and renames can move any synonym
	PATTERN_INVALIDATE_TAGS_ALL = CACHE_PREFIX + ":tags:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildTagResolveKey builds the key caching synonym -> tag resolution
func BuildTagResolveKey(name string) string {
	return CACHE_KEY_TAG_RESOLVE + name
}

func BuildTagDetailKey(tagID string) string {
	return CACHE_KEY_TAG_BY_ID + tagID
}

// BuildTagListKey constructs the list key with its parameters
// Example: BuildTagListKey(1, 20, "cat") -> "tagging:tags:list:page:1:limit:20:q:cat"
func BuildTagListKey(page, limit int, search string) string {
	return fmt.Sprintf("%s:page:%d:limit:%d:q:%s", CACHE_KEY_TAGS_LIST, page, limit, search)
}

func BuildTagsByObjectKey(objectType, objectID string) string {
	return CACHE_KEY_TAGS_BY_OBJECT + objectType + ":" + objectID
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return CACHE_KEY_RATE_LIMIT + clientIP + ":" + limitType
}
