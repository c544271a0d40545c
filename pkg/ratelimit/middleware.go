package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tagging/internal/shared/utils/response"
	"tagging/pkg/logger"
)

// Middleware limits requests per client IP, with the limit picked by route
func Middleware(rateLimiter *RateLimiter, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}

	return func(c *gin.Context) {
		// Get client IP
		clientIP := getClientIP(c)

		// Determine rate limit type from route
		limitType := getRateLimitType(c.FullPath())

		// Check rate limit
		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			log.LogRateLimitError(c.Request.Context(), clientIP, err)
			response.RespondJSON(c, response.StatusError, http.StatusInternalServerError,
				"Rate limit check failed", nil, nil)
			c.Abort()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		// Check if rate limited
		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.RespondJSON(c, response.StatusError, http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitType picks the bucket for a matched route path
func getRateLimitType(path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasSuffix(path, "/status"):
		return RateLimitTypeHealth

	// Both the JSON admin API and the HTML admin pages
	case strings.Contains(path, "/admin/"):
		return RateLimitTypeAdmin

	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth

	case strings.Contains(path, "/tags"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	// Check X-Forwarded-For header
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	// Check X-Real-IP header
	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
