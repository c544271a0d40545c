package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTP

func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.InfoContext(c.Request.Context(), "HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.ErrorContext(c.Request.Context(), "HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Database. Failed queries are errors, the rest is debug noise.

func (l *Logger) LogDBQuery(ctx context.Context, query string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "Database Query Error",
			slog.String("query", query),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return
	}
	l.DebugContext(ctx, "Database Query",
		slog.String("query", query),
		slog.Duration("duration", duration),
	)
}

func (l *Logger) LogSlowQuery(ctx context.Context, query string, duration time.Duration) {
	l.WarnContext(ctx, "Slow Database Query",
		slog.String("query", query),
		slog.Duration("duration", duration),
	)
}

// Tagging

func (l *Logger) LogTagCreated(ctx context.Context, tagID, name string) {
	l.InfoContext(ctx, "Tag Created",
		slog.String("tag_id", tagID),
		slog.String("name", name),
	)
}

// LogTagsJoined records a join; merged counts the tags folded into the primary
func (l *Logger) LogTagsJoined(ctx context.Context, primaryID, primaryName string, merged int) {
	l.InfoContext(ctx, "Tags Joined",
		slog.String("primary_id", primaryID),
		slog.String("primary_name", primaryName),
		slog.Int("merged", merged),
	)
}

func (l *Logger) LogImportFinished(ctx context.Context, database string, files, tags, synonyms int, committed bool) {
	l.InfoContext(ctx, "Tag Import Finished",
		slog.String("database", database),
		slog.Int("files", files),
		slog.Int("tags", tags),
		slog.Int("synonyms", synonyms),
		slog.Bool("committed", committed),
	)
}

// Security

func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.InfoContext(ctx, "Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.WarnContext(ctx, "Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.WarnContext(ctx, "Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// LogRateLimitError records a limiter that could not answer, usually Redis
// being unreachable
func (l *Logger) LogRateLimitError(ctx context.Context, ip string, err error) {
	l.ErrorContext(ctx, "Rate limit check failed",
		slog.String("ip", ip),
		slog.String("error", err.Error()),
	)
}
