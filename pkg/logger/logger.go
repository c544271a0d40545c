package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Logger is the service's slog logger. Domain events have their own helpers
// so every binary logs them with the same message and attributes.
type Logger struct {
	*slog.Logger
}

// New writes to stdout at LOG_LEVEL
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter writes to w at the given level. Gin's debug mode gets the
// readable text handler, everything else JSON. Debug level adds the source.
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := getLogLevel(levelStr)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithRequestID returns a child logger tagged with the request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with(slog.String("request_id", requestID))
}

// WithUserID returns a child logger tagged with the authenticated user
func (l *Logger) WithUserID(userID string) *Logger {
	return l.with(slog.String("user_id", userID))
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New())
}

// GetDefault returns the process-wide logger used when none is injected
func GetDefault() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger; binaries call it once the
// configured level is known
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger.Store(logger)
	}
}
