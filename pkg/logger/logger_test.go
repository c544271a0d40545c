package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
}

func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.LogTagCreated(context.Background(), "id-1", "cat")
	assert.Empty(t, buf.String())

	l.LogAuthFailure(context.Background(), "wrong password", "192.0.2.1")
	assert.Contains(t, buf.String(), "Authentication Failure")
}

func TestLogImportFinished(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info").WithRequestID("req-1")

	l.LogImportFinished(context.Background(), "default", 2, 10, 25, true)

	out := buf.String()
	assert.Contains(t, out, "Tag Import Finished")
	assert.Contains(t, out, "req-1")
	assert.Contains(t, out, "synonyms")
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	original := GetDefault()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer
	replacement := NewWithWriter(&buf, "info")
	SetDefault(replacement)
	SetDefault(nil)

	assert.Same(t, replacement, GetDefault())
}

func TestLogRateLimitError(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "info").LogRateLimitError(context.Background(), "192.0.2.1", errors.New("redis down"))

	assert.Contains(t, buf.String(), "Rate limit check failed")
	assert.Contains(t, buf.String(), "redis down")
}
