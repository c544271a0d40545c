package tagevents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagging/internal/shared/config"
)

func newTestHandler(handle Handler) *groupHandler {
	return &groupHandler{
		handle:     handle,
		maxRetries: 2,
		backoff:    time.Millisecond,
	}
}

func TestProcessMessage_DecodesEvent(t *testing.T) {
	event, err := NewEvent(EventTypeTagsJoined, TagsJoinedPayload{PrimaryName: "cat"})
	require.NoError(t, err)
	value, err := event.ToJSON()
	require.NoError(t, err)

	var received *Event
	h := newTestHandler(func(_ context.Context, e *Event) error {
		received = e
		return nil
	})

	require.NoError(t, h.processMessage(context.Background(), &sarama.ConsumerMessage{Value: value}))
	require.NotNil(t, received)
	assert.Equal(t, event.ID, received.ID)
	assert.Equal(t, EventTypeTagsJoined, received.Type)
}

func TestProcessMessage_InvalidJSON(t *testing.T) {
	h := newTestHandler(func(context.Context, *Event) error { return nil })

	err := h.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")})
	assert.ErrorContains(t, err, "failed to unmarshal tag event")
}

func TestExecuteWithRetry(t *testing.T) {
	calls := 0
	h := newTestHandler(func(context.Context, *Event) error {
		calls++
		if calls < 3 {
			return errors.New("redis down")
		}
		return nil
	})

	require.NoError(t, h.executeWithRetry(context.Background(), &Event{}))
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	calls := 0
	h := newTestHandler(func(context.Context, *Event) error {
		calls++
		return errors.New("redis down")
	})

	err := h.executeWithRetry(context.Background(), &Event{})
	assert.ErrorContains(t, err, "failed after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newTestHandler(func(context.Context, *Event) error {
		cancel()
		return errors.New("redis down")
	})

	err := h.executeWithRetry(ctx, &Event{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsumerConfig_SaramaConfig(t *testing.T) {
	cfg := NewConsumerConfig(config.KafkaConfig{
		Brokers:        []string{"kafka:9092"},
		TagEventsTopic: "tag-events",
		ConsumerGroup:  "tagging-cache-invalidators",
	})
	assert.Equal(t, "tag-events", cfg.Topic)
	assert.Equal(t, "tagging-cache-invalidators", cfg.GroupID)

	sc := cfg.SaramaConfig()
	assert.Equal(t, sarama.OffsetNewest, sc.Consumer.Offsets.Initial)
	assert.True(t, sc.Consumer.Return.Errors)
}
