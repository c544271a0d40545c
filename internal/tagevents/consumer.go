package tagevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"tagging/internal/shared/config"
	"tagging/pkg/logger"
)

// Handler processes one tag event
type Handler func(ctx context.Context, event *Event) error

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topic                string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func NewConsumerConfig(cfg config.KafkaConfig) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              cfg.Brokers,
		GroupID:              cfg.ConsumerGroup,
		Topic:                cfg.TagEventsTopic,
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// SaramaConfig translates the consumer configuration for sarama. Only events
// published after the group first joins matter, so offsets start at the newest.
func (c *ConsumerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = c.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = c.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	return saramaConfig
}

// Consumer feeds tag events from a Kafka consumer group into a Handler
type Consumer struct {
	group   sarama.ConsumerGroup
	config  *ConsumerConfig
	handler *groupHandler
	log     *logger.Logger
	done    chan struct{}
}

func NewConsumer(cfg *ConsumerConfig, handle Handler, log *logger.Logger) (*Consumer, error) {
	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return NewConsumerWithGroup(group, cfg, handle, log), nil
}

// NewConsumerWithGroup wraps an existing consumer group
func NewConsumerWithGroup(group sarama.ConsumerGroup, cfg *ConsumerConfig, handle Handler, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Consumer{
		group:  group,
		config: cfg,
		handler: &groupHandler{
			handle:     handle,
			maxRetries: cfg.MaxRetries,
			backoff:    cfg.RetryBackoffDuration,
			log:        log,
		},
		log:  log,
		done: make(chan struct{}),
	}
}

// Start consumes until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		for err := range c.group.Errors() {
			c.log.WarnContext(ctx, "Tag event consumer error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		defer close(c.done)
		for {
			err := c.group.Consume(ctx, []string{c.config.Topic}, c.handler)
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			if err != nil {
				c.log.WarnContext(ctx, "Tag event consume failed", slog.String("error", err.Error()))
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	c.log.InfoContext(ctx, "Tag event consumer started",
		slog.String("topic", c.config.Topic),
		slog.String("group", c.config.GroupID),
	)
}

// Close leaves the group and waits for the consume loop of a started consumer
func (c *Consumer) Close() error {
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	select {
	case <-c.done:
	case <-time.After(10 * time.Second):
	}
	return nil
}

type groupHandler struct {
	handle     Handler
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.WarnContext(session.Context(), "Failed to process tag event",
					slog.Int64("offset", message.Offset),
					slog.String("error", err.Error()),
				)
			}
			// A failed event is not retried later; the cache TTL bounds staleness
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal tag event: %w", err)
	}
	return h.executeWithRetry(ctx, &event)
}

func (h *groupHandler) executeWithRetry(ctx context.Context, event *Event) error {
	var err error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if err = h.handle(ctx, event); err == nil {
			return nil
		}
		if attempt == h.maxRetries {
			break
		}

		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("tag event %s failed after %d attempts: %w", event.ID, h.maxRetries+1, err)
}
