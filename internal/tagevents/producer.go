package tagevents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"tagging/internal/shared/config"
	"tagging/pkg/logger"
)

// Publisher publishes tag change events
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka tag event producer
type KafkaProducerConfig struct {
	Brokers      []string
	Topic        string
	RetryMax     int
	Timeout      time.Duration
	RequiredAcks sarama.RequiredAcks
	Compression  sarama.CompressionCodec
}

// NewKafkaProducerConfig builds the producer configuration from the app config
func NewKafkaProducerConfig(cfg config.KafkaConfig) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.TagEventsTopic,
		RetryMax:     cfg.RetryMax,
		Timeout:      cfg.Timeout,
		RequiredAcks: sarama.WaitForAll,
		Compression:  sarama.CompressionSnappy,
	}
}

// SaramaConfig translates the producer configuration for sarama
func (c *KafkaProducerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = c.RequiredAcks
	saramaConfig.Producer.Compression = c.Compression
	saramaConfig.Producer.Retry.Max = c.RetryMax
	saramaConfig.Producer.Timeout = c.Timeout
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// KafkaPublisher publishes tag events to a Kafka topic
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher connects a sync producer to the configured brokers
func NewKafkaPublisher(cfg *KafkaProducerConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.Topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal tag event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.PartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send tag event to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "Tag event published",
		slog.String("topic", p.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("type", string(event.Type)),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// NopPublisher drops every event; used when Kafka is disabled
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }
func (NopPublisher) Close() error                          { return nil }

// NewPublisher returns a Kafka publisher when enabled and a no-op otherwise
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NopPublisher{}, nil
	}
	return NewKafkaPublisher(NewKafkaProducerConfig(cfg), log)
}

// PublishPayload is a convenience used by services: it builds the envelope and
// logs instead of failing when the broker is unavailable.
func PublishPayload(ctx context.Context, p Publisher, log *logger.Logger, eventType EventType, payload interface{}) {
	if p == nil {
		return
	}
	event, err := NewEvent(eventType, payload)
	if err == nil {
		err = p.Publish(ctx, event)
	}
	if err != nil && log != nil {
		log.WarnContext(ctx, "Failed to publish tag event",
			slog.String("type", string(eventType)),
			slog.String("error", err.Error()),
		)
	}
}
