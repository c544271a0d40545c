package tagevents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagging/internal/shared/config"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event Event
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != EventTypeTagsJoined {
			return errors.New("unexpected event type " + string(event.Type))
		}
		var payload TagsJoinedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		if payload.PrimaryName != "cat" {
			return errors.New("unexpected primary " + payload.PrimaryName)
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "tag-events", nil)
	event, err := NewEvent(EventTypeTagsJoined, TagsJoinedPayload{PrimaryName: "cat", MergedNames: []string{"kitty"}})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, "tag-events", nil)
	event, err := NewEvent(EventTypeTagsImported, TagsImportedPayload{TagCount: 1})
	require.NoError(t, err)

	err = publisher.Publish(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	publisher := NewKafkaPublisherWithProducer(producer, "tag-events", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event, err := NewEvent(EventTypeTagDeleted, TagDeletedPayload{TagName: "cat"})
	require.NoError(t, err)
	assert.ErrorIs(t, publisher.Publish(ctx, event), context.Canceled)
	require.NoError(t, publisher.Close())
}

func TestNewPublisher_DisabledIsNop(t *testing.T) {
	publisher, err := NewPublisher(config.KafkaConfig{Enabled: false}, nil)
	require.NoError(t, err)

	_, ok := publisher.(NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, publisher.Publish(context.Background(), &Event{}))
}

func TestKafkaProducerConfig_SaramaConfig(t *testing.T) {
	cfg := NewKafkaProducerConfig(config.KafkaConfig{
		Brokers:        []string{"k:9092"},
		TagEventsTopic: "topic",
		RetryMax:       5,
	})

	sc := cfg.SaramaConfig()
	assert.True(t, sc.Producer.Return.Successes)
	assert.Equal(t, 5, sc.Producer.Retry.Max)
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.Equal(t, "topic", cfg.Topic)
}
