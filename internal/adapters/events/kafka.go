// Package events publishes domain events. Kafka (franz-go) is used when
// configured; otherwise events are dropped by Nop.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

const kafkaServiceName = "kafka"

var (
	_ ports.EventPublisher = (*Kafka)(nil)
	_ ports.HealthChecker  = (*Kafka)(nil)
	_ ports.EventPublisher = Nop{}
)

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
	Logger   *slog.Logger
}

// Kafka publishes events as JSON records. The record key is the event key
// and the event type travels in the "event-type" header.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka creates a producer. Brokers are contacted lazily, so this does not
// fail when Kafka is down.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerLinger(0),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}

	return &Kafka{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish implements ports.EventPublisher. It waits for the broker ack.
func (k *Kafka) Publish(ctx context.Context, event ports.Event) error {
	value, err := json.Marshal(envelope{
		ID:         uuid.NewString(),
		Type:       event.EventType(),
		OccurredAt: time.Now().UTC(),
		Data:       event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.EventType(), err)
	}

	rec := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.Key()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event-type", Value: []byte(event.EventType())},
		},
	}

	if err := k.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return domain.NewUnavailableError(kafkaServiceName, err.Error())
	}

	k.logger.DebugContext(ctx, "event published",
		slog.String("event_type", event.EventType()),
		slog.String("key", event.Key()),
	)

	return nil
}

// Name implements ports.HealthChecker.
func (k *Kafka) Name() string { return kafkaServiceName }

// Optional implements ports.OptionalChecker. Quotes are stored even when
// no broker is reachable.
func (k *Kafka) Optional() bool { return true }

// Check implements ports.HealthChecker.
func (k *Kafka) Check(ctx context.Context) error {
	return k.client.Ping(ctx)
}

// Close flushes pending records and closes the client.
func (k *Kafka) Close() {
	k.client.Close()
}

type envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Nop drops every event.
type Nop struct{}

// Publish implements ports.EventPublisher.
func (Nop) Publish(context.Context, ports.Event) error { return nil }
