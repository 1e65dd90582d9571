package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event types emitted to the audit sink.
const (
	TypeOrderCreated          = "order.created"
	TypeOrderPaid             = "order.paid"
	TypeOrderCancelled        = "order.cancelled"
	TypePurchaseOrderReceived = "purchase_order.received"
	TypeStockSwept            = "stock.swept"
)

// Envelope wraps every published event.
type Envelope struct {
	Type       string    `json:"type"`
	Reference  string    `json:"reference"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher delivers audit events. Publishing is best-effort: delivery
// failures are logged, never surfaced to the checkout path.
type Publisher interface {
	Publish(ctx context.Context, eventType, reference string, payload any)
	Close() error
}

// kafkaPublisher writes events to a Kafka topic.
type kafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher backed by a Kafka topic.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &kafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "event-publisher").Logger(),
	}
}

// Publish sends one event keyed by the reference so per-entity ordering is
// preserved within a partition.
func (p *kafkaPublisher) Publish(ctx context.Context, eventType, reference string, payload any) {
	env := Envelope{
		Type:       eventType,
		Reference:  reference,
		OccurredAt: time.Now(),
		Payload:    payload,
	}

	data, err := json.Marshal(env)
	if err != nil {
		p.logger.Error().Err(err).Str("type", eventType).Msg("failed to marshal event")
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(reference),
		Value: data,
		Time:  env.OccurredAt,
	})
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("type", eventType).
			Str("reference", reference).
			Msg("failed to publish event")
		return
	}

	p.logger.Debug().
		Str("type", eventType).
		Str("reference", reference).
		Msg("event published")
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// nopPublisher drops all events. Used when the audit sink is disabled.
type nopPublisher struct{}

// NewNopPublisher returns a publisher that discards everything.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, any) {}
func (nopPublisher) Close() error                                 { return nil }
