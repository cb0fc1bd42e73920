// Package events provides transcript topic publishing and subscription
// on top of Kafka. One topic carries completed transcripts; each consumer
// group is an independently-cursored durable subscription.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"call-assessment-service/internal/observability/metrics"
)

// Publisher publishes transcript messages to the transcript topic.
type Publisher struct {
	writer  *kafka.Writer
	topic   string
	enabled bool
	metrics *metrics.Metrics
}

// PublisherConfig holds Kafka publisher configuration.
type PublisherConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// NewPublisher creates a Kafka publisher for the transcript topic.
// The publisher is intended to live for the whole process; construct it
// once at startup and Close it at shutdown.
func NewPublisher(cfg *PublisherConfig) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{enabled: false, metrics: m}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			topic:   cfg.Topic,
			enabled: false,
			metrics: m,
		}
	}

	// Custom dialer with longer timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writer:  writer,
		topic:   cfg.Topic,
		enabled: true,
		metrics: m,
	}
}

// Publish writes one message to the transcript topic, keyed by callID.
// Delivery durability past the broker ack is the broker's responsibility;
// there is no publish retry here.
func (p *Publisher) Publish(ctx context.Context, callID string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("topic", p.topic).
		Str("callId", callID).
		RawJSON("payload", payload).
		Msg("Publishing transcript message")

	// If Kafka is disabled, just log
	if !p.enabled || p.writer == nil {
		p.metrics.RecordPublish(p.topic, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(callID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("call.transcript.completed")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("callId", callID).
			Msg("Failed to write to Kafka")
		p.metrics.RecordPublish(p.topic, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordPublish(p.topic, nil, time.Since(start).Seconds())
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Kafka writer")
		return err
	}
	return nil
}
