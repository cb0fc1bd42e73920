package events

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"call-assessment-service/internal/observability/logging"
	"call-assessment-service/internal/observability/metrics"
)

// ErrDropMessage marks a message as poison: it is logged, acknowledged and
// never retried. Handlers wrap validation and contract failures with it.
var ErrDropMessage = errors.New("message dropped")

// Handler processes one delivered message. Return nil to acknowledge,
// an error wrapping ErrDropMessage to drop, or any other error to leave
// the message uncommitted for redelivery (at-least-once).
type Handler func(ctx context.Context, payload []byte) error

// Outcome classifies what a subscription did with a message.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDropped   Outcome = "dropped"
	OutcomeFailed    Outcome = "failed"
)

// Classify maps a handler result to a message outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeProcessed
	case errors.Is(err, ErrDropMessage):
		return OutcomeDropped
	default:
		return OutcomeFailed
	}
}

// Subscription is one named durable subscription on the transcript topic,
// backed by a Kafka consumer group. Subscriptions are isolated from one
// another: each runs its own read loop and a failure in one handler never
// blocks delivery on another group.
type Subscription struct {
	name    string
	reader  *kafka.Reader
	handler Handler
	metrics *metrics.Metrics
}

// SubscriptionConfig holds consumer settings for one subscription.
type SubscriptionConfig struct {
	Brokers []string
	Topic   string
	// Name is the consumer group id; it identifies the durable cursor.
	Name string
}

// NewSubscription creates a durable subscription with its own consumer group.
func NewSubscription(cfg SubscriptionConfig, h Handler) *Subscription {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.Name,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &Subscription{
		name:    cfg.Name,
		reader:  reader,
		handler: h,
		metrics: metrics.DefaultMetrics,
	}
}

// Name returns the subscription (consumer group) name.
func (s *Subscription) Name() string {
	return s.name
}

// Run consumes messages until ctx is canceled. Each message is an
// independent unit of work; there is no ordering dependence between
// messages within the subscription.
func (s *Subscription) Run(ctx context.Context) {
	logger := logging.WithSubscription(s.name)
	logger.Info().Msg("Subscription started")

	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info().Msg("Subscription stopped")
				return
			}
			logger.Error().Err(err).Msg("Fetch failed")
			time.Sleep(time.Second)
			continue
		}

		herr := s.handler(ctx, msg.Value)
		outcome := Classify(herr)
		s.metrics.RecordMessage(s.name, string(outcome))

		switch outcome {
		case OutcomeProcessed:
			if err := s.reader.CommitMessages(ctx, msg); err != nil {
				logger.Error().Err(err).Msg("Commit failed")
			}
		case OutcomeDropped:
			// Poison message: acknowledge so it is never redelivered.
			logger.Warn().Err(herr).Msg("Message dropped")
			if err := s.reader.CommitMessages(ctx, msg); err != nil {
				logger.Error().Err(err).Msg("Commit failed")
			}
		case OutcomeFailed:
			// Transient failure: leave the offset uncommitted so the
			// message is redelivered after restart or rebalance.
			logger.Error().Err(herr).Msg("Message handling failed, will be redelivered")
			time.Sleep(time.Second)
		}
	}
}

// Close releases the underlying Kafka reader.
func (s *Subscription) Close() error {
	return s.reader.Close()
}
