package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"call-assessment-service/internal/events"
	"call-assessment-service/internal/models"
	"call-assessment-service/internal/observability/logging"
	"call-assessment-service/internal/observability/metrics"
	"call-assessment-service/internal/schema"
	"call-assessment-service/internal/store"
)

// PersisterSubscription is the durable subscription name for the raw
// transcript persister.
const PersisterSubscription = "persist.transcripts"

// TranscriptPersister stores raw transcripts from the topic. Same
// validation pattern as the assessment workers, no scoring.
type TranscriptPersister struct {
	store     store.Store
	validator *schema.Validator
	metrics   *metrics.Metrics
}

// NewTranscriptPersister creates a TranscriptPersister.
func NewTranscriptPersister(st store.Store) *TranscriptPersister {
	return &TranscriptPersister{
		store:     st,
		validator: schema.New(),
		metrics:   metrics.DefaultMetrics,
	}
}

// Handle persists one valid transcript message. Fresh id per delivery:
// redelivery duplicates rather than overwrites.
func (p *TranscriptPersister) Handle(ctx context.Context, payload []byte) error {
	var msg models.TranscriptMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: decode message: %v", events.ErrDropMessage, err)
	}
	if err := p.validator.ValidateTranscriptMessage(msg); err != nil {
		return fmt.Errorf("%w: %v", events.ErrDropMessage, err)
	}

	rec := models.TranscriptRecord{
		ID:         uuid.NewString(),
		CallID:     msg.CallID,
		Transcript: msg.Transcript,
		CreatedAt:  time.Now().UTC(),
	}
	if err := p.store.InsertTranscript(ctx, rec); err != nil {
		return fmt.Errorf("persist transcript for call %s: %w", msg.CallID, err)
	}

	p.metrics.RecordTranscriptPersisted()
	persistLogger := logging.WithSubscription(PersisterSubscription)
	persistLogger.Info().
		Str("callId", msg.CallID).
		Str("recordId", rec.ID).
		Msg("Transcript persisted")
	return nil
}
