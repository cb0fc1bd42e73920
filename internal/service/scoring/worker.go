package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"call-assessment-service/internal/events"
	"call-assessment-service/internal/models"
	"call-assessment-service/internal/observability/logging"
	"call-assessment-service/internal/observability/metrics"
	"call-assessment-service/internal/schema"
	"call-assessment-service/internal/store"
)

// Worker scores delivered transcripts along one dimension and persists
// the result. One Worker instance serves one durable subscription.
type Worker struct {
	dimension Dimension
	scorer    Scorer
	store     store.Store
	validator *schema.Validator
	metrics   *metrics.Metrics
}

// NewWorker creates a Worker for one dimension.
func NewWorker(dimension Dimension, scorer Scorer, st store.Store) *Worker {
	return &Worker{
		dimension: dimension,
		scorer:    scorer,
		store:     st,
		validator: schema.New(),
		metrics:   metrics.DefaultMetrics,
	}
}

// Handle processes one delivered message: validate, score, enforce the
// response contract, persist. Validation and contract failures are poison
// (dropped, never retried); scorer and store failures are transient.
func (w *Worker) Handle(ctx context.Context, payload []byte) error {
	logger := logging.WithDimension(w.dimension.SubscriptionName(), w.dimension.Name)

	var msg models.TranscriptMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: decode message: %v", events.ErrDropMessage, err)
	}
	if err := w.validator.ValidateTranscriptMessage(msg); err != nil {
		return fmt.Errorf("%w: %v", events.ErrDropMessage, err)
	}

	start := time.Now()
	raw, err := w.scorer.Score(ctx, w.dimension.SystemPrompt(), w.dimension.UserPrompt(msg.Transcript))
	w.metrics.RecordScorerCall(w.dimension.Name, err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("score call %s: %w", msg.CallID, err)
	}

	assessment, err := parseAssessment(w.dimension, raw)
	if err != nil {
		logger.Warn().
			Str("callId", msg.CallID).
			Str("response", raw).
			Err(err).
			Msg("Scorer response violated contract")
		return fmt.Errorf("%w: %v", events.ErrDropMessage, err)
	}

	// Fresh id per delivery: redelivery produces a duplicate record
	// rather than overwriting.
	rec := models.AssessmentRecord{
		ID:         uuid.NewString(),
		CallID:     msg.CallID,
		Assessment: assessment,
		Type:       w.dimension.Name,
		CreatedAt:  time.Now().UTC(),
	}
	if err := w.store.InsertAssessment(ctx, rec); err != nil {
		return fmt.Errorf("persist assessment for call %s: %w", msg.CallID, err)
	}

	w.metrics.RecordAssessmentPersisted(w.dimension.Name)
	logger.Info().
		Str("callId", msg.CallID).
		Str("recordId", rec.ID).
		Msg("Assessment persisted")
	return nil
}

// parseAssessment enforces the response contract: the raw text must be a
// single JSON object carrying an integer score in [1,5] under the
// dimension's score key, plus string summary and reasoning. Any deviation
// (prose, markdown fencing, missing keys, out-of-range or non-integer
// score) fails; there is no fallback score.
func parseAssessment(d Dimension, raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %v", err)
	}
	// Anything after the object means the response was not a single
	// JSON object (trailing prose, fenced blocks).
	if dec.More() {
		return nil, fmt.Errorf("trailing content after JSON object")
	}

	num, ok := obj[d.ScoreKey()].(json.Number)
	if !ok {
		return nil, fmt.Errorf("missing or non-numeric %q", d.ScoreKey())
	}
	score, err := num.Int64()
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer: %v", d.ScoreKey(), err)
	}
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("%q out of range: %d", d.ScoreKey(), score)
	}

	summary, ok := obj["summary"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or non-string \"summary\"")
	}
	reasoning, ok := obj["reasoning"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or non-string \"reasoning\"")
	}

	return map[string]any{
		d.ScoreKey(): score,
		"summary":    summary,
		"reasoning":  reasoning,
	}, nil
}
