// Package store provides durable persistence for transcript and
// assessment records.
package store

import (
	"context"

	"call-assessment-service/internal/models"
)

// Store is the narrow persistence interface the pipeline depends on.
// Inserts are insert-only under fresh ids: redelivered messages produce
// duplicate records rather than overwriting.
type Store interface {
	// InsertTranscript writes one transcript record.
	InsertTranscript(ctx context.Context, rec models.TranscriptRecord) error

	// InsertAssessment writes one assessment record.
	InsertAssessment(ctx context.Context, rec models.AssessmentRecord) error

	// ListTranscripts returns all stored transcripts projected to
	// id, call_id and transcript.
	ListTranscripts(ctx context.Context) ([]models.TranscriptView, error)
}
