// Package schema validates inbound topic messages before processing.
package schema

import (
	"errors"

	"call-assessment-service/internal/models"
)

// Validation errors for transcript messages.
var (
	ErrMissingCallID     = errors.New("missing call_id")
	ErrMissingTranscript = errors.New("missing transcript")
)

// Validator checks transcript messages against the topic contract.
type Validator struct{}

// New returns a Validator.
func New() *Validator {
	return &Validator{}
}

// ValidateTranscriptMessage requires a non-empty call_id and transcript.
// Zero-utterance sessions publish empty transcripts; consumers treat them
// as invalid and drop them.
func (v *Validator) ValidateTranscriptMessage(m models.TranscriptMessage) error {
	if m.CallID == "" {
		return ErrMissingCallID
	}
	if m.Transcript == "" {
		return ErrMissingTranscript
	}
	return nil
}
