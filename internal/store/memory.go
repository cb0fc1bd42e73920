package store

import (
	"context"
	"sync"

	"call-assessment-service/internal/models"
)

// MemoryStore implements Store with in-memory slices, suitable for
// development without a database and for tests.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts []models.TranscriptRecord
	assessments []models.AssessmentRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// InsertTranscript appends a transcript record.
func (s *MemoryStore) InsertTranscript(ctx context.Context, rec models.TranscriptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = append(s.transcripts, rec)
	return nil
}

// InsertAssessment appends an assessment record.
func (s *MemoryStore) InsertAssessment(ctx context.Context, rec models.AssessmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments = append(s.assessments, rec)
	return nil
}

// ListTranscripts returns the stored transcript projections.
func (s *MemoryStore) ListTranscripts(ctx context.Context) ([]models.TranscriptView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TranscriptView, 0, len(s.transcripts))
	for _, rec := range s.transcripts {
		out = append(out, models.TranscriptView{
			ID:         rec.ID,
			CallID:     rec.CallID,
			Transcript: rec.Transcript,
		})
	}
	return out, nil
}

// Assessments returns a copy of the stored assessment records.
func (s *MemoryStore) Assessments() []models.AssessmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AssessmentRecord, len(s.assessments))
	copy(out, s.assessments)
	return out
}
