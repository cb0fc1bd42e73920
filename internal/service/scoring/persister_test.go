package scoring

import (
	"context"
	"errors"
	"testing"

	"call-assessment-service/internal/events"
	"call-assessment-service/internal/store"
)

func TestPersister_ValidMessagePersists(t *testing.T) {
	st := store.NewMemoryStore()
	p := NewTranscriptPersister(st)

	payload := messagePayload(t, "call-1", "Speaker 1: hello\nSpeaker 2: hi")
	if err := p.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	views, err := st.ListTranscripts(context.Background())
	if err != nil {
		t.Fatalf("ListTranscripts failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 transcript record, got %d", len(views))
	}
	if views[0].CallID != "call-1" {
		t.Errorf("expected call_id 'call-1', got %s", views[0].CallID)
	}
	if views[0].Transcript != "Speaker 1: hello\nSpeaker 2: hi" {
		t.Errorf("unexpected transcript: %q", views[0].Transcript)
	}
	if views[0].ID == "" {
		t.Error("expected generated record id")
	}
}

func TestPersister_InvalidMessagesAreDropped(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte("not json at all")},
		{"missing call_id", []byte(`{"transcript":"hello"}`)},
		{"empty transcript", []byte(`{"call_id":"c-1","transcript":""}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			p := NewTranscriptPersister(st)

			err := p.Handle(context.Background(), tt.payload)
			if !errors.Is(err, events.ErrDropMessage) {
				t.Fatalf("expected drop error, got %v", err)
			}
			views, _ := st.ListTranscripts(context.Background())
			if len(views) != 0 {
				t.Errorf("expected nothing persisted, got %d records", len(views))
			}
		})
	}
}

func TestPersister_RedeliveryDuplicatesRecords(t *testing.T) {
	st := store.NewMemoryStore()
	p := NewTranscriptPersister(st)

	payload := messagePayload(t, "call-1", "Speaker 1: hello")
	for i := 0; i < 2; i++ {
		if err := p.Handle(context.Background(), payload); err != nil {
			t.Fatalf("Handle %d failed: %v", i, err)
		}
	}

	views, _ := st.ListTranscripts(context.Background())
	if len(views) != 2 {
		t.Fatalf("expected 2 records after redelivery, got %d", len(views))
	}
	if views[0].ID == views[1].ID {
		t.Error("expected distinct record ids for redelivered message")
	}
	if views[0].CallID != views[1].CallID {
		t.Error("expected same call_id on both records")
	}
}
