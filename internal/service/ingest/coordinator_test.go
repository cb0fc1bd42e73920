package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"call-assessment-service/internal/speech"
)

// scriptedSession implements speech.Session for testing. The script runs
// against the callback when the coordinator closes the send side.
type scriptedSession struct {
	script    func(cb speech.Callback)
	startErr  error
	sendErr   error
	mu        sync.Mutex
	cb        speech.Callback
	audio     int
	stopped   bool
	scriptRun bool
}

func (s *scriptedSession) Start(ctx context.Context, cb speech.Callback) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.mu.Lock()
	s.cb = cb
	s.mu.Unlock()
	return nil
}

func (s *scriptedSession) SendAudio(ctx context.Context, audio []byte) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	s.audio += len(audio)
	s.mu.Unlock()
	return nil
}

func (s *scriptedSession) CloseSend() error {
	s.mu.Lock()
	run := s.scriptRun
	s.scriptRun = true
	cb := s.cb
	s.mu.Unlock()
	if !run && s.script != nil {
		s.script(cb)
	}
	return nil
}

func (s *scriptedSession) Stop() error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	return nil
}

type sessionFactory struct {
	sess *scriptedSession
}

func (f *sessionFactory) NewSession() speech.Session {
	return f.sess
}

// capturingPublisher records published events.
type capturingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
	err    error
}

func (p *capturingPublisher) Publish(ctx context.Context, callID string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, callID)
	p.events = append(p.events, event)
	return nil
}

func ingestWith(t *testing.T, sess *scriptedSession, pub *capturingPublisher) (string, error) {
	t.Helper()
	coord := NewCoordinator(&sessionFactory{sess: sess}, pub, 5*time.Second)
	return coord.Ingest(context.Background(), "call-recording.wav", bytes.NewReader(make([]byte, 6400)))
}

func TestIngest_SpeakerLabelsConsistent(t *testing.T) {
	sess := &scriptedSession{script: func(cb speech.Callback) {
		cb.OnUtterance("1", "hello, how can I help")
		cb.OnUtterance("2", "my order never arrived")
		cb.OnUtterance("1", "let me check that for you")
		cb.OnUtterance("", "inaudible segment")
		cb.OnStopped()
	}}
	pub := &capturingPublisher{}

	callID, err := ingestWith(t, sess, pub)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if callID == "" {
		t.Fatal("expected non-empty call id")
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected exactly one published message, got %d", len(pub.events))
	}

	payload, err := json.Marshal(pub.events[0])
	if err != nil {
		t.Fatalf("published event not marshalable: %v", err)
	}
	var msg map[string]string
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("published event not valid JSON: %v", err)
	}

	want := strings.Join([]string{
		"Speaker 1: hello, how can I help",
		"Speaker 2: my order never arrived",
		"Speaker 1: let me check that for you",
		"Unknown: inaudible segment",
	}, "\n")
	if msg["transcript"] != want {
		t.Errorf("transcript mismatch:\ngot:  %q\nwant: %q", msg["transcript"], want)
	}
	if msg["call_id"] != callID {
		t.Errorf("published call_id %q does not match returned %q", msg["call_id"], callID)
	}
	if !sess.stopped {
		t.Error("expected session teardown after completion")
	}
}

func TestIngest_EmptySessionStillPublishes(t *testing.T) {
	sess := &scriptedSession{script: func(cb speech.Callback) {
		cb.OnStopped()
	}}
	pub := &capturingPublisher{}

	if _, err := ingestWith(t, sess, pub); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected one published message for empty session, got %d", len(pub.events))
	}

	payload, _ := json.Marshal(pub.events[0])
	var msg map[string]any
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("published event not valid JSON: %v", err)
	}
	if _, ok := msg["call_id"]; !ok {
		t.Error("expected call_id key in published message")
	}
	transcript, ok := msg["transcript"]
	if !ok {
		t.Error("expected transcript key in published message")
	}
	if transcript != "" {
		t.Errorf("expected empty transcript, got %q", transcript)
	}
}

func TestIngest_ErrorCancellationStillPublishes(t *testing.T) {
	sess := &scriptedSession{script: func(cb speech.Callback) {
		cb.OnUtterance("1", "partial line before failure")
		cb.OnCanceled(speech.CancelReasonError, "recognizer connection reset")
	}}
	pub := &capturingPublisher{}

	if _, err := ingestWith(t, sess, pub); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected accumulated lines published after errored cancel, got %d messages", len(pub.events))
	}

	payload, _ := json.Marshal(pub.events[0])
	var msg map[string]string
	_ = json.Unmarshal(payload, &msg)
	if msg["transcript"] != "Speaker 1: partial line before failure" {
		t.Errorf("unexpected transcript: %q", msg["transcript"])
	}
}

func TestIngest_ConcurrentTerminalEvents(t *testing.T) {
	// Both terminal sinks fire concurrently; the completion signal must
	// transition exactly once and the wait must unblock.
	sess := &scriptedSession{script: func(cb speech.Callback) {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			cb.OnCanceled(speech.CancelReasonEndOfStream, "")
		}()
		go func() {
			defer wg.Done()
			cb.OnStopped()
		}()
		wg.Wait()
	}}
	pub := &capturingPublisher{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := ingestWith(t, sess, pub); err != nil {
			t.Errorf("Ingest failed: %v", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator deadlocked on concurrent terminal events")
	}
	if len(pub.events) != 1 {
		t.Errorf("expected exactly one published message, got %d", len(pub.events))
	}
}

func TestIngest_StartFailureIsFatal(t *testing.T) {
	sess := &scriptedSession{startErr: errors.New("recognizer unreachable")}
	pub := &capturingPublisher{}

	if _, err := ingestWith(t, sess, pub); err == nil {
		t.Fatal("expected error when session start fails")
	}
	if len(pub.events) != 0 {
		t.Errorf("expected no publish on transport failure, got %d", len(pub.events))
	}
}

func TestIngest_PublishFailureIsFatal(t *testing.T) {
	sess := &scriptedSession{script: func(cb speech.Callback) {
		cb.OnStopped()
	}}
	pub := &capturingPublisher{err: errors.New("broker unreachable")}

	if _, err := ingestWith(t, sess, pub); err == nil {
		t.Fatal("expected error when publish fails")
	}
}

func TestIngest_WaitTimeout(t *testing.T) {
	// Session never signals termination.
	sess := &scriptedSession{script: func(cb speech.Callback) {}}
	pub := &capturingPublisher{}
	coord := NewCoordinator(&sessionFactory{sess: sess}, pub, 50*time.Millisecond)

	_, err := coord.Ingest(context.Background(), "stuck.wav", bytes.NewReader(nil))
	if err == nil {
		t.Fatal("expected timeout error for session that never terminates")
	}
	if len(pub.events) != 0 {
		t.Errorf("expected no publish on timed-out session, got %d", len(pub.events))
	}
}

func TestCompletion_SettleOnce(t *testing.T) {
	c := newCompletion()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Settle()
		}()
	}
	wg.Wait()

	// A second wave of settles on an already-resolved signal must not panic.
	c.Settle()

	if err := c.Wait(context.Background(), time.Second); err != nil {
		t.Errorf("Wait after settle returned %v", err)
	}
}

func TestCompletion_WaitContextCanceled(t *testing.T) {
	c := newCompletion()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Wait(ctx, 0); err == nil {
		t.Error("expected context error from Wait")
	}
}
