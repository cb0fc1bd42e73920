// Package ingest turns recorded call audio into one published transcript
// message. The coordinator drains a callback-driven speech session into an
// ordered, speaker-labeled transcript and publishes it under a fresh
// correlation id.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"call-assessment-service/internal/models"
	"call-assessment-service/internal/observability/logging"
	"call-assessment-service/internal/observability/metrics"
	"call-assessment-service/internal/speech"
)

const audioChunkSize = 3200

// Publisher publishes one transcript message to the topic.
type Publisher interface {
	Publish(ctx context.Context, callID string, event any) error
}

// Coordinator aggregates speech sessions into transcripts and publishes
// them. One Coordinator serves the whole process; each call gets its own
// session and recorder.
type Coordinator struct {
	sessions           speech.SessionFactory
	publisher          Publisher
	sessionMaxDuration time.Duration
	metrics            *metrics.Metrics
}

// NewCoordinator creates a Coordinator. sessionMaxDuration bounds the wait
// on session completion; zero disables the bound.
func NewCoordinator(sessions speech.SessionFactory, publisher Publisher, sessionMaxDuration time.Duration) *Coordinator {
	return &Coordinator{
		sessions:           sessions,
		publisher:          publisher,
		sessionMaxDuration: sessionMaxDuration,
		metrics:            metrics.DefaultMetrics,
	}
}

// Ingest transcribes one audio stream and publishes the resulting
// transcript message. Returns the generated call id.
//
// The transcript is published even when the session was canceled with an
// error reason: whatever lines were accumulated before cancellation are
// still emitted. Only transport failures talking to the session or the
// topic abort the call.
func (c *Coordinator) Ingest(ctx context.Context, name string, audio io.Reader) (string, error) {
	logger := logging.WithComponent("ingest").With().Str("session", name).Logger()
	start := time.Now()
	c.metrics.RecordSessionStart()

	rec := newRecorder(name)
	sess := c.sessions.NewSession()

	if err := sess.Start(ctx, rec); err != nil {
		c.metrics.RecordSessionEnd(false, time.Since(start).Seconds())
		return "", fmt.Errorf("start session: %w", err)
	}

	if err := c.streamAudio(ctx, sess, audio); err != nil {
		_ = sess.Stop()
		c.metrics.RecordSessionEnd(false, time.Since(start).Seconds())
		return "", err
	}

	if err := sess.CloseSend(); err != nil {
		_ = sess.Stop()
		c.metrics.RecordSessionEnd(false, time.Since(start).Seconds())
		return "", fmt.Errorf("close send: %w", err)
	}

	// One blocking wait on the single-shot completion signal, resolvable
	// by either terminal event.
	if err := rec.completion.Wait(ctx, c.sessionMaxDuration); err != nil {
		_ = sess.Stop()
		logger.Error().Err(err).Msg("Session never signaled termination")
		c.metrics.RecordSessionEnd(false, time.Since(start).Seconds())
		return "", fmt.Errorf("wait for session completion: %w", err)
	}

	if err := sess.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Session teardown failed")
	}

	transcript := rec.Transcript()
	callID := uuid.NewString()
	if transcript == "" {
		logger.Warn().Str("callId", callID).Msg("Session produced no utterances, publishing empty transcript")
	}

	msg := models.TranscriptMessage{CallID: callID, Transcript: transcript}
	if err := c.publisher.Publish(ctx, callID, msg); err != nil {
		c.metrics.RecordSessionEnd(false, time.Since(start).Seconds())
		return "", fmt.Errorf("publish transcript: %w", err)
	}

	logger.Info().
		Str("callId", callID).
		Int("lines", rec.LineCount()).
		Dur("duration", time.Since(start)).
		Msg("Transcript published")
	c.metrics.RecordSessionEnd(true, time.Since(start).Seconds())
	return callID, nil
}

func (c *Coordinator) streamAudio(ctx context.Context, sess speech.Session, audio io.Reader) error {
	buf := make([]byte, audioChunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if serr := sess.SendAudio(ctx, buf[:n]); serr != nil {
				return fmt.Errorf("send audio: %w", serr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
	}
}

// recorder implements speech.Callback for one session. It accumulates
// ordered speaker-labeled lines and resolves the completion signal on the
// first terminal event.
type recorder struct {
	name       string
	completion *completion

	mu    sync.Mutex
	lines []string
}

func newRecorder(name string) *recorder {
	return &recorder{
		name:       name,
		completion: newCompletion(),
	}
}

// OnUtterance appends a speaker-labeled line. Empty text is skipped.
func (r *recorder) OnUtterance(speakerID, text string) {
	if text == "" {
		return
	}
	label := "Unknown"
	if speakerID != "" {
		label = "Speaker " + speakerID
	}

	r.mu.Lock()
	r.lines = append(r.lines, label+": "+text)
	r.mu.Unlock()

	metrics.DefaultMetrics.RecordUtterance()
	debugLogger := logging.WithComponent("ingest")
	debugLogger.Debug().
		Str("session", r.name).
		Str("speaker", label).
		Str("text", text).
		Msg("Utterance recorded")
}

// OnCanceled resolves the completion signal. An error reason is logged but
// does not abort transcript emission.
func (r *recorder) OnCanceled(reason speech.CancelReason, detail string) {
	logger := logging.WithComponent("ingest").With().Str("session", r.name).Logger()
	if reason == speech.CancelReasonError {
		logger.Error().
			Str("reason", reason.String()).
			Str("detail", detail).
			Msg("Session canceled with error")
	} else {
		logger.Warn().
			Str("reason", reason.String()).
			Msg("Session canceled")
	}
	r.completion.Settle()
}

// OnStopped resolves the completion signal.
func (r *recorder) OnStopped() {
	stopLogger := logging.WithComponent("ingest")
	stopLogger.Info().
		Str("session", r.name).
		Msg("Session stopped")
	r.completion.Settle()
}

// Transcript joins the accumulated lines. May be empty.
func (r *recorder) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.lines, "\n")
}

// LineCount returns the number of accumulated lines.
func (r *recorder) LineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}
