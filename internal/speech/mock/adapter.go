// Package mock provides a scripted speech session for development and
// testing without cloud credentials. It replays a two-speaker call and
// fires the stopped event once the script drains.
package mock

import (
	"context"
	"sync"
	"time"

	"call-assessment-service/internal/speech"
)

// ScriptedUtterance is one diarized line in a simulated call.
type ScriptedUtterance struct {
	SpeakerID string
	Text      string
}

// DefaultScript is a sample two-speaker support call.
var DefaultScript = []ScriptedUtterance{
	{SpeakerID: "1", Text: "Thank you for calling, how can I help you today"},
	{SpeakerID: "2", Text: "I want to cancel my subscription"},
	{SpeakerID: "1", Text: "I am sorry to hear that, let me pull up your account"},
	{SpeakerID: "2", Text: "I have been waiting for over an hour"},
	{SpeakerID: "1", Text: "I understand, I will take care of this right away"},
	{SpeakerID: "2", Text: "Thank you very much"},
}

// Client creates scripted sessions.
type Client struct {
	script []ScriptedUtterance
	// Delay between scripted events. Zero delivers synchronously.
	Delay time.Duration
}

// NewClient returns a mock session factory replaying the given script,
// or DefaultScript when nil.
func NewClient(script []ScriptedUtterance) *Client {
	if script == nil {
		script = DefaultScript
	}
	return &Client{script: script, Delay: 20 * time.Millisecond}
}

// NewSession creates a scripted session.
func (c *Client) NewSession() speech.Session {
	return &session{script: c.script, delay: c.Delay}
}

type session struct {
	script []ScriptedUtterance
	delay  time.Duration

	mu      sync.Mutex
	cb      speech.Callback
	started bool
	closed  bool
}

// Start registers the callback. The script does not replay until the
// caller signals end of audio.
func (s *session) Start(ctx context.Context, cb speech.Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
	s.started = true
	return nil
}

// SendAudio accepts and discards audio bytes.
func (s *session) SendAudio(ctx context.Context, audio []byte) error {
	return nil
}

// CloseSend replays the script asynchronously, then fires the stopped
// event. Idempotent.
func (s *session) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.started {
		return nil
	}
	s.closed = true

	cb := s.cb
	go func() {
		for _, u := range s.script {
			if s.delay > 0 {
				time.Sleep(s.delay)
			}
			cb.OnUtterance(u.SpeakerID, u.Text)
		}
		cb.OnStopped()
	}()
	return nil
}

// Stop ends the session. Replays the script first if the caller never
// closed the send side.
func (s *session) Stop() error {
	return s.CloseSend()
}
