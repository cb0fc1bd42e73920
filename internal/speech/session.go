// Package speech defines the interface for diarizing speech session providers.
package speech

import "context"

// CancelReason classifies a canceled event.
type CancelReason int

const (
	// CancelReasonEndOfStream - the provider ended the session without error.
	CancelReasonEndOfStream CancelReason = iota
	// CancelReasonError - the session was canceled due to an error condition.
	CancelReasonError
)

// String returns the string representation of the reason.
func (r CancelReason) String() string {
	switch r {
	case CancelReasonEndOfStream:
		return "END_OF_STREAM"
	case CancelReasonError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Callback receives push events from a speech session. Utterance events
// arrive in session order; exactly one terminal event (canceled or stopped)
// ends the session, though both may fire under some providers.
type Callback interface {
	// OnUtterance is called for each recognized utterance. speakerID is
	// empty when no speaker identity was assigned.
	OnUtterance(speakerID, text string)

	// OnCanceled is called when the session is canceled. detail carries
	// error information when reason is CancelReasonError.
	OnCanceled(reason CancelReason, detail string)

	// OnStopped is called on clean session termination.
	OnStopped()
}

// Session is one diarizing recognition session over a single audio stream.
type Session interface {
	// Start begins the session and registers the event sinks.
	Start(ctx context.Context, cb Callback) error

	// SendAudio pushes audio bytes into the session.
	SendAudio(ctx context.Context, audio []byte) error

	// CloseSend signals that no more audio will be sent. Terminal events
	// are delivered after the provider drains its pipeline.
	CloseSend() error

	// Stop tears the session down and releases its resources.
	Stop() error
}

// SessionFactory creates one Session per ingested call. Provider clients
// behind a factory are constructed once per process and reused.
type SessionFactory interface {
	NewSession() Session
}
