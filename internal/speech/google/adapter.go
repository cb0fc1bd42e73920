// Package google provides a Google Cloud Speech-to-Text session adapter
// with speaker diarization enabled.
package google

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	speechsession "call-assessment-service/internal/speech"
)

// Config holds recognition settings for Google sessions.
type Config struct {
	LanguageCode  string
	SampleRateHz  int
	AudioEncoding string
	SpeakerCount  int
}

// DefaultConfig returns sensible defaults for call audio.
func DefaultConfig() Config {
	return Config{
		LanguageCode:  "en-US",
		SampleRateHz:  8000,
		AudioEncoding: "LINEAR16",
		SpeakerCount:  2,
	}
}

// Client wraps a process-lifetime Google Speech client and creates
// per-call sessions.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
type Client struct {
	client *speech.Client
	cfg    Config
}

// NewClient creates the underlying Google Speech client once.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{client: c, cfg: cfg}, nil
}

// NewSession creates a session for one call.
func (c *Client) NewSession() speechsession.Session {
	return &session{client: c.client, cfg: c.cfg}
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

type session struct {
	client *speech.Client
	cfg    Config
	stream speechpb.Speech_StreamingRecognizeClient
	cb     speechsession.Callback

	mu         sync.Mutex
	sendClosed bool
}

// Start begins a streaming recognition session with diarization and sends
// the initial config, then spawns the listen loop.
func (s *session) Start(ctx context.Context, cb speechsession.Callback) error {
	stream, err := s.client.StreamingRecognize(ctx)
	if err != nil {
		return err
	}
	s.stream = stream
	s.cb = cb

	// Send streaming config as the first message
	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        parseAudioEncoding(s.cfg.AudioEncoding),
					SampleRateHertz: int32(s.cfg.SampleRateHz),
					LanguageCode:    s.cfg.LanguageCode,
					DiarizationConfig: &speechpb.SpeakerDiarizationConfig{
						EnableSpeakerDiarization: true,
						MinSpeakerCount:          int32(s.cfg.SpeakerCount),
						MaxSpeakerCount:          int32(s.cfg.SpeakerCount),
					},
				},
				InterimResults: false,
			},
		},
	})
	if err != nil {
		return err
	}

	go s.listen()
	return nil
}

// SendAudio pushes audio bytes into the recognition stream.
func (s *session) SendAudio(ctx context.Context, audio []byte) error {
	return s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	})
}

// CloseSend signals end of audio. The provider flushes remaining results
// and ends the stream, which the listen loop reports as stopped.
func (s *session) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendClosed {
		return nil
	}
	s.sendClosed = true
	return s.stream.CloseSend()
}

// Stop tears the session down. The stream is owned by its context; closing
// the send side is all that is required here.
func (s *session) Stop() error {
	return s.CloseSend()
}

// listen receives recognition responses and translates them into session
// events until the stream ends.
func (s *session) listen() {
	for {
		resp, err := s.stream.Recv()
		if err == io.EOF {
			s.cb.OnStopped()
			return
		}
		if err != nil {
			s.cb.OnCanceled(speechsession.CancelReasonError, err.Error())
			return
		}

		for _, r := range resp.Results {
			if !r.IsFinal || len(r.Alternatives) == 0 {
				continue
			}
			alt := r.Alternatives[0]
			for _, u := range groupWordsBySpeaker(alt) {
				s.cb.OnUtterance(u.speakerID, u.text)
			}
		}
	}
}

type utterance struct {
	speakerID string
	text      string
}

// groupWordsBySpeaker splits a final alternative into runs of consecutive
// words attributed to the same speaker tag. Untagged results fall back to
// a single utterance with no speaker identity.
func groupWordsBySpeaker(alt *speechpb.SpeechRecognitionAlternative) []utterance {
	if len(alt.Words) == 0 {
		if alt.Transcript == "" {
			return nil
		}
		return []utterance{{speakerID: "", text: alt.Transcript}}
	}

	var out []utterance
	var words []string
	current := alt.Words[0].SpeakerTag

	flush := func(tag int32) {
		if len(words) == 0 {
			return
		}
		id := ""
		if tag > 0 {
			id = fmt.Sprintf("%d", tag)
		}
		out = append(out, utterance{speakerID: id, text: strings.Join(words, " ")})
		words = words[:0]
	}

	for _, w := range alt.Words {
		if w.SpeakerTag != current {
			flush(current)
			current = w.SpeakerTag
		}
		words = append(words, w.Word)
	}
	flush(current)
	return out
}

// parseAudioEncoding maps a config string to the Google encoding enum.
// Unknown values fall back to LINEAR16.
func parseAudioEncoding(s string) speechpb.RecognitionConfig_AudioEncoding {
	switch s {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC
	case "AMR":
		return speechpb.RecognitionConfig_AMR
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
