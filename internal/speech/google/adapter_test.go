package google

import (
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LanguageCode != "en-US" {
		t.Errorf("expected default language 'en-US', got %s", cfg.LanguageCode)
	}
	if cfg.SampleRateHz != 8000 {
		t.Errorf("expected default sample rate 8000, got %d", cfg.SampleRateHz)
	}
	if cfg.AudioEncoding != "LINEAR16" {
		t.Errorf("expected default encoding 'LINEAR16', got %s", cfg.AudioEncoding)
	}
	if cfg.SpeakerCount != 2 {
		t.Errorf("expected default speaker count 2, got %d", cfg.SpeakerCount)
	}
}

func TestParseAudioEncoding(t *testing.T) {
	tests := []struct {
		input    string
		expected speechpb.RecognitionConfig_AudioEncoding
	}{
		{"LINEAR16", speechpb.RecognitionConfig_LINEAR16},
		{"MULAW", speechpb.RecognitionConfig_MULAW},
		{"FLAC", speechpb.RecognitionConfig_FLAC},
		{"AMR", speechpb.RecognitionConfig_AMR},
		{"AMR_WB", speechpb.RecognitionConfig_AMR_WB},
		{"OGG_OPUS", speechpb.RecognitionConfig_OGG_OPUS},
		{"SPEEX_WITH_HEADER_BYTE", speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE},
		{"WEBM_OPUS", speechpb.RecognitionConfig_WEBM_OPUS},
		{"UNKNOWN", speechpb.RecognitionConfig_LINEAR16}, // fallback
		{"", speechpb.RecognitionConfig_LINEAR16},        // fallback
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseAudioEncoding(tt.input)
			if got != tt.expected {
				t.Errorf("parseAudioEncoding(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func word(w string, tag int32) *speechpb.WordInfo {
	return &speechpb.WordInfo{Word: w, SpeakerTag: tag}
}

func TestGroupWordsBySpeaker(t *testing.T) {
	tests := []struct {
		name string
		alt  *speechpb.SpeechRecognitionAlternative
		want []utterance
	}{
		{
			name: "empty",
			alt:  &speechpb.SpeechRecognitionAlternative{},
			want: nil,
		},
		{
			name: "no words falls back to transcript",
			alt:  &speechpb.SpeechRecognitionAlternative{Transcript: "hello there"},
			want: []utterance{{speakerID: "", text: "hello there"}},
		},
		{
			name: "single speaker",
			alt: &speechpb.SpeechRecognitionAlternative{
				Words: []*speechpb.WordInfo{word("hello", 1), word("there", 1)},
			},
			want: []utterance{{speakerID: "1", text: "hello there"}},
		},
		{
			name: "two speakers alternating",
			alt: &speechpb.SpeechRecognitionAlternative{
				Words: []*speechpb.WordInfo{
					word("hi", 1), word("there", 1),
					word("hello", 2),
					word("how", 1), word("are", 1), word("you", 1),
				},
			},
			want: []utterance{
				{speakerID: "1", text: "hi there"},
				{speakerID: "2", text: "hello"},
				{speakerID: "1", text: "how are you"},
			},
		},
		{
			name: "untagged words have no speaker",
			alt: &speechpb.SpeechRecognitionAlternative{
				Words: []*speechpb.WordInfo{word("hello", 0), word("there", 0)},
			},
			want: []utterance{{speakerID: "", text: "hello there"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := groupWordsBySpeaker(tt.alt)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d utterances, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("utterance %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
