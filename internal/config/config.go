// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the call assessment service.
type Config struct {
	Service       ServiceConfig
	Ingest        IngestConfig
	Speech        SpeechConfig
	Kafka         KafkaConfig
	Scorer        ScorerConfig
	Mongo         MongoConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds service identity and listener settings.
type ServiceConfig struct {
	Name        string
	HTTPPort    string
	MetricsAddr string
}

// IngestConfig controls the audio inbox watcher and session bounds.
type IngestConfig struct {
	WatchDir string
	// SessionMaxDuration bounds the wait on session completion.
	// Zero disables the bound.
	SessionMaxDuration time.Duration
}

// SpeechConfig selects and configures the speech recognition provider.
type SpeechConfig struct {
	Provider      string // "google" or "mock"
	LanguageCode  string
	SampleRateHz  int
	AudioEncoding string
	SpeakerCount  int
}

// KafkaConfig holds broker and topic settings for the transcript topic.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// ScorerConfig holds generative scorer settings. Sampling parameters are
// fixed across dimensions; only the rubric differs per worker.
type ScorerConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// MongoConfig holds document store settings. When disabled the service
// falls back to the in-memory store.
type MongoConfig struct {
	Enabled              bool
	URI                  string
	Database             string
	TranscriptCollection string
	AssessmentCollection string
	ConnectTimeout       time.Duration
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json, console
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        envOrDefault("SERVICE_NAME", "call-assessment-service"),
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
		Ingest: IngestConfig{
			WatchDir:           envOrDefault("INGEST_WATCH_DIR", "./inbox"),
			SessionMaxDuration: envDurationOrDefault("SESSION_MAX_DURATION", 10*time.Minute),
		},
		Speech: SpeechConfig{
			Provider:      envOrDefault("SPEECH_PROVIDER", "mock"),
			LanguageCode:  envOrDefault("SPEECH_LANGUAGE_CODE", "en-US"),
			SampleRateHz:  envIntOrDefault("SPEECH_SAMPLE_RATE_HZ", 8000),
			AudioEncoding: envOrDefault("SPEECH_AUDIO_ENCODING", "LINEAR16"),
			SpeakerCount:  envIntOrDefault("SPEECH_SPEAKER_COUNT", 2),
		},
		Kafka: KafkaConfig{
			Enabled: envBoolOrDefault("KAFKA_ENABLED", false),
			Brokers: envListOrDefault("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   envOrDefault("KAFKA_TOPIC", "call.transcripts"),
		},
		Scorer: ScorerConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens:   envIntOrDefault("SCORER_MAX_TOKENS", 500),
			Temperature: envFloatOrDefault("SCORER_TEMPERATURE", 0.7),
			TopP:        envFloatOrDefault("SCORER_TOP_P", 1.0),
		},
		Mongo: MongoConfig{
			Enabled:              envBoolOrDefault("MONGO_ENABLED", false),
			URI:                  envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Database:             envOrDefault("MONGO_DATABASE", "callassessment"),
			TranscriptCollection: envOrDefault("MONGO_TRANSCRIPT_COLLECTION", "transcripts"),
			AssessmentCollection: envOrDefault("MONGO_ASSESSMENT_COLLECTION", "assessments"),
			ConnectTimeout:       envDurationOrDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloatOrDefault(key string, def float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return def
}

func envBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envListOrDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
