package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"call-assessment-service/internal/app"
	"call-assessment-service/internal/config"
	"call-assessment-service/internal/events"
	httpapi "call-assessment-service/internal/http"
	"call-assessment-service/internal/observability"
	"call-assessment-service/internal/service/ingest"
	"call-assessment-service/internal/service/scoring"
	"call-assessment-service/internal/speech"
	speechgoogle "call-assessment-service/internal/speech/google"
	speechmock "call-assessment-service/internal/speech/mock"
	"call-assessment-service/internal/store"
)

func main() {
	// Best-effort .env load for local development
	_ = godotenv.Load()

	cfg := config.Load()
	application := app.New(cfg)
	logger := application.Logger

	if err := application.Start(); err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer application.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Collaborator clients are constructed once per process and reused.
	st, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("store init failed")
	}
	defer closeStore()

	publisher := events.NewPublisher(&events.PublisherConfig{
		Enabled: cfg.Kafka.Enabled,
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer publisher.Close()

	sessions, closeSpeech, err := newSessionFactory(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("speech client init failed")
	}
	defer closeSpeech()

	scorer := scoring.NewOpenAIScorer(cfg.Scorer)

	// Ingestion: inbox watcher feeding the coordinator
	coordinator := ingest.NewCoordinator(sessions, publisher, cfg.Ingest.SessionMaxDuration)
	watcher := ingest.NewWatcher(cfg.Ingest.WatchDir, coordinator)
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("watcher stopped")
		}
	}()

	// Fan-out: one durable subscription per assessment dimension plus the
	// raw transcript persister, each isolated in its own goroutine.
	var wg sync.WaitGroup
	var subscriptions []*events.Subscription
	if cfg.Kafka.Enabled {
		for _, dim := range scoring.Dimensions {
			worker := scoring.NewWorker(dim, scorer, st)
			sub := events.NewSubscription(events.SubscriptionConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				Name:    dim.SubscriptionName(),
			}, worker.Handle)
			subscriptions = append(subscriptions, sub)
		}

		persister := scoring.NewTranscriptPersister(st)
		sub := events.NewSubscription(events.SubscriptionConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			Name:    scoring.PersisterSubscription,
		}, persister.Handle)
		subscriptions = append(subscriptions, sub)

		for _, sub := range subscriptions {
			wg.Add(1)
			go func(s *events.Subscription) {
				defer wg.Done()
				s.Run(ctx)
			}(sub)
		}
	} else {
		logger.Warn().Msg("Kafka disabled, consumers not started")
	}

	// Observability server: /metrics, /healthz, /readyz
	obsServer := observability.NewServer(cfg.Service.MetricsAddr)
	obsServer.Start()

	// Query API
	queryServer := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      httpapi.NewRouter(st),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info().Str("port", cfg.Service.HTTPPort).Msg("Query API listening")
		if err := queryServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("query server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := queryServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("query server shutdown failed")
	}
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("observability server shutdown failed")
	}
	for _, sub := range subscriptions {
		if err := sub.Close(); err != nil {
			logger.Error().Err(err).Str("subscription", sub.Name()).Msg("subscription close failed")
		}
	}
	wg.Wait()
}

// newStore selects the Mongo-backed store or the in-memory fallback.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if !cfg.Mongo.Enabled {
		return store.NewMemoryStore(), func() {}, nil
	}

	ms, err := store.NewMongoStore(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ms.Close(closeCtx)
	}
	return ms, closeFn, nil
}

// newSessionFactory selects the speech provider.
func newSessionFactory(ctx context.Context, cfg *config.Config) (speech.SessionFactory, func(), error) {
	if cfg.Speech.Provider == "google" {
		client, err := speechgoogle.NewClient(ctx, speechgoogle.Config{
			LanguageCode:  cfg.Speech.LanguageCode,
			SampleRateHz:  cfg.Speech.SampleRateHz,
			AudioEncoding: cfg.Speech.AudioEncoding,
			SpeakerCount:  cfg.Speech.SpeakerCount,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	}
	return speechmock.NewClient(nil), func() {}, nil
}
