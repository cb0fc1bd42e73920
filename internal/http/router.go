// Package http provides the read-only query API for stored transcripts.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"call-assessment-service/internal/models"
	"call-assessment-service/internal/store"
)

// NewRouter constructs the HTTP router for the query service.
func NewRouter(st store.Store) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/transcripts", getTranscripts(st))
	})

	return r
}

// getTranscripts returns all stored transcript projections. Read-side
// faults surface as a generic failure with no internal detail.
func getTranscripts(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := st.ListTranscripts(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to fetch transcripts")
			http.Error(w, "error fetching transcripts", http.StatusInternalServerError)
			return
		}
		if views == nil {
			views = []models.TranscriptView{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(views); err != nil {
			log.Error().Err(err).Msg("Failed to encode transcripts")
		}
	}
}
