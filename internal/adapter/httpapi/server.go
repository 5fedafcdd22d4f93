// Package httpapi exposes exercise generation and practice insights over a
// JSON HTTP API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/repository"
	"github.com/eslsoft/drillnet/internal/usecase"
)

// Handler bundles the use cases behind the HTTP surface.
type Handler struct {
	orchestrator usecase.Orchestrator
	tracker      usecase.CooldownTracker
	scorer       usecase.DiversityScorer
	patterns     usecase.PatternDiversity
	exercises    repository.ExerciseRepository
	logger       *logrus.Logger
}

// NewHandler wires the API handler.
func NewHandler(
	orchestrator usecase.Orchestrator,
	tracker usecase.CooldownTracker,
	scorer usecase.DiversityScorer,
	patterns usecase.PatternDiversity,
	exercises repository.ExerciseRepository,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		tracker:      tracker,
		scorer:       scorer,
		patterns:     patterns,
		exercises:    exercises,
		logger:       logger,
	}
}

// Routes builds the router with CORS, logging and recovery middleware.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/exercises:generate", h.handleGenerate)
		r.Post("/exercises:batchGenerate", h.handleBatchGenerate)
		r.Post("/exercises:preload", h.handlePreload)
		r.Post("/exercises:preloaded", h.handlePreloaded)
		r.Get("/exercises", h.handleListExercises)

		r.Get("/users/{userID}/cooldowns", h.handleCooldownStats)
		r.Get("/users/{userID}/diversity", h.handleDiversity)
		r.Get("/users/{userID}/patterns", h.handlePatterns)

		r.Delete("/sessions/{sessionID}/cache", h.handleClearSession)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(r)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  ww.Status(),
			"elapsed": time.Since(start),
		}).Info("request handled")
	})
}
