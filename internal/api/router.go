package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/healthshield/mentions-bot/internal/keywords"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/monitoring"
	"github.com/healthshield/mentions-bot/internal/runlock"
	"github.com/healthshield/mentions-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

// Pipeline is the part of the monitoring service exposed over HTTP
type Pipeline interface {
	RunScrape(ctx context.Context) (*monitoring.RunResult, error)
	RunSearch(ctx context.Context) (*monitoring.RunResult, error)
	BackfillLocations(ctx context.Context, limit int) (*monitoring.JobResult, error)
	CleanMetadata(ctx context.Context, limit int) (*monitoring.JobResult, error)
	GetMetrics() string
}

// Server serves the mention, keyword and job endpoints
type Server struct {
	pipeline Pipeline
	mentions storage.MentionStore
	keywords *keywords.Manager
	now      func() time.Time
}

// NewServer creates the HTTP handlers over the given services
func NewServer(pipeline Pipeline, store storage.Store) *Server {
	return &Server{
		pipeline: pipeline,
		mentions: store,
		keywords: keywords.NewManager(store),
		now:      time.Now,
	}
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", s.metricsHandler).Methods("GET")

	router.HandleFunc("/keywords", s.addKeywordHandler).Methods("POST")
	router.HandleFunc("/keywords", s.listKeywordsHandler).Methods("GET")
	router.HandleFunc("/keywords/{id}", s.removeKeywordHandler).Methods("DELETE")

	router.HandleFunc("/health-mentions", s.listMentionsHandler).Methods("GET")
	router.HandleFunc("/health-mentions/{id}/status", s.updateStatusHandler).Methods("PUT")

	router.HandleFunc("/scrape-news", s.runHandler(s.pipeline.RunScrape)).Methods("POST")
	router.HandleFunc("/search-news", s.runHandler(s.pipeline.RunSearch)).Methods("POST")
	router.HandleFunc("/postprocess-locations", s.jobHandler(s.pipeline.BackfillLocations)).Methods("POST")
	router.HandleFunc("/clean-mentions", s.jobHandler(s.pipeline.CleanMetadata)).Methods("POST")

	return router
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.pipeline.GetMetrics()))
}

func (s *Server) runHandler(run func(context.Context) (*monitoring.RunResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := run(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) jobHandler(job func(context.Context, int) (*monitoring.JobResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intParam(r, "limit", monitoring.DefaultJobLimit)
		if err != nil {
			writeError(w, err)
			return
		}
		result, err := job(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateKeyword), errors.Is(err, runlock.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logrus.Errorf("Request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Warnf("Failed to encode response: %v", err)
	}
}
