package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"newsfax-factcheck/internal/domain"
	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/infra/logging"
	"newsfax-factcheck/internal/usecase"
)

// Server wires the fact-check routes to the use case.
type Server struct {
	factUC usecase.FactCheckUseCase
	log    *zerolog.Logger
}

func NewServer(factUC usecase.FactCheckUseCase, log *zerolog.Logger) *Server {
	return &Server{factUC: factUC, log: log}
}

// Router builds the chi router with all middleware and routes attached.
func (s *Server) Router(corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(s.log))
	r.Use(corsMiddleware(corsOrigins))
	r.Use(metricsMiddleware)

	r.Post("/factcheck", s.handleSubmit)
	r.Get("/factcheck", s.handleGet)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

type factCheckRequest struct {
	URL string `json:"url"`
}

type resultResponse struct {
	Result []model.CheckedFact `json:"result"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req factCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, messageResponse{Message: "invalid request body"})
		return
	}

	out, err := s.factUC.Submit(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOutcome(w, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	out, err := s.factUC.Get(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "never submitted"})
			return
		}
		s.writeError(w, r, err)
		return
	}
	s.writeOutcome(w, out)
}

func (s *Server) writeOutcome(w http.ResponseWriter, out *usecase.Outcome) {
	switch out.Status {
	case usecase.StatusComplete:
		writeJSON(w, http.StatusOK, resultResponse{Result: out.Facts})
	case usecase.StatusInProgress:
		writeJSON(w, http.StatusAccepted, messageResponse{Message: "in progress"})
	case usecase.StatusStarted:
		writeJSON(w, http.StatusAccepted, messageResponse{Message: "started"})
	default:
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "unknown state"})
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidArgument) {
		writeJSON(w, http.StatusUnprocessableEntity, messageResponse{Message: "missing or invalid url"})
		return
	}
	// Anything else is the store misbehaving; no job state is assumed to
	// have changed.
	s.log.Error().Err(err).
		Str("trace_id", logging.TraceID(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeJSON(w, http.StatusServiceUnavailable, messageResponse{Message: "service unavailable"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
