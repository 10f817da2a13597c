// Package httpapi exposes the engine as a JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/forager/pkg/domain"
)

// Engine is the surface the handlers need.
type Engine interface {
	Recommend(ctx context.Context, query string, rc domain.RunContext) (*domain.SessionRecord, error)
	Session(ctx context.Context, sessionID string) (*domain.SessionRecord, error)
	Sessions(ctx context.Context) ([]string, error)
}

// Server holds the handler dependencies.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler builds the router: POST /recommend, GET /sessions,
// GET /sessions/{id}, GET /healthz and GET /metrics.
func NewHandler(engine Engine, logger *slog.Logger) http.Handler {
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/recommend", s.recommend)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/{id}", s.getSession)
	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// recommendRequest is the POST /recommend body.
type recommendRequest struct {
	Query     string             `json:"query"`
	TopK      int                `json:"top_k,omitempty"`
	TimeoutMS int64              `json:"timeout_ms,omitempty"`
	Criteria  []domain.Criterion `json:"criteria,omitempty"`
	Prefs     map[string]any     `json:"prefs,omitempty"`
}

type recommendResponse struct {
	SessionID string          `json:"session_id"`
	Envelope  domain.Envelope `json:"envelope"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	rc := domain.RunContext{
		RequestID: middleware.GetReqID(r.Context()),
		TopK:      req.TopK,
		Timeout:   time.Duration(req.TimeoutMS) * time.Millisecond,
		Criteria:  req.Criteria,
		Prefs:     req.Prefs,
	}

	record, err := s.engine.Recommend(r.Context(), req.Query, rc)
	if err != nil {
		// Only invariant violations surface as errors; they are bugs,
		// so 500 is the honest status.
		s.logger.Error("recommend failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{
		SessionID: record.SessionID,
		Envelope:  record.Envelope,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := s.engine.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
			return
		}
		s.logger.Error("session load failed", "session", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load session"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Sessions(r.Context())
	if err != nil {
		s.logger.Error("session list failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list sessions"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
