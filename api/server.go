package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentiq/agentiq/core"
	"github.com/agentiq/agentiq/logging"
)

// Engine is the orchestration surface the HTTP layer serves. The root
// package's Engine satisfies it.
type Engine interface {
	ExecuteQuery(ctx context.Context, query string) core.QueryOutcome
	DailyBudgetStatus(ctx context.Context) (core.BudgetStatus, error)
}

// Options configures optional Server behavior.
type Options struct {
	// MaxQueryLength bounds accepted query text. Defaults to 1000.
	MaxQueryLength int

	// Logger receives request failures. Defaults to NoOpLogger.
	Logger logging.Logger

	// Gatherer serves /metrics. Defaults to the default Prometheus gatherer.
	Gatherer prometheus.Gatherer
}

// Server routes HTTP requests to an Engine.
type Server struct {
	engine      Engine
	maxQueryLen int
	logger      logging.Logger
	mux         *http.ServeMux
}

// NewServer creates the HTTP server around engine.
func NewServer(engine Engine, optFns ...func(o *Options)) *Server {
	opts := Options{
		MaxQueryLength: 1000,
		Logger:         logging.NoOpLogger{},
		Gatherer:       prometheus.DefaultGatherer,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{
		engine:      engine,
		maxQueryLen: opts.MaxQueryLength,
		logger:      opts.Logger,
		mux:         http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("GET /budget", s.handleBudget)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// queryRequest is the POST /query body.
type queryRequest struct {
	Query string `json:"query"`
}

// handleQuery validates the query and runs it. Structured execution failures
// still return 200 with the error field set; only malformed requests are
// client errors.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(s.maxQueryLen)+4096))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}
	if len(req.Query) > s.maxQueryLen {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("query exceeds maximum length of %d characters", s.maxQueryLen))
		return
	}

	outcome := s.engine.ExecuteQuery(r.Context(), req.Query)
	if outcome.Failed() {
		s.logger.Warn("Query failed", "query_id", outcome.QueryID, "error", outcome.ErrorDescription)
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.DailyBudgetStatus(r.Context())
	if err != nil {
		s.logger.Error("Budget status unavailable", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "budget status unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
