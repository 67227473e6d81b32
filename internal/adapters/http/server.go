package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine is the surface the HTTP layer needs from the execution core.
type Engine interface {
	CreateGraph(ctx context.Context, nodes []string, start string, edges map[string]string, description string) (string, error)
	Run(ctx context.Context, graphID string, initialState domain.SharedState) (*domain.RunRecord, error)
	GetRun(ctx context.Context, runID string) (*domain.RunRecord, error)
	DescribeGraphs(ctx context.Context) ([]*domain.GraphDefinition, error)
	ListNodes() []string
	ListTools() []string
}

// Server exposes the engine over JSON/HTTP.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP handler for the engine. When gatherer is
// non-nil, Prometheus metrics are served on /metrics.
func NewHandler(engine Engine, gatherer prometheus.Gatherer, opts ...Option) http.Handler {
	server := &Server{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()

	r.Get("/health", server.Health)
	r.Post("/graph/create", server.CreateGraph)
	r.Post("/graph/run", server.RunGraph)
	r.Get("/graph/state/{runID}", server.GetRunState)
	r.Get("/graph/nodes", server.ListNodes)
	r.Get("/graph/list", server.ListGraphs)

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateGraph handles POST /graph/create.
func (s *Server) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var body CreateGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	graphID, err := s.engine.CreateGraph(r.Context(), body.Nodes, body.StartNode, body.Edges, body.Description)
	if err != nil {
		s.logger.Warn("graph creation rejected", "error", err)
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, CreateGraphResponse{GraphID: graphID})
}

// RunGraph handles POST /graph/run. The run executes synchronously; a
// failed or loop-limited run is still a successful HTTP exchange and is
// reported through the status field.
func (s *Server) RunGraph(w http.ResponseWriter, r *http.Request) {
	var body RunGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.engine.Run(r.Context(), body.GraphID, domain.SharedState(body.InitialState))
	if err != nil {
		s.logger.Warn("run rejected", "graph", body.GraphID, "error", err)
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, RunGraphResponse{
		RunID:      record.ID,
		Status:     string(record.Status),
		FinalState: record.State,
		Trace:      mapTrace(record.Trace),
		Logs:       mapSteps(record.Steps),
		Error:      record.Error,
	})
}

// GetRunState handles GET /graph/state/{runID}.
func (s *Server) GetRunState(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	record, err := s.engine.GetRun(r.Context(), runID)
	if err != nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, RunStateResponse{
		RunID:        record.ID,
		GraphID:      record.GraphID,
		Status:       string(record.Status),
		CurrentState: record.State,
		Trace:        mapTrace(record.Trace),
		Logs:         mapSteps(record.Steps),
		CurrentNode:  record.CurrentNode,
		Error:        record.Error,
	})
}

// ListNodes handles GET /graph/nodes.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NodesResponse{
		AvailableNodes: s.engine.ListNodes(),
		Tools:          s.engine.ListTools(),
	})
}

// ListGraphs handles GET /graph/list.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	graphs, err := s.engine.DescribeGraphs(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := GraphListResponse{Graphs: make([]GraphSummary, 0, len(graphs))}
	for _, g := range graphs {
		resp.Graphs = append(resp.Graphs, GraphSummary{
			GraphID:     g.ID,
			Nodes:       g.Nodes,
			StartNode:   g.Start,
			Description: g.Description,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownGraph), errors.Is(err, domain.ErrUnknownRun):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownNode), errors.Is(err, domain.ErrInvalidGraph), errors.Is(err, domain.ErrDuplicateName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
