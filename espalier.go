package espalier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	httpAdapter "github.com/aretw0/espalier/internal/adapters/http"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/internal/metrics"
	"github.com/aretw0/espalier/internal/runtime"
	"github.com/aretw0/espalier/internal/workflows/review"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Version is the released version of espalier.
const Version = "0.1.0"

// Service is the high-level entry point: registries, stores and the
// execution engine wired together, with the sample review workflow
// registered and its default graph created.
type Service struct {
	Engine *runtime.Engine
	Nodes  *registry.NodeRegistry
	Tools  *registry.ToolRegistry

	// Metrics is the Prometheus registry backing /metrics.
	Metrics *prometheus.Registry

	// DefaultGraphID identifies the seeded review graph, empty when
	// seeding was disabled.
	DefaultGraphID string

	logger   *slog.Logger
	runStore ports.RunStore
	seed     bool

	maxIterations int
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a structured logger for the engine and adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRunStore swaps the in-memory run store for another adapter
// (e.g. the Redis store).
func WithRunStore(store ports.RunStore) Option {
	return func(s *Service) {
		s.runStore = store
	}
}

// WithMaxIterations sets the default per-run iteration bound.
func WithMaxIterations(n int) Option {
	return func(s *Service) {
		s.maxIterations = n
	}
}

// WithoutDefaultWorkflow skips registering the sample review workflow
// and its graph. The node and tool registries start empty.
func WithoutDefaultWorkflow() Option {
	return func(s *Service) {
		s.seed = false
	}
}

// New wires a ready-to-serve Service.
func New(opts ...Option) (*Service, error) {
	svc := &Service{
		Nodes:    registry.NewNodeRegistry(),
		Tools:    registry.NewToolRegistry(),
		Metrics:  prometheus.NewRegistry(),
		logger:   logging.NewNop(),
		runStore: memory.NewRunStore(),
		seed:     true,

		maxIterations: runtime.DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(svc)
	}

	svc.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if svc.seed {
		if err := review.Register(svc.Nodes, svc.Tools); err != nil {
			return nil, fmt.Errorf("failed to register review workflow: %w", err)
		}
	}

	svc.Engine = runtime.NewEngine(
		svc.Nodes,
		svc.Tools,
		memory.NewGraphStore(),
		svc.runStore,
		runtime.WithLogger(svc.logger),
		runtime.WithMetrics(metrics.New(svc.Metrics)),
		runtime.WithMaxIterations(svc.maxIterations),
	)

	if svc.seed {
		graphID, err := svc.Engine.CreateGraph(context.Background(),
			review.NodeNames(), review.NodeExtractFunctions, review.Edges(), review.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to create default graph: %w", err)
		}
		svc.DefaultGraphID = graphID
	}

	return svc, nil
}

// Handler returns the HTTP handler exposing the engine, with metrics
// mounted on /metrics.
func (s *Service) Handler() http.Handler {
	return httpAdapter.NewHandler(s.Engine, s.Metrics, httpAdapter.WithLogger(s.logger))
}
