package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/internal/metrics"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// DefaultMaxIterations is the process-wide iteration bound used when a
// run does not carry its own and no option overrides it. It is the only
// safeguard against cyclic graphs running forever.
const DefaultMaxIterations = 25

// MaxIterationsKey is the SharedState key a caller can set in the
// initial state to bound a single run.
const MaxIterationsKey = "max_iterations"

// Engine walks a graph definition node by node, threading one
// SharedState through the step implementations, until a terminal
// condition is reached. One call to Run executes one run synchronously
// to completion; concurrent Run calls are independent.
type Engine struct {
	nodes  *registry.NodeRegistry
	tools  *registry.ToolRegistry
	graphs ports.GraphStore
	runs   ports.RunStore

	logger        *slog.Logger
	metrics       *metrics.Metrics
	maxIterations int
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for run progress.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithMaxIterations sets the default per-run iteration bound.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// NewEngine creates an engine over the given registries and stores.
func NewEngine(nodes *registry.NodeRegistry, tools *registry.ToolRegistry, graphs ports.GraphStore, runs ports.RunStore, opts ...EngineOption) *Engine {
	e := &Engine{
		nodes:         nodes,
		tools:         tools,
		graphs:        graphs,
		runs:          runs,
		logger:        logging.NewNop(),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateGraph validates and stores a new graph definition, returning
// its id. Validation failures leave no partial definition behind:
//   - every name in nodes must resolve in the node registry
//     (domain.ErrUnknownNode),
//   - start must be in nodes (domain.ErrInvalidGraph),
//   - every edge source and every non-terminal edge target must be in
//     nodes (domain.ErrInvalidGraph).
func (e *Engine) CreateGraph(ctx context.Context, nodes []string, start string, edges map[string]string, description string) (string, error) {
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: empty node list", domain.ErrInvalidGraph)
	}

	set := make(map[string]bool, len(nodes))
	for _, name := range nodes {
		if _, err := e.nodes.Resolve(name); err != nil {
			return "", err
		}
		set[name] = true
	}

	if !set[start] {
		return "", fmt.Errorf("%w: start node %q is not in the node list", domain.ErrInvalidGraph, start)
	}

	for source, target := range edges {
		if !set[source] {
			return "", fmt.Errorf("%w: edge source %q is not in the node list", domain.ErrInvalidGraph, source)
		}
		if target != domain.Terminal && !set[target] {
			return "", fmt.Errorf("%w: edge %q -> %q references an unknown target", domain.ErrInvalidGraph, source, target)
		}
	}

	graph := &domain.GraphDefinition{
		ID:          uuid.NewString(),
		Nodes:       append([]string(nil), nodes...),
		Start:       start,
		Edges:       edges,
		Description: description,
	}
	if graph.Edges == nil {
		graph.Edges = map[string]string{}
	}

	if err := e.graphs.Save(ctx, graph); err != nil {
		return "", fmt.Errorf("failed to store graph: %w", err)
	}

	e.logger.Info("graph created", "graph", graph.ID, "start", start, "nodes", len(nodes))
	return graph.ID, nil
}

// Run executes the graph identified by graphID to completion against a
// copy of initialState and returns the finalized run record. The
// caller's initialState is never mutated.
//
// Node failures and the loop-limit safeguard do not surface as a Go
// error: they finalize the record with the corresponding status. The
// error return covers lookups (domain.ErrUnknownGraph) and store
// failures only, in which case no run record exists.
func (e *Engine) Run(ctx context.Context, graphID string, initialState domain.SharedState) (*domain.RunRecord, error) {
	graph, err := e.graphs.Get(ctx, graphID)
	if err != nil {
		return nil, err
	}

	state := initialState.Clone()
	bound := e.iterationBound(state)

	record := &domain.RunRecord{
		ID:          uuid.NewString(),
		GraphID:     graph.ID,
		Status:      domain.RunRunning,
		State:       state,
		CurrentNode: graph.Start,
		StartedAt:   time.Now().UTC(),
	}
	if err := e.runs.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store run record: %w", err)
	}

	logger := e.logger.With("run", record.ID, "graph", graph.ID)
	logger.Info("run started", "start", graph.Start, "max_iterations", bound)

	current := graph.Start
	steps := 0

	for {
		if current == domain.Terminal {
			return e.finalize(ctx, record, state, domain.RunCompleted, nil, logger)
		}
		if steps >= bound {
			logger.Warn("iteration bound reached", "steps", steps)
			return e.finalize(ctx, record, state, domain.RunLoopLimitExceeded, nil, logger)
		}

		// Names were validated at creation time, but the registry is
		// consulted again here to catch drift between creation and run.
		fn, err := e.nodes.Resolve(current)
		if err != nil {
			return e.finalize(ctx, record, state, domain.RunFailed, err, logger)
		}

		record.CurrentNode = current
		started := time.Now()
		result, err := fn(ctx, state, e.tools)
		e.observeStep(current, time.Since(started))
		if err != nil {
			// State keeps whatever the node wrote before failing.
			return e.finalize(ctx, record, state, domain.RunFailed, &domain.NodeError{Node: current, Err: err}, logger)
		}

		record.Trace = append(record.Trace, current)
		record.Steps = append(record.Steps, domain.StepLog{
			Node:  current,
			Log:   result.Log,
			State: state.Clone(),
		})
		steps++

		next := result.Next
		if next == "" {
			// No override: consult the default edge map. A node without
			// an entry is implicitly terminal.
			var ok bool
			next, ok = graph.Edges[current]
			if !ok {
				next = domain.Terminal
			}
		}

		logger.Debug("step", "node", current, "next", next, "log", result.Log)
		current = next
	}
}

// GetRun returns the record for a run id.
func (e *Engine) GetRun(ctx context.Context, runID string) (*domain.RunRecord, error) {
	return e.runs.Get(ctx, runID)
}

// ListGraphs returns the ids of all stored graphs.
func (e *Engine) ListGraphs(ctx context.Context) ([]string, error) {
	graphs, err := e.graphs.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(graphs))
	for _, g := range graphs {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// DescribeGraphs returns all stored graph definitions for
// introspection.
func (e *Engine) DescribeGraphs(ctx context.Context) ([]*domain.GraphDefinition, error) {
	return e.graphs.List(ctx)
}

// GetGraph returns one stored definition by id.
func (e *Engine) GetGraph(ctx context.Context, graphID string) (*domain.GraphDefinition, error) {
	return e.graphs.Get(ctx, graphID)
}

// ListNodes returns the registered node names.
func (e *Engine) ListNodes() []string {
	return e.nodes.Names()
}

// ListTools returns the registered tool names.
func (e *Engine) ListTools() []string {
	return e.tools.Names()
}

func (e *Engine) finalize(ctx context.Context, record *domain.RunRecord, state domain.SharedState, status domain.RunStatus, cause error, logger *slog.Logger) (*domain.RunRecord, error) {
	record.Status = status
	record.State = state
	record.CurrentNode = ""
	record.FinishedAt = time.Now().UTC()
	if cause != nil {
		record.Error = cause.Error()
	}

	if err := e.runs.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store run record: %w", err)
	}

	if e.metrics != nil {
		e.metrics.RunsTotal.WithLabelValues(string(status)).Inc()
	}

	if cause != nil {
		logger.Error("run finished", "status", status, "steps", len(record.Trace), "error", cause)
	} else {
		logger.Info("run finished", "status", status, "steps", len(record.Trace))
	}
	return record, nil
}

func (e *Engine) observeStep(node string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.NodeExecutions.WithLabelValues(node).Inc()
	e.metrics.StepDuration.WithLabelValues(node).Observe(elapsed.Seconds())
}

// runOptions are engine-recognized knobs read out of the initial state.
type runOptions struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

// iterationBound reads the per-run bound from the initial state,
// falling back to the engine default. JSON payloads deliver numbers as
// float64, so decoding is weakly typed.
func (e *Engine) iterationBound(state domain.SharedState) int {
	var opts runOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return e.maxIterations
	}
	if err := decoder.Decode(map[string]any(state)); err != nil || opts.MaxIterations <= 0 {
		return e.maxIterations
	}
	return opts.MaxIterations
}
