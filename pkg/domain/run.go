package domain

import "time"

// RunStatus is the lifecycle state of one graph execution.
type RunStatus string

const (
	// RunRunning means the engine is still stepping the graph.
	RunRunning RunStatus = "running"
	// RunCompleted means the run reached a terminal node.
	RunCompleted RunStatus = "completed"
	// RunFailed means a node failed or dispatch hit an unknown node.
	RunFailed RunStatus = "failed"
	// RunLoopLimitExceeded means the iteration safeguard fired before a
	// terminal node was reached. Not an error, a recognized outcome.
	RunLoopLimitExceeded RunStatus = "loop_limit_exceeded"
)

// StepLog records one engine step: the node that ran, its log line, and
// the state snapshot after its mutations.
type StepLog struct {
	Node  string      `json:"node"`
	Log   string      `json:"log,omitempty"`
	State SharedState `json:"state_snapshot"`
}

// RunRecord is the trace and outcome of one graph execution. It is
// mutated only by the owning engine while the run is in flight and is
// immutable afterwards.
type RunRecord struct {
	ID      string    `json:"run_id"`
	GraphID string    `json:"graph_id"`
	Status  RunStatus `json:"status"`

	// State is the shared state as of the last completed step (final
	// state once the run terminates).
	State SharedState `json:"current_state"`

	// Trace is the ordered sequence of node names that executed.
	Trace []string `json:"trace"`

	// Steps carries the per-step logs with state snapshots.
	Steps []StepLog `json:"logs"`

	// CurrentNode is the node in flight, empty once the run terminates.
	CurrentNode string `json:"current_node,omitempty"`

	Error string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// Clone returns a deep copy so stores can hand out records without
// exposing engine-owned memory.
func (r *RunRecord) Clone() *RunRecord {
	out := *r
	out.State = r.State.Clone()
	out.Trace = make([]string, len(r.Trace))
	copy(out.Trace, r.Trace)
	out.Steps = make([]StepLog, len(r.Steps))
	for i, s := range r.Steps {
		out.Steps[i] = StepLog{Node: s.Node, Log: s.Log, State: s.State.Clone()}
	}
	return &out
}
