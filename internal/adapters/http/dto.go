package http

import "github.com/aretw0/espalier/pkg/domain"

// CreateGraphRequest is the payload for POST /graph/create. Edge
// values name the successor node; the marker "__end__" makes the
// source node terminal.
type CreateGraphRequest struct {
	Nodes       []string          `json:"nodes"`
	StartNode   string            `json:"start_node"`
	Edges       map[string]string `json:"edges"`
	Description string            `json:"description,omitempty"`
}

// CreateGraphResponse carries the id of the stored graph.
type CreateGraphResponse struct {
	GraphID string `json:"graph_id"`
}

// RunGraphRequest is the payload for POST /graph/run.
type RunGraphRequest struct {
	GraphID      string         `json:"graph_id"`
	InitialState map[string]any `json:"initial_state"`
}

// RunGraphResponse is the outcome of a synchronous run.
type RunGraphResponse struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	FinalState map[string]any `json:"final_state"`
	Trace      []string       `json:"trace"`
	Logs       []StepLog      `json:"logs"`
	Error      string         `json:"error,omitempty"`
}

// RunStateResponse mirrors a stored run record for GET /graph/state.
type RunStateResponse struct {
	RunID        string         `json:"run_id"`
	GraphID      string         `json:"graph_id"`
	Status       string         `json:"status"`
	CurrentState map[string]any `json:"current_state"`
	Trace        []string       `json:"trace"`
	Logs         []StepLog      `json:"logs"`
	CurrentNode  string         `json:"current_node,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// StepLog is one step of a run's history.
type StepLog struct {
	Node          string         `json:"node"`
	Log           string         `json:"log,omitempty"`
	StateSnapshot map[string]any `json:"state_snapshot"`
}

// NodesResponse lists registered node and tool names.
type NodesResponse struct {
	AvailableNodes []string `json:"available_nodes"`
	Tools          []string `json:"tools"`
}

// GraphSummary is one entry of GET /graph/list.
type GraphSummary struct {
	GraphID     string   `json:"graph_id"`
	Nodes       []string `json:"nodes"`
	StartNode   string   `json:"start_node"`
	Description string   `json:"description,omitempty"`
}

// GraphListResponse lists stored graphs.
type GraphListResponse struct {
	Graphs []GraphSummary `json:"graphs"`
}

func mapSteps(steps []domain.StepLog) []StepLog {
	out := make([]StepLog, len(steps))
	for i, s := range steps {
		out[i] = StepLog{
			Node:          s.Node,
			Log:           s.Log,
			StateSnapshot: s.State,
		}
	}
	return out
}

func mapTrace(trace []string) []string {
	if trace == nil {
		return []string{}
	}
	return trace
}
