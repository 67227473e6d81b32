package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when registering a node or tool under a
// name that is already taken.
var ErrDuplicateName = errors.New("name already registered")

// ErrUnknownNode is returned when a node name does not resolve in the
// node registry, at graph creation or at dispatch time.
var ErrUnknownNode = errors.New("node not registered")

// ErrUnknownTool is returned when a tool name does not resolve.
var ErrUnknownTool = errors.New("tool not registered")

// ErrUnknownGraph is returned when a graph id cannot be found.
var ErrUnknownGraph = errors.New("graph not found")

// ErrUnknownRun is returned when a run id cannot be found.
var ErrUnknownRun = errors.New("run not found")

// ErrInvalidGraph is returned for structural violations at creation
// time: start node outside the node set, dangling edge references.
var ErrInvalidGraph = errors.New("invalid graph definition")

// NodeError wraps a failure reported by a node step implementation.
// A NodeError terminates the run; the engine never retries.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
