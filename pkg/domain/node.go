package domain

import "context"

// Terminal is the sentinel next-node name meaning "no further node; run
// complete". A node returns it to stop the run explicitly, and an edge
// map may use it as a target for the same effect.
const Terminal = "__end__"

// ToolFunc is a callable registered in the tool registry.
// Tools are invoked explicitly by node implementations, never by the
// engine itself.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// ToolResolver gives node implementations access to registered tools.
type ToolResolver interface {
	// Resolve returns the tool registered under name, or ErrUnknownTool.
	Resolve(name string) (ToolFunc, error)
}

// NodeResult is what a node reports back to the engine after one step.
type NodeResult struct {
	// Next is the explicit next-node override. Empty means "no opinion":
	// the engine falls back to the graph's edge map. Terminal stops the
	// run. A node may name itself (self-loop).
	Next string

	// Log is an optional human-readable line recorded in the run's step
	// history.
	Log string
}

// NodeFunc is a node step implementation. It mutates state in place and
// may consult the tool resolver. Tool failures are the node's own
// business: return the error to fail the run, or swallow it.
type NodeFunc func(ctx context.Context, state SharedState, tools ToolResolver) (NodeResult, error)
