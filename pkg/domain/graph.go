package domain

// GraphDefinition is an immutable workflow graph: the node names it may
// use, the start node, and the default edge map.
type GraphDefinition struct {
	ID string `json:"graph_id" yaml:"graph_id"`

	// Nodes lists the node names this graph is allowed to dispatch, in
	// the order they were declared. Every name is validated against the
	// node registry at creation time.
	Nodes []string `json:"nodes" yaml:"nodes"`

	// Start is the node the engine dispatches first.
	Start string `json:"start_node" yaml:"start_node"`

	// Edges maps a node name to its single default successor. The value
	// Terminal, or a missing entry, means the node is terminal unless it
	// overrides.
	Edges map[string]string `json:"edges" yaml:"edges"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// HasNode reports whether name is part of the graph's node set.
func (g *GraphDefinition) HasNode(name string) bool {
	for _, n := range g.Nodes {
		if n == name {
			return true
		}
	}
	return false
}

// Clone returns a copy the caller can hold without aliasing store state.
func (g *GraphDefinition) Clone() *GraphDefinition {
	out := *g
	out.Nodes = make([]string, len(g.Nodes))
	copy(out.Nodes, g.Nodes)
	out.Edges = make(map[string]string, len(g.Edges))
	for k, v := range g.Edges {
		out.Edges[k] = v
	}
	return &out
}
