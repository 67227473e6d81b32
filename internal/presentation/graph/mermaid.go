package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Overlay contains dynamic run data to visualize on top of a graph.
type Overlay struct {
	// Trace is the executed node sequence of one run.
	Trace []string
}

// GenerateMermaid produces Mermaid flowchart syntax for a graph
// definition. The start node is drawn as a circle, terminal edges lead
// to a shared end marker, and an optional overlay highlights the nodes
// a run visited.
func GenerateMermaid(g *domain.GraphDefinition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node)

		opener, closer := "[", "]"
		if node == g.Start {
			opener, closer = "((", "))" // Circle
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node, closer))
	}

	hasTerminal := false
	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node)
		target, ok := g.Edges[node]
		if !ok || target == domain.Terminal {
			// Implicitly or explicitly terminal.
			sb.WriteString(fmt.Sprintf("    %s --> __end\n", safeID))
			hasTerminal = true
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(target)))
	}
	if hasTerminal {
		sb.WriteString("    __end((\"end\"))\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.Trace {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
