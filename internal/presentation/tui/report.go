package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// It auto-detects the terminal background for styling.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// RunReport formats a finished run as markdown for terminal display.
func RunReport(record *domain.RunRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Run %s\n\n", record.ID)
	fmt.Fprintf(&sb, "- **Graph**: %s\n", record.GraphID)
	fmt.Fprintf(&sb, "- **Status**: %s\n", record.Status)
	if record.Error != "" {
		fmt.Fprintf(&sb, "- **Error**: %s\n", record.Error)
	}
	fmt.Fprintf(&sb, "- **Trace**: %s\n\n", strings.Join(record.Trace, " -> "))

	if len(record.Steps) > 0 {
		sb.WriteString("## Steps\n\n")
		for i, step := range record.Steps {
			line := step.Log
			if line == "" {
				line = "(no log)"
			}
			fmt.Fprintf(&sb, "%d. `%s`: %s\n", i+1, step.Node, line)
		}
		sb.WriteString("\n")
	}

	if suggestions, ok := record.State["suggestions"].([]any); ok && len(suggestions) > 0 {
		sb.WriteString("## Suggestions\n\n")
		for _, s := range suggestions {
			fmt.Fprintf(&sb, "- %v\n", s)
		}
		sb.WriteString("\n")
	}

	if score, ok := record.State["quality_score"]; ok {
		fmt.Fprintf(&sb, "**Quality score**: %v\n", score)
	}

	return sb.String()
}
