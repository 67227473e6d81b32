// Package review ships the sample code-review workflow: five nodes that
// analyze a source snippet in shared state and loop on suggestions
// until a quality gate passes, plus the detect_smells tool. It is
// registered at startup so a fresh process always has one runnable
// graph.
package review

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

// Node names of the review workflow.
const (
	NodeExtractFunctions    = "extract_functions"
	NodeCheckComplexity     = "check_complexity"
	NodeDetectIssues        = "detect_issues"
	NodeSuggestImprovements = "suggest_improvements"
	NodeCheckQuality        = "check_quality"
)

// ToolDetectSmells is the heuristic smell counter invoked by the
// detect_issues node.
const ToolDetectSmells = "detect_smells"

// Description labels the seeded default graph.
const Description = "Code review loop"

var funcPattern = regexp.MustCompile(`func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)`)

// NodeNames returns the workflow's node names in pipeline order.
func NodeNames() []string {
	return []string{
		NodeExtractFunctions,
		NodeCheckComplexity,
		NodeDetectIssues,
		NodeSuggestImprovements,
		NodeCheckQuality,
	}
}

// Edges returns the default edge map of the review pipeline. The
// quality gate has no entry: it either loops back explicitly or lets
// the run terminate.
func Edges() map[string]string {
	return map[string]string{
		NodeExtractFunctions:    NodeCheckComplexity,
		NodeCheckComplexity:     NodeDetectIssues,
		NodeDetectIssues:        NodeSuggestImprovements,
		NodeSuggestImprovements: NodeCheckQuality,
	}
}

// Register adds the workflow's nodes and tools to the registries.
func Register(nodes *registry.NodeRegistry, tools *registry.ToolRegistry) error {
	impls := map[string]domain.NodeFunc{
		NodeExtractFunctions:    ExtractFunctions,
		NodeCheckComplexity:     CheckComplexity,
		NodeDetectIssues:        DetectIssues,
		NodeSuggestImprovements: SuggestImprovements,
		NodeCheckQuality:        CheckQuality,
	}
	for name, fn := range impls {
		if err := nodes.Register(name, fn); err != nil {
			return err
		}
	}
	return tools.Register(ToolDetectSmells, DetectSmells)
}

// ExtractFunctions scans state["code"] for function declarations and
// records their names and count.
func ExtractFunctions(ctx context.Context, state domain.SharedState, _ domain.ToolResolver) (domain.NodeResult, error) {
	code, _ := state["code"].(string)

	var functions []any
	for _, match := range funcPattern.FindAllStringSubmatch(code, -1) {
		functions = append(functions, match[1])
	}
	if functions == nil {
		functions = []any{}
	}

	state["functions"] = functions
	state["function_count"] = len(functions)
	return domain.NodeResult{Log: fmt.Sprintf("Found %d functions", len(functions))}, nil
}

// CheckComplexity derives a crude complexity score from the length of
// the extracted function names.
func CheckComplexity(ctx context.Context, state domain.SharedState, _ domain.ToolResolver) (domain.NodeResult, error) {
	functions := stringSlice(state["functions"])

	score := 0.1
	if len(functions) > 0 {
		total := 0.0
		for _, fn := range functions {
			total += math.Min(1.0, math.Max(0.1, float64(len(fn))/10))
		}
		score = round2(total / float64(len(functions)))
	}

	state["complexity_score"] = score
	return domain.NodeResult{Log: fmt.Sprintf("Complexity score: %v", score)}, nil
}

// DetectIssues invokes the detect_smells tool against the code under
// review and stores its findings.
func DetectIssues(ctx context.Context, state domain.SharedState, tools domain.ToolResolver) (domain.NodeResult, error) {
	detect, err := tools.Resolve(ToolDetectSmells)
	if err != nil {
		return domain.NodeResult{}, err
	}

	code, _ := state["code"].(string)
	out, err := detect(ctx, map[string]any{"code": code})
	if err != nil {
		return domain.NodeResult{}, fmt.Errorf("detect_smells: %w", err)
	}

	issues, ok := out.(map[string]any)
	if !ok {
		return domain.NodeResult{}, fmt.Errorf("detect_smells returned %T, expected a map", out)
	}

	state["issues"] = issues
	return domain.NodeResult{Log: fmt.Sprintf("Issues detected: %d", intAt(issues, "issues"))}, nil
}

// SuggestImprovements appends review suggestions based on the scores
// collected so far.
func SuggestImprovements(ctx context.Context, state domain.SharedState, _ domain.ToolResolver) (domain.NodeResult, error) {
	var suggestions []string

	if floatKey(state, "complexity_score", 0) > 0.7 {
		suggestions = append(suggestions, "Reduce branching or split large functions.")
	}
	if issues, ok := state["issues"].(map[string]any); ok && intAt(issues, "issues") > 0 {
		suggestions = append(suggestions, "Address flagged code smells.")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Looks good, minor refactors only.")
	}

	existing := stringSlice(state["suggestions"])
	state["suggestions"] = toAnySlice(append(existing, suggestions...))

	return domain.NodeResult{Log: fmt.Sprintf("Added %d suggestions", len(suggestions))}, nil
}

// CheckQuality computes the overall quality score and decides whether
// to loop back for another improvement pass or let the run terminate.
// It stops once the score clears state["quality_threshold"] (default
// 0.7) or after state["max_iterations"] passes (default 3).
func CheckQuality(ctx context.Context, state domain.SharedState, _ domain.ToolResolver) (domain.NodeResult, error) {
	threshold := floatKey(state, "quality_threshold", 0.7)
	maxLoops := intKey(state, "max_iterations", 3)
	iterations := intKey(state, "iterations", 0) + 1

	issuesCount := 0
	if issues, ok := state["issues"].(map[string]any); ok {
		issuesCount = intAt(issues, "issues")
	}
	complexity := floatKey(state, "complexity_score", 0)

	score := round2(math.Max(0.0, 1.0-0.2*float64(issuesCount)-0.3*complexity))
	state["quality_score"] = score
	state["iterations"] = iterations

	log := fmt.Sprintf("Quality score %v (iteration %d)", score, iterations)
	if score >= threshold || iterations >= maxLoops {
		return domain.NodeResult{Log: log + " -> stop"}, nil
	}
	return domain.NodeResult{Next: NodeSuggestImprovements, Log: log + " -> continue"}, nil
}

// DetectSmells is a tiny heuristic smell detector: it counts lines
// longer than 120 characters and lines carrying TODO markers.
func DetectSmells(ctx context.Context, args map[string]any) (any, error) {
	code, _ := args["code"].(string)

	longLines := 0
	todos := 0
	for _, line := range strings.Split(code, "\n") {
		if len(line) > 120 {
			longLines++
		}
		if strings.Contains(line, "TODO") {
			todos++
		}
	}

	return map[string]any{
		"issues":     longLines + todos,
		"long_lines": longLines,
		"todos":      todos,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// floatKey reads a numeric state value, tolerating the int/float64
// variance between in-process and JSON-decoded payloads.
func floatKey(state domain.SharedState, key string, def float64) float64 {
	switch v := state[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	default:
		return def
	}
}

func intKey(state domain.SharedState, key string, def int) int {
	switch v := state[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

func intAt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func stringSlice(v any) []string {
	switch val := v.(type) {
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func toAnySlice(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
