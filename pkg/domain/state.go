package domain

// SharedState is the mutable data bag threaded through one run.
// Nodes read and write it in place; it is the only channel for data
// exchange between steps. A SharedState belongs to exactly one run.
type SharedState map[string]any

// Clone returns a deep copy of the state.
// Nested maps and slices are copied recursively so that snapshots taken
// during a run cannot be mutated by later steps.
func (s SharedState) Clone() SharedState {
	if s == nil {
		return SharedState{}
	}
	out := make(SharedState, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case SharedState:
		return map[string]any(val.Clone())
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
