package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// Registry maps names to callables of type T. It is populated at
// startup and read-mostly afterwards; an RWMutex keeps concurrent
// resolution safe either way.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
	missing error
}

// New creates an empty registry. Failed lookups wrap the given sentinel
// (e.g. domain.ErrUnknownNode) so callers can match with errors.Is.
func New[T any](missing error) *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]T),
		missing: missing,
	}
}

// Register adds fn under name. Registering an already-taken name fails
// with domain.ErrDuplicateName; existing entries are never overwritten.
func (r *Registry[T]) Register(name string, fn T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateName, name)
	}
	r.entries[name] = fn
	return nil
}

// Resolve returns the entry registered under name.
func (r *Registry[T]) Resolve(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.entries[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", r.missing, name)
	}
	return fn, nil
}

// Names returns the sorted set of registered names.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeRegistry maps node names to step implementations.
type NodeRegistry = Registry[domain.NodeFunc]

// ToolRegistry maps tool names to callables. It satisfies
// domain.ToolResolver, so it can be handed to nodes as-is.
type ToolRegistry = Registry[domain.ToolFunc]

// NewNodeRegistry creates an empty node registry.
func NewNodeRegistry() *NodeRegistry {
	return New[domain.NodeFunc](domain.ErrUnknownNode)
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return New[domain.ToolFunc](domain.ErrUnknownTool)
}
