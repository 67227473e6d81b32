package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// GraphStore implements ports.GraphStore in memory.
// Safe for concurrent use.
type GraphStore struct {
	mu    sync.RWMutex
	data  map[string]*domain.GraphDefinition
	order []string
}

// NewGraphStore creates a new in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		data: make(map[string]*domain.GraphDefinition),
	}
}

// Save persists the definition. Definitions are immutable after
// creation, so the stored copy is never updated in place; re-saving an
// id simply replaces it.
func (s *GraphStore) Save(ctx context.Context, graph *domain.GraphDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[graph.ID]; !exists {
		s.order = append(s.order, graph.ID)
	}
	s.data[graph.ID] = graph.Clone()
	return nil
}

// Get retrieves a definition copy by id.
func (s *GraphStore) Get(ctx context.Context, id string) (*domain.GraphDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graph, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownGraph, id)
	}
	return graph.Clone(), nil
}

// List returns all definitions in creation order.
func (s *GraphStore) List(ctx context.Context) ([]*domain.GraphDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graphs := make([]*domain.GraphDefinition, 0, len(s.order))
	for _, id := range s.order {
		graphs = append(graphs, s.data[id].Clone())
	}
	return graphs, nil
}

// RunStore implements ports.RunStore in memory.
// Safe for concurrent use.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunRecord
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.RunRecord),
	}
}

// Save persists a deep copy of the record so the engine can keep
// mutating its own instance while the run is in flight.
func (s *RunStore) Save(ctx context.Context, run *domain.RunRecord) error {
	copied := run.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[run.ID] = copied
	return nil
}

// Get retrieves a record copy by id.
func (s *RunStore) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRun, id)
	}
	return run.Clone(), nil
}

// List returns the ids of stored runs.
func (s *RunStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
