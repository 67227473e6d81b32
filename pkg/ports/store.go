package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// GraphStore holds graph definitions for the life of the process.
// Implementations must be safe for concurrent use and must not hand out
// memory aliased with their internal state.
type GraphStore interface {
	// Save persists the definition under its id.
	Save(ctx context.Context, graph *domain.GraphDefinition) error

	// Get retrieves a definition by id.
	// Returns domain.ErrUnknownGraph if the id does not exist.
	Get(ctx context.Context, id string) (*domain.GraphDefinition, error)

	// List returns all stored definitions.
	List(ctx context.Context) ([]*domain.GraphDefinition, error)
}

// RunStore holds run records, keyed by run id.
// The engine saves a record when a run starts and again when it
// finalizes, so inspection concurrent with execution sees a consistent
// snapshot.
type RunStore interface {
	// Save persists the record under its id, replacing any previous
	// version.
	Save(ctx context.Context, run *domain.RunRecord) error

	// Get retrieves a record by id.
	// Returns domain.ErrUnknownRun if the id does not exist.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns the ids of all stored runs.
	List(ctx context.Context) ([]string, error)
}
