// Package domain holds the core data model of the workflow engine:
// shared state, node contracts, graph definitions, run records and the
// sentinel errors shared across layers. It has no dependencies on
// adapters or the runtime.
package domain
