// Package ports defines the driven-side interfaces of the engine
// (graph and run storage). Adapters implement them; the runtime depends
// only on these contracts so stores can be swapped without touching the
// execution loop.
package ports
