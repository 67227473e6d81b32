/*
Package espalier is a small workflow graph execution engine. It runs
directed graphs of named nodes over a single shared state bag: each
node mutates the state in place and may redirect control flow, the
engine follows the default edge map otherwise, and an iteration bound
guards against cyclic graphs running forever.

# Concept

A graph is a set of registered node names, a start node and a flat
node-to-node edge map. Branching and loops come from node overrides: a
node can name the next node explicitly (including itself), taking
precedence over the edge map, or stop the run with the terminal
sentinel. Nodes exchange data only through the shared state and may
invoke named tools from the tool registry during their own execution.

Every run produces a run record: the executed node trace, per-step logs
with state snapshots, the final state and a terminal status (completed,
failed or loop_limit_exceeded). Records are held in an in-memory store
by default; a Redis-backed store is available for processes that want
runs to survive inspection across instances.

# Usage

	svc, err := espalier.New(espalier.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	record, err := svc.Engine.Run(ctx, svc.DefaultGraphID, domain.SharedState{
		"code": source,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(record.Status, record.Trace)

The Service also exposes an HTTP handler (chi) with graph creation,
synchronous run execution, run inspection and registry introspection
endpoints, plus Prometheus metrics on /metrics.
*/
package espalier
