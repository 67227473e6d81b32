package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// RunStoreContract is a reusable suite verifying that an adapter
// complies with ports.RunStore. Call it from the adapter's own tests
// with a fresh, empty store.
func RunStoreContract(t *testing.T, store ports.RunStore) {
	t.Helper()
	ctx := context.Background()

	record := &domain.RunRecord{
		ID:      "run-1",
		GraphID: "graph-1",
		Status:  domain.RunCompleted,
		State:   domain.SharedState{"quality": 0.8, "tags": []any{"a", "b"}},
		Trace:   []string{"lint", "approve"},
		Steps: []domain.StepLog{
			{Node: "lint", Log: "ok", State: domain.SharedState{"quality": 0.8}},
		},
	}

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		if !errors.Is(err, domain.ErrUnknownRun) {
			t.Errorf("expected ErrUnknownRun, got %v", err)
		}
	})

	t.Run("Save_Get", func(t *testing.T) {
		if err := store.Save(ctx, record); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Get(ctx, "run-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.GraphID != "graph-1" || got.Status != domain.RunCompleted {
			t.Errorf("record round-trip mismatch: %+v", got)
		}
		if len(got.Trace) != 2 || got.Trace[0] != "lint" {
			t.Errorf("trace mismatch: %v", got.Trace)
		}
		if len(got.Steps) != 1 || got.Steps[0].Node != "lint" {
			t.Errorf("steps mismatch: %+v", got.Steps)
		}
	})

	t.Run("Get_Isolated", func(t *testing.T) {
		got, err := store.Get(ctx, "run-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		got.State["quality"] = -1.0
		got.Trace[0] = "tampered"

		fresh, err := store.Get(ctx, "run-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if fresh.Trace[0] != "lint" {
			t.Error("store state was mutated through a returned record")
		}
	})

	t.Run("Save_Replaces", func(t *testing.T) {
		updated := record.Clone()
		updated.Status = domain.RunFailed
		updated.Error = "boom"
		if err := store.Save(ctx, updated); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Get(ctx, "run-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Status != domain.RunFailed || got.Error != "boom" {
			t.Errorf("expected replaced record, got %+v", got)
		}
	})

	t.Run("List", func(t *testing.T) {
		second := record.Clone()
		second.ID = "run-2"
		if err := store.Save(ctx, second); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		lookup := make(map[string]bool, len(ids))
		for _, id := range ids {
			lookup[id] = true
		}
		if !lookup["run-1"] || !lookup["run-2"] {
			t.Errorf("expected run-1 and run-2 in list, got %v", ids)
		}
	})
}

// GraphStoreContract verifies that an adapter complies with
// ports.GraphStore.
func GraphStoreContract(t *testing.T, store ports.GraphStore) {
	t.Helper()
	ctx := context.Background()

	graph := &domain.GraphDefinition{
		ID:    "graph-1",
		Nodes: []string{"lint", "fix", "approve"},
		Start: "lint",
		Edges: map[string]string{"lint": "fix", "fix": "lint"},
	}

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		if !errors.Is(err, domain.ErrUnknownGraph) {
			t.Errorf("expected ErrUnknownGraph, got %v", err)
		}
	})

	t.Run("Save_Get", func(t *testing.T) {
		if err := store.Save(ctx, graph); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		got, err := store.Get(ctx, "graph-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Start != "lint" || len(got.Nodes) != 3 {
			t.Errorf("graph round-trip mismatch: %+v", got)
		}
	})

	t.Run("Get_Isolated", func(t *testing.T) {
		got, err := store.Get(ctx, "graph-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		got.Edges["lint"] = "tampered"

		fresh, err := store.Get(ctx, "graph-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if fresh.Edges["lint"] != "fix" {
			t.Error("store state was mutated through a returned graph")
		}
	})

	t.Run("List", func(t *testing.T) {
		graphs, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(graphs) != 1 || graphs[0].ID != "graph-1" {
			t.Errorf("unexpected list result: %+v", graphs)
		}
	})
}
