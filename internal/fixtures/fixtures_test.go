package fixtures

import (
	"context"
	"testing"

	"food-trade-twin/internal/storage/memory"
)

func TestGraph_Deterministic(t *testing.T) {
	n1, e1 := Graph(42)
	n2, e2 := Graph(42)

	if len(n1) != len(profiles)*len(Years) {
		t.Fatalf("expected %d nodes, got %d", len(profiles)*len(Years), len(n1))
	}
	if len(e1) != len(patterns)*len(Years) {
		t.Fatalf("expected %d edges, got %d", len(patterns)*len(Years), len(e1))
	}
	for i := range n1 {
		if *n1[i] != *n2[i] {
			t.Fatalf("node %d differs between runs: %+v vs %+v", i, n1[i], n2[i])
		}
	}
	for i := range e1 {
		if *e1[i] != *e2[i] {
			t.Fatalf("edge %d differs between runs", i)
		}
	}

	n3, _ := Graph(7)
	if n3[0].Production == n1[0].Production {
		t.Error("expected different seeds to vary production")
	}
}

func TestGraph_Bounds(t *testing.T) {
	nodes, edges := Graph(1)
	for _, n := range nodes {
		if n.Production <= 0 || n.FoodSupply <= 0 {
			t.Errorf("non-positive attributes %+v", n)
		}
	}
	for _, e := range edges {
		if e.Source == e.Target {
			t.Errorf("self-loop %+v", e)
		}
		if e.Quantity <= 0 {
			t.Errorf("non-positive quantity %+v", e)
		}
	}
}

func TestLoad(t *testing.T) {
	store := memory.NewGraphStore()
	if err := Load(context.Background(), store, 42); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	nodes, edges, err := store.FetchSnapshot(context.Background(), 2021)
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if len(nodes) != len(profiles) {
		t.Errorf("expected %d nodes, got %d", len(profiles), len(nodes))
	}
	if len(edges) != len(patterns) {
		t.Errorf("expected %d edges, got %d", len(patterns), len(edges))
	}
}
