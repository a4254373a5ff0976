package storage

import (
	"errors"
	"testing"

	"github.com/mockkp/simplekp/pkg/registry"
)

// testGraph builds a small fixture graph:
//
//	CHEBI:6801 (ChemicalSubstance) -treats-> MONDO:0005148 (Disease)
//	NCBIGene:3643 (Gene) -gene_associated_with_condition-> MONDO:0005148
//	CHEBI:6801 -affects-> NCBIGene:3643
func testGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		Nodes: []*Node{
			{ID: "CHEBI:6801", Category: registry.CategoryChemicalSubstance, Name: "metformin"},
			{ID: "MONDO:0005148", Category: registry.CategoryDisease, Name: "type 2 diabetes"},
			{ID: "NCBIGene:3643", Category: registry.CategoryGene, Name: "INSR"},
		},
		Edges: []*Edge{
			{ID: "e1", Subject: "CHEBI:6801", Object: "MONDO:0005148", Predicate: registry.PredicateTreats},
			{ID: "e2", Subject: "NCBIGene:3643", Object: "MONDO:0005148", Predicate: registry.PredicateGeneAssociatedWith},
			{ID: "e3", Subject: "CHEBI:6801", Object: "NCBIGene:3643", Predicate: registry.PredicateAffects},
		},
	}
}

func newLoadedStore(t *testing.T) *GraphStore {
	t.Helper()
	gs, err := NewGraphStore(StoreConfig{})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { gs.Close() })
	if err := gs.Load(testGraph()); err != nil {
		t.Fatalf("failed to load graph: %v", err)
	}
	return gs
}

func TestLoadRoundTrip(t *testing.T) {
	gs := newLoadedStore(t)
	g := testGraph()

	if gs.NodeCount() != len(g.Nodes) {
		t.Errorf("expected %d nodes, got %d", len(g.Nodes), gs.NodeCount())
	}
	if gs.EdgeCount() != len(g.Edges) {
		t.Errorf("expected %d edges, got %d", len(g.Edges), gs.EdgeCount())
	}

	// Every loaded node/edge must come back intact, and vice versa.
	for _, want := range g.Nodes {
		got, err := gs.GetNode(want.ID)
		if err != nil {
			t.Fatalf("GetNode(%s): %v", want.ID, err)
		}
		if got.Category != want.Category || got.Name != want.Name {
			t.Errorf("node %s mismatch: got %+v", want.ID, got)
		}
	}
	for _, want := range g.Edges {
		got, err := gs.GetEdge(want.ID)
		if err != nil {
			t.Fatalf("GetEdge(%s): %v", want.ID, err)
		}
		if got.Subject != want.Subject || got.Object != want.Object || got.Predicate != want.Predicate {
			t.Errorf("edge %s mismatch: got %+v", want.ID, got)
		}
	}
	if len(gs.AllNodes()) != len(g.Nodes) || len(gs.AllEdges()) != len(g.Edges) {
		t.Error("AllNodes/AllEdges lost entries")
	}
}

func TestDoubleLoadRejected(t *testing.T) {
	gs := newLoadedStore(t)
	err := gs.Load(testGraph())
	if !errors.Is(err, ErrAlreadyLoaded) {
		t.Fatalf("expected ErrAlreadyLoaded, got %v", err)
	}
}

func TestLoadRejectsDanglingEdge(t *testing.T) {
	gs, err := NewGraphStore(StoreConfig{})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer gs.Close()

	g := testGraph()
	g.Edges = append(g.Edges, &Edge{
		ID: "e4", Subject: "CHEBI:6801", Object: "MONDO:9999999",
		Predicate: registry.PredicateTreats,
	})
	if err := gs.Load(g); !errors.Is(err, ErrDanglingEdge) {
		t.Fatalf("expected ErrDanglingEdge, got %v", err)
	}
	// A failed load must leave no partial state behind.
	if gs.NodeCount() != 0 || gs.EdgeCount() != 0 {
		t.Error("failed load left partial state in store")
	}
}

func TestGetNodeNotFound(t *testing.T) {
	gs := newLoadedStore(t)
	_, err := gs.GetNode("MONDO:0000000")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should report true")
	}
}

func TestGetEdgesDirections(t *testing.T) {
	gs := newLoadedStore(t)

	out := gs.GetEdges("CHEBI:6801", DirectionOutgoing, "")
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing edges, got %d", len(out))
	}
	if out[0].ID != "e1" || out[1].ID != "e3" {
		t.Errorf("outgoing edges out of creation order: %s, %s", out[0].ID, out[1].ID)
	}

	in := gs.GetEdges("MONDO:0005148", DirectionIncoming, "")
	if len(in) != 2 {
		t.Fatalf("expected 2 incoming edges, got %d", len(in))
	}

	both := gs.GetEdges("NCBIGene:3643", DirectionBoth, "")
	if len(both) != 2 {
		t.Fatalf("expected 2 edges for both directions, got %d", len(both))
	}
	// Outgoing before incoming for DirectionBoth.
	if both[0].ID != "e2" || both[1].ID != "e3" {
		t.Errorf("unexpected order for DirectionBoth: %s, %s", both[0].ID, both[1].ID)
	}
}

func TestGetEdgesPredicateFilter(t *testing.T) {
	gs := newLoadedStore(t)

	treats := gs.GetEdges("CHEBI:6801", DirectionOutgoing, registry.PredicateTreats)
	if len(treats) != 1 || treats[0].ID != "e1" {
		t.Fatalf("expected only e1 for treats filter, got %v", treats)
	}

	none := gs.GetEdges("CHEBI:6801", DirectionOutgoing, registry.PredicateCauses)
	if len(none) != 0 {
		t.Fatalf("expected empty slice for unmatched predicate, got %d edges", len(none))
	}

	unknown := gs.GetEdges("MONDO:0000000", DirectionBoth, "")
	if len(unknown) != 0 {
		t.Fatal("unknown node should yield empty slice, not an error")
	}
}

func TestNodesByCategory(t *testing.T) {
	gs := newLoadedStore(t)

	diseases := gs.NodesByCategory(registry.CategoryDisease)
	if len(diseases) != 1 || diseases[0].ID != "MONDO:0005148" {
		t.Fatalf("unexpected diseases: %v", diseases)
	}
	if got := gs.NodesByCategory(registry.CategoryDrug); len(got) != 0 {
		t.Fatalf("expected no drugs, got %d", len(got))
	}
}

func TestOperations(t *testing.T) {
	gs := newLoadedStore(t)

	ops := gs.Operations()
	if len(ops) != 3 {
		t.Fatalf("expected 3 distinct operations, got %d", len(ops))
	}
	first := Operation{
		SubjectCategory: registry.CategoryChemicalSubstance,
		Predicate:       registry.PredicateTreats,
		ObjectCategory:  registry.CategoryDisease,
	}
	if ops[0] != first {
		t.Errorf("expected first operation %+v, got %+v", first, ops[0])
	}
}

func TestCuriePrefixes(t *testing.T) {
	gs := newLoadedStore(t)

	prefixes := gs.CuriePrefixes()
	if got := prefixes[registry.CategoryDisease]; len(got) != 1 || got[0] != "MONDO" {
		t.Errorf("unexpected disease prefixes: %v", got)
	}
	if got := prefixes[registry.CategoryGene]; len(got) != 1 || got[0] != "NCBIGene" {
		t.Errorf("unexpected gene prefixes: %v", got)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	gs := newLoadedStore(t)

	node, err := gs.GetNode("CHEBI:6801")
	if err != nil {
		t.Fatal(err)
	}
	node.Name = "mutated"

	again, err := gs.GetNode("CHEBI:6801")
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "metformin" {
		t.Error("GetNode leaked mutable internal state")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	gs, err := NewGraphStore(StoreConfig{DataDir: dataDir})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := gs.Load(testGraph()); err != nil {
		t.Fatalf("failed to load graph: %v", err)
	}
	if err := gs.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	restored, err := OpenExisting(StoreConfig{DataDir: dataDir})
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer restored.Close()

	g := testGraph()
	if restored.NodeCount() != len(g.Nodes) || restored.EdgeCount() != len(g.Edges) {
		t.Fatalf("restored store has %d nodes / %d edges", restored.NodeCount(), restored.EdgeCount())
	}

	// Creation order must survive the round trip.
	nodes := restored.AllNodes()
	for i, want := range g.Nodes {
		if nodes[i].ID != want.ID {
			t.Errorf("node order changed at %d: got %s, want %s", i, nodes[i].ID, want.ID)
		}
	}
	edge, err := restored.GetEdge("e1")
	if err != nil {
		t.Fatal(err)
	}
	if edge.Predicate != registry.PredicateTreats {
		t.Errorf("restored edge lost predicate: %+v", edge)
	}
}

func TestValueAttributes(t *testing.T) {
	gs, err := NewGraphStore(StoreConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer gs.Close()

	g := testGraph()
	g.Nodes[0].Attributes = map[string]Value{
		"synthetic": BoolValue(true),
		"rank":      IntValue(7),
	}
	if err := gs.Load(g); err != nil {
		t.Fatal(err)
	}

	node, err := gs.GetNode("CHEBI:6801")
	if err != nil {
		t.Fatal(err)
	}
	v, ok := node.GetAttribute("synthetic")
	if !ok {
		t.Fatal("attribute missing after load")
	}
	b, err := v.AsBool()
	if err != nil || !b {
		t.Errorf("expected true bool attribute, got %v (%v)", b, err)
	}
	if _, err := v.AsInt(); err == nil {
		t.Error("decoding bool as int should fail")
	}
}
