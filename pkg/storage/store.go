// Package storage implements the in-memory graph store backing the
// knowledge provider, with an embedded BadgerDB file for on-disk
// persistence of the loaded graph.
package storage

import (
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/mockkp/simplekp/pkg/logging"
	"github.com/mockkp/simplekp/pkg/metrics"
	"github.com/mockkp/simplekp/pkg/registry"
)

// Direction selects which adjacency of a node to read.
type Direction int

const (
	DirectionOutgoing Direction = iota
	DirectionIncoming
	DirectionBoth
)

// Operation is one distinct (subject category, predicate, object category)
// triple realized by at least one stored edge.
type Operation struct {
	SubjectCategory registry.Category  `json:"source_type"`
	Predicate       registry.Predicate `json:"edge_type"`
	ObjectCategory  registry.Category  `json:"target_type"`
}

// StoreConfig holds configuration for a GraphStore
type StoreConfig struct {
	// DataDir is the directory for the embedded database file. Empty
	// means memory-only (no persistence), used in tests.
	DataDir string
	// SyncWrites makes the embedded database sync on every write.
	SyncWrites bool
	Logger     logging.Logger
	Metrics    *metrics.Registry
}

// GraphStore owns node and edge identity for one process run. It is loaded
// exactly once before serving traffic and is read-only afterwards, so
// concurrent reads need no coordination beyond the load barrier.
type GraphStore struct {
	mu     sync.RWMutex
	loaded bool
	closed bool

	nodes map[string]*Node
	edges map[string]*Edge

	// Insertion-order ID lists. All iteration goes through these so that
	// reads are deterministic for a fixed loaded graph.
	nodeOrder []string
	edgeOrder []string

	nodesByCategory map[registry.Category][]string
	outgoing        map[string][]string // node ID -> outgoing edge IDs
	incoming        map[string][]string // node ID -> incoming edge IDs

	db      *badger.DB
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewGraphStore creates an empty store. If cfg.DataDir is set, the embedded
// database file is created there and the graph is persisted on Load.
func NewGraphStore(cfg StoreConfig) (*GraphStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	gs := &GraphStore{
		nodes:           make(map[string]*Node),
		edges:           make(map[string]*Edge),
		nodesByCategory: make(map[registry.Category][]string),
		outgoing:        make(map[string][]string),
		incoming:        make(map[string][]string),
		logger:          logger,
		metrics:         cfg.Metrics,
	}

	if cfg.DataDir != "" {
		opts := badger.DefaultOptions(cfg.DataDir).
			WithSyncWrites(cfg.SyncWrites).
			WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, SnapshotError("Open", cfg.DataDir, err)
		}
		gs.db = db
	}

	return gs, nil
}

// Load performs the one-time bulk ingest of a generated graph. It validates
// that every edge references existing nodes, builds the lookup indexes, and
// persists the graph to the embedded database file if one is configured.
// Calling Load twice on the same store returns ErrAlreadyLoaded.
func (gs *GraphStore) Load(graph *KnowledgeGraph) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.closed {
		return ErrStoreClosed
	}
	if gs.loaded {
		return ErrAlreadyLoaded
	}

	for _, node := range graph.Nodes {
		n := node.Clone()
		gs.nodes[n.ID] = n
		gs.nodeOrder = append(gs.nodeOrder, n.ID)
		gs.nodesByCategory[n.Category] = append(gs.nodesByCategory[n.Category], n.ID)
	}

	for _, edge := range graph.Edges {
		if _, ok := gs.nodes[edge.Subject]; !ok {
			gs.reset()
			return &StoreError{Op: "Load", Entity: "edge", ID: edge.ID, Cause: ErrDanglingEdge}
		}
		if _, ok := gs.nodes[edge.Object]; !ok {
			gs.reset()
			return &StoreError{Op: "Load", Entity: "edge", ID: edge.ID, Cause: ErrDanglingEdge}
		}
		e := edge.Clone()
		gs.edges[e.ID] = e
		gs.edgeOrder = append(gs.edgeOrder, e.ID)
		gs.outgoing[e.Subject] = append(gs.outgoing[e.Subject], e.ID)
		gs.incoming[e.Object] = append(gs.incoming[e.Object], e.ID)
	}

	if gs.db != nil {
		if err := gs.writeSnapshot(); err != nil {
			gs.reset()
			return err
		}
	}

	gs.loaded = true
	if gs.metrics != nil {
		gs.metrics.SetStoreSize(len(gs.nodeOrder), len(gs.edgeOrder))
	}
	gs.logger.Info("graph loaded",
		logging.F("nodes", len(gs.nodeOrder)),
		logging.F("edges", len(gs.edgeOrder)),
	)
	return nil
}

// reset discards partially ingested state after a failed Load.
func (gs *GraphStore) reset() {
	gs.nodes = make(map[string]*Node)
	gs.edges = make(map[string]*Edge)
	gs.nodeOrder = nil
	gs.edgeOrder = nil
	gs.nodesByCategory = make(map[registry.Category][]string)
	gs.outgoing = make(map[string][]string)
	gs.incoming = make(map[string][]string)
}

// GetNode returns a copy of the node with the given ID.
func (gs *GraphStore) GetNode(id string) (*Node, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	node, ok := gs.nodes[id]
	if !ok {
		return nil, NodeNotFoundError("GetNode", id)
	}
	return node.Clone(), nil
}

// GetEdge returns a copy of the edge with the given ID.
func (gs *GraphStore) GetEdge(id string) (*Edge, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	edge, ok := gs.edges[id]
	if !ok {
		return nil, EdgeNotFoundError("GetEdge", id)
	}
	return edge.Clone(), nil
}

// GetEdges returns the edges adjacent to a node in the given direction,
// optionally filtered by predicate ("" matches any). Unknown nodes and
// empty adjacencies yield an empty slice, not an error. Order is edge
// creation order: outgoing first for DirectionBoth.
func (gs *GraphStore) GetEdges(nodeID string, dir Direction, predicate registry.Predicate) []*Edge {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	var edgeIDs []string
	switch dir {
	case DirectionOutgoing:
		edgeIDs = gs.outgoing[nodeID]
	case DirectionIncoming:
		edgeIDs = gs.incoming[nodeID]
	case DirectionBoth:
		edgeIDs = append(append([]string{}, gs.outgoing[nodeID]...), gs.incoming[nodeID]...)
	}

	edges := make([]*Edge, 0, len(edgeIDs))
	for _, id := range edgeIDs {
		edge := gs.edges[id]
		if predicate != "" && edge.Predicate != predicate {
			continue
		}
		edges = append(edges, edge.Clone())
	}
	return edges
}

// NodesByCategory returns all nodes of the given category in creation
// order. An unknown category yields an empty slice.
func (gs *GraphStore) NodesByCategory(category registry.Category) []*Node {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	ids := gs.nodesByCategory[category]
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, gs.nodes[id].Clone())
	}
	return nodes
}

// AllNodes returns every node in creation order.
func (gs *GraphStore) AllNodes() []*Node {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	nodes := make([]*Node, 0, len(gs.nodeOrder))
	for _, id := range gs.nodeOrder {
		nodes = append(nodes, gs.nodes[id].Clone())
	}
	return nodes
}

// AllEdges returns every edge in creation order.
func (gs *GraphStore) AllEdges() []*Edge {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	edges := make([]*Edge, 0, len(gs.edgeOrder))
	for _, id := range gs.edgeOrder {
		edges = append(edges, gs.edges[id].Clone())
	}
	return edges
}

// NodeCount returns the number of loaded nodes.
func (gs *GraphStore) NodeCount() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.nodeOrder)
}

// EdgeCount returns the number of loaded edges.
func (gs *GraphStore) EdgeCount() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.edgeOrder)
}

// Loaded reports whether the one-time bulk load has completed.
func (gs *GraphStore) Loaded() bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.loaded
}

// Operations returns the distinct (subject category, predicate, object
// category) triples realized by stored edges, in first-seen edge order.
func (gs *GraphStore) Operations() []Operation {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	seen := make(map[Operation]bool)
	ops := make([]Operation, 0)
	for _, id := range gs.edgeOrder {
		edge := gs.edges[id]
		op := Operation{
			SubjectCategory: gs.nodes[edge.Subject].Category,
			Predicate:       edge.Predicate,
			ObjectCategory:  gs.nodes[edge.Object].Category,
		}
		if !seen[op] {
			seen[op] = true
			ops = append(ops, op)
		}
	}
	return ops
}

// CuriePrefixes returns, per category, the distinct CURIE prefixes of
// stored node identifiers, in first-seen node order.
func (gs *GraphStore) CuriePrefixes() map[registry.Category][]string {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	prefixes := make(map[registry.Category][]string)
	seen := make(map[registry.Category]map[string]bool)
	for _, id := range gs.nodeOrder {
		node := gs.nodes[id]
		prefix := id
		for i := 0; i < len(id); i++ {
			if id[i] == ':' {
				prefix = id[:i]
				break
			}
		}
		if seen[node.Category] == nil {
			seen[node.Category] = make(map[string]bool)
		}
		if !seen[node.Category][prefix] {
			seen[node.Category][prefix] = true
			prefixes[node.Category] = append(prefixes[node.Category], prefix)
		}
	}
	return prefixes
}

// Close releases the embedded database. The store must not be used after.
func (gs *GraphStore) Close() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.closed {
		return nil
	}
	gs.closed = true
	if gs.db != nil {
		if err := gs.db.Close(); err != nil {
			return SnapshotError("Close", "", err)
		}
	}
	return nil
}
