// Package query implements subgraph pattern matching against the graph
// store: a query graph of typed placeholders, some pinned to concrete
// identifiers, is matched against the stored knowledge graph and every
// satisfying assignment is returned as a binding set.
package query

import (
	"github.com/mockkp/simplekp/pkg/registry"
	"github.com/mockkp/simplekp/pkg/storage"
)

// QueryNode is a node placeholder. Category and ID are optional
// constraints; empty means unconstrained. A node with a non-empty ID is
// "pinned" to that concrete node.
type QueryNode struct {
	Key      string
	Category registry.Category
	ID       string
}

// Pinned reports whether the placeholder is bound to a concrete ID.
func (qn QueryNode) Pinned() bool {
	return qn.ID != ""
}

// QueryEdge is an edge placeholder between two declared query nodes,
// referenced by key. Predicate is optional; empty means unconstrained.
type QueryEdge struct {
	Key       string
	Subject   string
	Object    string
	Predicate registry.Predicate
}

// QueryGraph is the pattern to match. Slice order is declaration order and
// is the tiebreaker for the deterministic search ordering.
type QueryGraph struct {
	Nodes []QueryNode
	Edges []QueryEdge
}

// Result is one complete, consistent assignment: each query node mapped to
// a concrete node ID and each query edge to a concrete edge ID.
type Result struct {
	NodeBindings map[string]string
	EdgeBindings map[string]string
}

// ResultSet is the ordered collection of all results for one pattern,
// along with the subgraph induced by every bound node and edge. Order is
// the discovery order of the backtracking search, deterministic for a
// fixed store and pattern.
type ResultSet struct {
	Results  []Result
	Subgraph *storage.KnowledgeGraph
}
