package api

import (
	"sort"

	"github.com/mockkp/simplekp/pkg/query"
	"github.com/mockkp/simplekp/pkg/registry"
	"github.com/mockkp/simplekp/pkg/storage"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Message QueryMessage `json:"message" validate:"required"`
}

// QueryMessage wraps the query graph in the request envelope.
type QueryMessage struct {
	QueryGraph WireQueryGraph `json:"query_graph" validate:"required"`
}

// WireQueryGraph is the map-keyed wire form of a query pattern. Map keys
// are the query node and edge identifiers referenced by bindings.
type WireQueryGraph struct {
	Nodes map[string]WireQueryNode `json:"nodes" validate:"required,min=1,dive"`
	Edges map[string]WireQueryEdge `json:"edges" validate:"dive"`
}

// WireQueryNode constrains one node slot of the pattern. All fields are
// optional; an empty node matches anything.
type WireQueryNode struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
}

// WireQueryEdge constrains one edge slot of the pattern. Subject and
// Object name keys in the Nodes map.
type WireQueryEdge struct {
	Subject   string `json:"subject" validate:"required"`
	Object    string `json:"object" validate:"required"`
	Predicate string `json:"predicate,omitempty"`
}

// QueryResponse is the body of a successful POST /query.
type QueryResponse struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage echoes the query graph and carries the matched results
// plus the induced knowledge graph.
type ResponseMessage struct {
	QueryGraph     WireQueryGraph     `json:"query_graph"`
	KnowledgeGraph WireKnowledgeGraph `json:"knowledge_graph"`
	Results        []WireResult       `json:"results"`
}

// WireKnowledgeGraph is the map-keyed wire form of a knowledge subgraph.
type WireKnowledgeGraph struct {
	Nodes map[string]WireNode `json:"nodes"`
	Edges map[string]WireEdge `json:"edges"`
}

// WireNode is the wire form of a stored node.
type WireNode struct {
	Category   string                    `json:"category"`
	Name       string                    `json:"name,omitempty"`
	Attributes map[string]storage.Value `json:"attributes,omitempty"`
}

// WireEdge is the wire form of a stored edge.
type WireEdge struct {
	Subject    string                    `json:"subject"`
	Object     string                    `json:"object"`
	Predicate  string                    `json:"predicate"`
	Attributes map[string]storage.Value `json:"attributes,omitempty"`
}

// WireResult is one match: bindings from query keys to concrete IDs.
type WireResult struct {
	NodeBindings map[string][]Binding `json:"node_bindings"`
	EdgeBindings map[string][]Binding `json:"edge_bindings"`
}

// Binding names one concrete node or edge.
type Binding struct {
	ID string `json:"id"`
}

// OperationsResponse is the body of GET /ops.
type OperationsResponse struct {
	Operations []Operation `json:"operations"`
}

// Operation is one (subject category, predicate, object category) triple
// present in the loaded graph.
type Operation struct {
	SubjectCategory string `json:"subject_category"`
	Predicate       string `json:"predicate"`
	ObjectCategory  string `json:"object_category"`
}

// MetadataResponse is the body of GET /metadata.
type MetadataResponse struct {
	NodeCount     int                 `json:"node_count"`
	EdgeCount     int                 `json:"edge_count"`
	CuriePrefixes map[string][]string `json:"curie_prefixes"`
}

// ErrorResponse is the body of any non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// toQueryGraph converts the wire pattern into the core form. Map keys are
// visited in sorted order so the declaration order, and with it the result
// order, is deterministic for a given request body.
func toQueryGraph(wire WireQueryGraph) *query.QueryGraph {
	qg := &query.QueryGraph{}

	nodeKeys := make([]string, 0, len(wire.Nodes))
	for k := range wire.Nodes {
		nodeKeys = append(nodeKeys, k)
	}
	sort.Strings(nodeKeys)
	for _, k := range nodeKeys {
		wn := wire.Nodes[k]
		qg.Nodes = append(qg.Nodes, query.QueryNode{
			Key:      k,
			Category: registry.Category(wn.Category),
			ID:       wn.ID,
		})
	}

	edgeKeys := make([]string, 0, len(wire.Edges))
	for k := range wire.Edges {
		edgeKeys = append(edgeKeys, k)
	}
	sort.Strings(edgeKeys)
	for _, k := range edgeKeys {
		we := wire.Edges[k]
		qg.Edges = append(qg.Edges, query.QueryEdge{
			Key:       k,
			Subject:   we.Subject,
			Object:    we.Object,
			Predicate: registry.Predicate(we.Predicate),
		})
	}

	return qg
}

// toWireResults converts matcher output into the wire response shape.
func toWireResults(rs *query.ResultSet) ([]WireResult, WireKnowledgeGraph) {
	results := make([]WireResult, 0, len(rs.Results))
	for _, r := range rs.Results {
		wr := WireResult{
			NodeBindings: make(map[string][]Binding, len(r.NodeBindings)),
			EdgeBindings: make(map[string][]Binding, len(r.EdgeBindings)),
		}
		for k, id := range r.NodeBindings {
			wr.NodeBindings[k] = []Binding{{ID: id}}
		}
		for k, id := range r.EdgeBindings {
			wr.EdgeBindings[k] = []Binding{{ID: id}}
		}
		results = append(results, wr)
	}

	kg := WireKnowledgeGraph{
		Nodes: make(map[string]WireNode, len(rs.Subgraph.Nodes)),
		Edges: make(map[string]WireEdge, len(rs.Subgraph.Edges)),
	}
	for _, n := range rs.Subgraph.Nodes {
		kg.Nodes[n.ID] = WireNode{
			Category:   string(n.Category),
			Name:       n.Name,
			Attributes: n.Attributes,
		}
	}
	for _, e := range rs.Subgraph.Edges {
		kg.Edges[e.ID] = WireEdge{
			Subject:    e.Subject,
			Object:     e.Object,
			Predicate:  string(e.Predicate),
			Attributes: e.Attributes,
		}
	}

	return results, kg
}
