package query

import (
	"context"
	"time"

	"github.com/mockkp/simplekp/pkg/logging"
	"github.com/mockkp/simplekp/pkg/metrics"
	"github.com/mockkp/simplekp/pkg/storage"
)

// Matcher performs constrained subgraph search against a loaded store.
// Matching never mutates the store, so a single Matcher serves concurrent
// requests; each Match call owns its own search state.
type Matcher struct {
	store   *storage.GraphStore
	logger  logging.Logger
	metrics *metrics.Registry
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) MatcherOption {
	return func(m *Matcher) { m.logger = logger }
}

// WithMetrics attaches a metrics registry.
func WithMetrics(reg *metrics.Registry) MatcherOption {
	return func(m *Matcher) { m.metrics = reg }
}

// NewMatcher creates a matcher over the given store.
func NewMatcher(store *storage.GraphStore, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		store:  store,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// frame is one level of the backtracking search: the query node being
// bound, its candidate list, and the cursor into it. An explicit stack of
// frames (rather than recursion) keeps cancellation clean.
type frame struct {
	qidx       int
	candidates []string
	next       int
}

// Match returns every binding of the pattern against the store, in the
// deterministic order the backtracking search discovers them. Returns
// ErrInvalidPattern for structurally invalid patterns; an unmatchable but
// well-formed pattern yields an empty result set, not an error.
func (m *Matcher) Match(ctx context.Context, pattern *QueryGraph) (*ResultSet, error) {
	start := time.Now()

	if err := validate(pattern); err != nil {
		if m.metrics != nil {
			m.metrics.RecordQuery("invalid", time.Since(start), 0)
		}
		return nil, err
	}

	order := planOrder(pattern)

	search := searchState{
		matcher: m,
		pattern: pattern,
		order:   order,
		binding: make(map[string]string, len(pattern.Nodes)),
		result: &ResultSet{
			Results:  []Result{},
			Subgraph: &storage.KnowledgeGraph{},
		},
		subgraphNodes: make(map[string]bool),
		subgraphEdges: make(map[string]bool),
	}

	if err := search.run(ctx); err != nil {
		if m.metrics != nil {
			m.metrics.RecordQuery("canceled", time.Since(start), 0)
		}
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.RecordQuery("ok", time.Since(start), len(search.result.Results))
	}
	m.logger.Debug("pattern matched",
		logging.F("query_nodes", len(pattern.Nodes)),
		logging.F("query_edges", len(pattern.Edges)),
		logging.F("results", len(search.result.Results)),
		logging.F("duration_ms", time.Since(start).Milliseconds()),
	)
	return search.result, nil
}

// planOrder fixes the order in which query nodes are bound: pinned nodes
// first, then nodes with the most already-ordered pattern neighbors,
// breaking ties by declaration order. The ordering minimizes branching and
// makes discovery order reproducible.
func planOrder(pattern *QueryGraph) []int {
	n := len(pattern.Nodes)
	selected := make(map[string]bool, n)
	order := make([]int, 0, n)

	orderedNeighbors := func(key string) int {
		count := 0
		for _, qe := range pattern.Edges {
			if qe.Subject == key && selected[qe.Object] {
				count++
			}
			if qe.Object == key && selected[qe.Subject] {
				count++
			}
		}
		return count
	}

	for len(order) < n {
		best := -1
		bestPinned := false
		bestNeighbors := -1
		for i, qn := range pattern.Nodes {
			if selected[qn.Key] {
				continue
			}
			pinned := qn.Pinned()
			neighbors := orderedNeighbors(qn.Key)
			if best == -1 ||
				(pinned && !bestPinned) ||
				(pinned == bestPinned && neighbors > bestNeighbors) {
				best = i
				bestPinned = pinned
				bestNeighbors = neighbors
			}
		}
		order = append(order, best)
		selected[pattern.Nodes[best].Key] = true
	}
	return order
}

type searchState struct {
	matcher *Matcher
	pattern *QueryGraph
	order   []int
	binding map[string]string

	result        *ResultSet
	subgraphNodes map[string]bool
	subgraphEdges map[string]bool
}

// run drives the frame-stack backtracking search to completion, honoring
// context cancellation between candidate steps.
func (s *searchState) run(ctx context.Context) error {
	stack := []*frame{{
		qidx:       s.order[0],
		candidates: s.candidatesFor(s.order[0]),
	}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		top := stack[len(stack)-1]
		qn := s.pattern.Nodes[top.qidx]

		if top.next >= len(top.candidates) {
			delete(s.binding, qn.Key)
			stack = stack[:len(stack)-1]
			continue
		}

		candidate := top.candidates[top.next]
		top.next++

		if !s.consistent(qn.Key, candidate) {
			continue
		}
		s.binding[qn.Key] = candidate

		if len(stack) == len(s.pattern.Nodes) {
			s.emit()
			delete(s.binding, qn.Key)
			continue
		}

		nextIdx := s.order[len(stack)]
		stack = append(stack, &frame{
			qidx:       nextIdx,
			candidates: s.candidatesFor(nextIdx),
		})
	}
	return nil
}

// candidatesFor computes the candidate node IDs for a query node given the
// current partial binding. Pinned nodes yield at most their pinned ID;
// nodes adjacent to an already-bound neighbor are derived from that
// neighbor's store adjacency; all others fall back to a category scan.
func (s *searchState) candidatesFor(qidx int) []string {
	qn := s.pattern.Nodes[qidx]

	if qn.Pinned() {
		node, err := s.matcher.store.GetNode(qn.ID)
		if err != nil {
			return nil
		}
		if qn.Category != "" && node.Category != qn.Category {
			return nil
		}
		return []string{qn.ID}
	}

	// Derive candidates from the first declared pattern edge whose other
	// endpoint is already bound.
	for _, qe := range s.pattern.Edges {
		if qe.Subject == qn.Key && qe.Object != qn.Key {
			if boundID, ok := s.binding[qe.Object]; ok {
				edges := s.matcher.store.GetEdges(boundID, storage.DirectionIncoming, qe.Predicate)
				ids := make([]string, 0, len(edges))
				for _, e := range edges {
					ids = append(ids, e.Subject)
				}
				return s.filterCandidates(ids, qn)
			}
		}
		if qe.Object == qn.Key && qe.Subject != qn.Key {
			if boundID, ok := s.binding[qe.Subject]; ok {
				edges := s.matcher.store.GetEdges(boundID, storage.DirectionOutgoing, qe.Predicate)
				ids := make([]string, 0, len(edges))
				for _, e := range edges {
					ids = append(ids, e.Object)
				}
				return s.filterCandidates(ids, qn)
			}
		}
	}

	// No bound neighbor: scan by category, or everything if unconstrained.
	var nodes []*storage.Node
	if qn.Category != "" {
		nodes = s.matcher.store.NodesByCategory(qn.Category)
	} else {
		nodes = s.matcher.store.AllNodes()
	}
	ids := make([]string, 0, len(nodes))
	for _, node := range nodes {
		ids = append(ids, node.ID)
	}
	return ids
}

// filterCandidates deduplicates adjacency-derived candidates (preserving
// first-seen order) and applies the category constraint.
func (s *searchState) filterCandidates(ids []string, qn QueryNode) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if qn.Category != "" {
			node, err := s.matcher.store.GetNode(id)
			if err != nil || node.Category != qn.Category {
				continue
			}
		}
		out = append(out, id)
	}
	return out
}

// consistent checks that binding key -> candidate keeps every pattern edge
// between bound endpoints satisfiable by at least one concrete store edge.
func (s *searchState) consistent(key, candidate string) bool {
	for _, qe := range s.pattern.Edges {
		subjectID, subjectBound := s.boundOrCandidate(qe.Subject, key, candidate)
		objectID, objectBound := s.boundOrCandidate(qe.Object, key, candidate)
		if !subjectBound || !objectBound {
			continue
		}
		if !s.edgeExists(subjectID, objectID, qe) {
			return false
		}
	}
	return true
}

func (s *searchState) boundOrCandidate(nodeKey, candidateKey, candidate string) (string, bool) {
	if nodeKey == candidateKey {
		return candidate, true
	}
	id, ok := s.binding[nodeKey]
	return id, ok
}

func (s *searchState) edgeExists(subjectID, objectID string, qe QueryEdge) bool {
	for _, e := range s.matcher.store.GetEdges(subjectID, storage.DirectionOutgoing, qe.Predicate) {
		if e.Object == objectID {
			return true
		}
	}
	return false
}

// emit records every result derivable from the current complete node
// assignment: one per combination of concrete edges satisfying the query
// edges, enumerated in declaration order with the last query edge varying
// fastest.
func (s *searchState) emit() {
	choices := make([][]string, len(s.pattern.Edges))
	for i, qe := range s.pattern.Edges {
		subjectID := s.binding[qe.Subject]
		objectID := s.binding[qe.Object]
		for _, e := range s.matcher.store.GetEdges(subjectID, storage.DirectionOutgoing, qe.Predicate) {
			if e.Object == objectID {
				choices[i] = append(choices[i], e.ID)
			}
		}
		if len(choices[i]) == 0 {
			// consistent() should have pruned this assignment.
			return
		}
	}

	counters := make([]int, len(choices))
	for {
		nodeBindings := make(map[string]string, len(s.binding))
		for k, v := range s.binding {
			nodeBindings[k] = v
			s.addSubgraphNode(v)
		}
		edgeBindings := make(map[string]string, len(choices))
		for i, qe := range s.pattern.Edges {
			edgeID := choices[i][counters[i]]
			edgeBindings[qe.Key] = edgeID
			s.addSubgraphEdge(edgeID)
		}
		s.result.Results = append(s.result.Results, Result{
			NodeBindings: nodeBindings,
			EdgeBindings: edgeBindings,
		})

		// Advance the odometer.
		i := len(counters) - 1
		for ; i >= 0; i-- {
			counters[i]++
			if counters[i] < len(choices[i]) {
				break
			}
			counters[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

func (s *searchState) addSubgraphNode(id string) {
	if s.subgraphNodes[id] {
		return
	}
	s.subgraphNodes[id] = true
	if node, err := s.matcher.store.GetNode(id); err == nil {
		s.result.Subgraph.Nodes = append(s.result.Subgraph.Nodes, node)
	}
}

func (s *searchState) addSubgraphEdge(id string) {
	if s.subgraphEdges[id] {
		return
	}
	s.subgraphEdges[id] = true
	if edge, err := s.matcher.store.GetEdge(id); err == nil {
		s.result.Subgraph.Edges = append(s.result.Subgraph.Edges, edge)
	}
}
