package query

import (
	"errors"
	"fmt"

	"github.com/mockkp/simplekp/pkg/registry"
)

// ErrInvalidPattern indicates a query graph that violates its structural
// invariants or references vocabulary unknown to the registry.
var ErrInvalidPattern = errors.New("invalid query pattern")

// validate checks the structural invariants of a pattern: at least one
// query node, unique keys, edge endpoints that reference declared nodes,
// and registry-known categories and predicates.
func validate(pattern *QueryGraph) error {
	if pattern == nil || len(pattern.Nodes) == 0 {
		return fmt.Errorf("%w: pattern has no query nodes", ErrInvalidPattern)
	}

	nodeKeys := make(map[string]bool, len(pattern.Nodes))
	for _, qn := range pattern.Nodes {
		if qn.Key == "" {
			return fmt.Errorf("%w: query node with empty key", ErrInvalidPattern)
		}
		if nodeKeys[qn.Key] {
			return fmt.Errorf("%w: duplicate query node key %q", ErrInvalidPattern, qn.Key)
		}
		nodeKeys[qn.Key] = true
		if qn.Category != "" && !registry.KnownCategory(qn.Category) {
			return fmt.Errorf("%w: unknown category %q on query node %q", ErrInvalidPattern, qn.Category, qn.Key)
		}
	}

	edgeKeys := make(map[string]bool, len(pattern.Edges))
	for _, qe := range pattern.Edges {
		if qe.Key == "" {
			return fmt.Errorf("%w: query edge with empty key", ErrInvalidPattern)
		}
		if edgeKeys[qe.Key] {
			return fmt.Errorf("%w: duplicate query edge key %q", ErrInvalidPattern, qe.Key)
		}
		edgeKeys[qe.Key] = true
		if !nodeKeys[qe.Subject] {
			return fmt.Errorf("%w: query edge %q references undeclared subject %q", ErrInvalidPattern, qe.Key, qe.Subject)
		}
		if !nodeKeys[qe.Object] {
			return fmt.Errorf("%w: query edge %q references undeclared object %q", ErrInvalidPattern, qe.Key, qe.Object)
		}
		if qe.Predicate != "" && !registry.KnownPredicate(qe.Predicate) {
			return fmt.Errorf("%w: unknown predicate %q on query edge %q", ErrInvalidPattern, qe.Predicate, qe.Key)
		}
	}

	return nil
}
