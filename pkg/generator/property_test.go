package generator

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/mockkp/simplekp/pkg/registry"
)

// TestGenerationInvariants uses property-based testing to verify the
// invariants that must hold for every valid (node count, edge count, seed).
func TestGenerationInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("valid sizes yield exact counts and connectivity", prop.ForAll(
		func(nodeCount int, extraEdges int, seed int64) bool {
			g, err := Generate(Config{
				NodeCount: nodeCount,
				EdgeCount: nodeCount - 1 + extraEdges,
				Seed:      seed,
			})
			if err != nil {
				// Extra edges may exceed the realizable maximum for an
				// unlucky category assignment; that rejection is valid.
				return errors.Is(err, ErrInvalidSize)
			}
			return len(g.Nodes) == nodeCount &&
				len(g.Edges) == nodeCount-1+extraEdges &&
				isConnected(g)
		},
		gen.IntRange(2, 40),
		gen.IntRange(0, 30),
		gen.Int64(),
	))

	properties.Property("every edge satisfies the compatibility table", prop.ForAll(
		func(nodeCount int, seed int64) bool {
			g, err := Generate(Config{
				NodeCount: nodeCount,
				EdgeCount: nodeCount - 1,
				Seed:      seed,
			})
			if err != nil {
				return false
			}
			cats := make(map[string]registry.Category, len(g.Nodes))
			for _, n := range g.Nodes {
				cats[n.ID] = n.Category
			}
			for _, e := range g.Edges {
				ok := false
				for _, p := range registry.AllowedPredicates(cats[e.Subject], cats[e.Object]) {
					if p == e.Predicate {
						ok = true
						break
					}
				}
				if !ok {
					return false
				}
			}
			return true
		},
		gen.IntRange(2, 40),
		gen.Int64(),
	))

	properties.Property("undersized edge counts are rejected", prop.ForAll(
		func(nodeCount int, seed int64) bool {
			_, err := Generate(Config{
				NodeCount: nodeCount,
				EdgeCount: nodeCount - 2,
				Seed:      seed,
			})
			return errors.Is(err, ErrInvalidSize)
		},
		gen.IntRange(2, 40),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
