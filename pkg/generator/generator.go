// Package generator synthesizes random, schema-consistent knowledge
// graphs. Output is fully determined by the seed: the same (node count,
// edge count, seed) triple always yields a bit-identical graph.
package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/mockkp/simplekp/pkg/registry"
	"github.com/mockkp/simplekp/pkg/storage"
)

// ErrInvalidSize indicates generation parameters that are structurally
// impossible: too few edges to connect all nodes, or more edges than the
// compatibility table can realize for the assigned categories.
var ErrInvalidSize = errors.New("invalid graph size")

// sampleAttemptsPerEdge bounds the reject-and-resample loop. The
// realizable-triple pre-check makes exhaustion impossible in theory; the
// bound plus the deterministic sweep fallback make it impossible in fact.
const sampleAttemptsPerEdge = 64

// Config holds generation parameters.
type Config struct {
	NodeCount int
	EdgeCount int
	Seed      int64
}

type triple struct {
	subject   int
	object    int
	predicate registry.Predicate
}

// Generate produces a connected, schema-consistent random graph of exactly
// cfg.NodeCount nodes and cfg.EdgeCount edges.
func Generate(cfg Config) (*storage.KnowledgeGraph, error) {
	if cfg.NodeCount < 1 {
		return nil, fmt.Errorf("%w: node count %d must be positive", ErrInvalidSize, cfg.NodeCount)
	}
	if cfg.EdgeCount < cfg.NodeCount-1 {
		return nil, fmt.Errorf("%w: %d edges cannot connect %d nodes (need at least %d)",
			ErrInvalidSize, cfg.EdgeCount, cfg.NodeCount, cfg.NodeCount-1)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	nodes, cats := generateNodes(rng, cfg.NodeCount)

	if max := maxRealizableTriples(cats); cfg.EdgeCount > max {
		return nil, fmt.Errorf("%w: %d edges exceed the %d distinct (subject, object, predicate) triples realizable for this category assignment",
			ErrInvalidSize, cfg.EdgeCount, max)
	}

	edges := generateEdges(rng, nodes, cats, cfg.EdgeCount)

	return &storage.KnowledgeGraph{Nodes: nodes, Edges: edges}, nil
}

// generateNodes assigns each node a uniformly sampled category along with
// a synthetic CURIE identifier and display name.
func generateNodes(rng *rand.Rand, count int) ([]*storage.Node, []registry.Category) {
	categories := registry.Categories()
	nodes := make([]*storage.Node, count)
	cats := make([]registry.Category, count)

	for i := 0; i < count; i++ {
		cat := categories[rng.Intn(len(categories))]
		cats[i] = cat
		nodes[i] = &storage.Node{
			ID:       fmt.Sprintf("%s:%07d", registry.CuriePrefix(cat), i+1),
			Category: cat,
			Name:     fmt.Sprintf("mock %s %d", strings.ToLower(cat.Label()), i+1),
			Attributes: map[string]storage.Value{
				"synthetic": storage.BoolValue(true),
			},
		}
	}
	return nodes, cats
}

// maxRealizableTriples counts the distinct (subject, object, predicate)
// triples the compatibility table admits for the assigned categories,
// excluding self-loops. Counting by category occurrence keeps this O(1) in
// the node count.
func maxRealizableTriples(cats []registry.Category) int {
	occurrences := make(map[registry.Category]int)
	for _, c := range cats {
		occurrences[c]++
	}

	total := 0
	for _, subject := range registry.Categories() {
		for _, object := range registry.Categories() {
			preds := len(registry.AllowedPredicates(subject, object))
			if preds == 0 {
				continue
			}
			pairs := occurrences[subject] * occurrences[object]
			if subject == object {
				pairs -= occurrences[subject] // no self-loops
			}
			total += pairs * preds
		}
	}
	return total
}

// generateEdges builds the spanning structure first, then fills the
// remaining count by rejection sampling with a deterministic sweep
// fallback. Requires the realizable-triple pre-check to have passed.
func generateEdges(rng *rand.Rand, nodes []*storage.Node, cats []registry.Category, count int) []*storage.Edge {
	used := make(map[triple]bool)
	edges := make([]*storage.Edge, 0, count)

	appendEdge := func(t triple) {
		used[t] = true
		edges = append(edges, &storage.Edge{
			ID:        fmt.Sprintf("e%06d", len(edges)+1),
			Subject:   nodes[t.subject].ID,
			Object:    nodes[t.object].ID,
			Predicate: t.predicate,
			Attributes: map[string]storage.Value{
				"origin": storage.StringValue("simplekp"),
			},
		})
	}

	// Spanning structure: attach each node (in a random order) to one
	// already-attached node. The registry guarantees every unordered
	// category pair connects in at least one direction, so there is always
	// at least one option.
	order := rng.Perm(len(nodes))
	for k := 1; k < len(order); k++ {
		v := order[k]
		u := order[rng.Intn(k)]

		opts := connectionOptions(u, v, cats)
		appendEdge(opts[rng.Intn(len(opts))])
	}

	// Remaining edges: reject-and-resample random ordered pairs.
	remaining := count - len(edges)
	attempts := 0
	maxAttempts := sampleAttemptsPerEdge*remaining + 1000
	for remaining > 0 && attempts < maxAttempts {
		attempts++
		s := rng.Intn(len(nodes))
		o := rng.Intn(len(nodes))
		if s == o {
			continue
		}
		preds := registry.AllowedPredicates(cats[s], cats[o])
		if len(preds) == 0 {
			continue
		}
		t := triple{s, o, preds[rng.Intn(len(preds))]}
		if used[t] {
			continue
		}
		appendEdge(t)
		remaining--
	}

	// Sweep fallback: enumerate unused triples in index order. Reached only
	// when sampling keeps colliding near the realizable maximum; the
	// pre-check guarantees enough triples exist.
	if remaining > 0 {
		for s := 0; s < len(nodes) && remaining > 0; s++ {
			for o := 0; o < len(nodes) && remaining > 0; o++ {
				if s == o {
					continue
				}
				for _, p := range registry.AllowedPredicates(cats[s], cats[o]) {
					t := triple{s, o, p}
					if used[t] {
						continue
					}
					appendEdge(t)
					remaining--
					if remaining == 0 {
						break
					}
				}
			}
		}
	}

	return edges
}

// connectionOptions enumerates every legal directed (subject, object,
// predicate) triple between two nodes, in fixed order.
func connectionOptions(u, v int, cats []registry.Category) []triple {
	var opts []triple
	for _, p := range registry.AllowedPredicates(cats[u], cats[v]) {
		opts = append(opts, triple{u, v, p})
	}
	for _, p := range registry.AllowedPredicates(cats[v], cats[u]) {
		opts = append(opts, triple{v, u, p})
	}
	return opts
}
