// Package graphql exposes a read-only GraphQL view of the loaded graph.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/mockkp/simplekp/pkg/registry"
	"github.com/mockkp/simplekp/pkg/storage"
)

// BuildSchema builds the GraphQL schema over a graph store. Node and edge
// types are fixed; category and predicate vocabularies come from the
// registry, not from the loaded data, so the schema is stable across
// generated graphs.
func BuildSchema(gs *storage.GraphStore) (graphql.Schema, error) {
	nodeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"category": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":     &graphql.Field{Type: graphql.String},
		},
	})

	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Edge",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"subject":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"object":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"predicate": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	nodeType.AddFieldConfig("edges", &graphql.Field{
		Type: graphql.NewList(edgeType),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			node, ok := p.Source.(*storage.Node)
			if !ok {
				return nil, fmt.Errorf("unexpected source type %T", p.Source)
			}
			return toEdgeMaps(gs.GetEdges(node.ID, storage.DirectionBoth, "")), nil
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.ID),
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					node, err := gs.GetNode(id)
					if err != nil {
						if storage.IsNotFound(err) {
							return nil, nil
						}
						return nil, err
					}
					return node, nil
				},
			},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if category, ok := p.Args["category"].(string); ok && category != "" {
						return gs.NodesByCategory(registry.Category(category)), nil
					}
					return gs.AllNodes(), nil
				},
			},
			"edges": &graphql.Field{
				Type: graphql.NewList(edgeType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return toEdgeMaps(gs.AllEdges()), nil
				},
			},
			"neighbors": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.ID),
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					if _, err := gs.GetNode(id); err != nil {
						if storage.IsNotFound(err) {
							return nil, nil
						}
						return nil, err
					}
					var neighbors []*storage.Node
					seen := make(map[string]bool)
					for _, edge := range gs.GetEdges(id, storage.DirectionBoth, "") {
						other := edge.Object
						if other == id {
							other = edge.Subject
						}
						if seen[other] {
							continue
						}
						seen[other] = true
						node, err := gs.GetNode(other)
						if err != nil {
							return nil, err
						}
						neighbors = append(neighbors, node)
					}
					return neighbors, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// toEdgeMaps flattens edges for field resolution. Lists of structs resolve
// per-field through maps here rather than reflection on storage types.
func toEdgeMaps(edges []*storage.Edge) []map[string]any {
	out := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		out = append(out, map[string]any{
			"id":        e.ID,
			"subject":   e.Subject,
			"object":    e.Object,
			"predicate": string(e.Predicate),
		})
	}
	return out
}
