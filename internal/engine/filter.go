// Package engine is the in-memory query backend. It filters, joins and
// aggregates Go slices directly and answers the same questions as the DuckDB
// repository, so either can stand behind relational.QueryEngine.
package engine

import (
	"slices"

	"hetiostats/internal/database/relational"
)

// FilterNodesByKind returns the nodes whose kind equals kind, in input order.
func FilterNodesByKind(nodes []relational.Node, kind string) []relational.Node {
	out := make([]relational.Node, 0)
	for _, n := range nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// FilterEdgesByMetaedge returns the edges whose metaedge is in set, in input
// order. An empty set yields no edges.
func FilterEdgesByMetaedge(edges []relational.Edge, set []string) []relational.Edge {
	out := make([]relational.Edge, 0)
	if len(set) == 0 {
		return out
	}
	for _, e := range edges {
		if slices.Contains(set, e.Metaedge) {
			out = append(out, e)
		}
	}
	return out
}
