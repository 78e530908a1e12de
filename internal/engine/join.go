package engine

import "hetiostats/internal/database/relational"

// JoinTreatments inner-joins compounds with edges on compound.ID ==
// edge.Source. Every matching (compound, edge) pair yields one row, so
// duplicate edges stay duplicated. Compounds without a matching edge are
// dropped. Rows follow compound order, then edge order.
func JoinTreatments(compounds []relational.Node, edges []relational.Edge) []relational.JoinedTreatment {
	bySource := make(map[string][]relational.Edge)
	for _, e := range edges {
		bySource[e.Source] = append(bySource[e.Source], e)
	}

	out := make([]relational.JoinedTreatment, 0, len(edges))
	for _, c := range compounds {
		for _, e := range bySource[c.ID] {
			out = append(out, relational.JoinedTreatment{
				ID:       c.ID,
				Name:     c.Name,
				Metaedge: e.Metaedge,
				Target:   e.Target,
			})
		}
	}
	return out
}
