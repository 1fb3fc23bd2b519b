// Package mst selects corridor edges with Kruskal's minimum spanning tree.
//
// [Kruskal] builds the complete graph over a point set, weighting each pair
// by Euclidean distance, and accepts edges in ascending weight order while
// they join two different components of a [DisjointSet]. The result connects
// every point with the least total corridor length.
//
// Edges with equal weight keep their generation order (i ascending, then j
// ascending), so the output is deterministic for a given input order.
package mst

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Edge is a weighted connection between two points, identified by their
// positions in the input slice.
type Edge struct {
	Source      int     `json:"source" bson:"source"`
	Destination int     `json:"destination" bson:"destination"`
	Weight      float64 `json:"weight" bson:"weight"`
}

// Kruskal returns the minimum spanning tree of the complete Euclidean graph
// over points. It stops after len(points)-1 accepted edges. Fewer than two
// points yield no edges.
func Kruskal(points []orb.Point) []Edge {
	n := len(points)
	if n < 2 {
		return nil
	}

	edges := make([]Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, Edge{
				Source:      i,
				Destination: j,
				Weight:      planar.Distance(points[i], points[j]),
			})
		}
	}
	slices.SortStableFunc(edges, func(a, b Edge) int {
		return cmp.Compare(a.Weight, b.Weight)
	})

	ds := NewDisjointSet(n)
	result := make([]Edge, 0, n-1)
	for _, e := range edges {
		if len(result) == n-1 {
			break
		}
		if ds.Union(e.Source, e.Destination) {
			result = append(result, e)
		}
	}
	return result
}

// TotalWeight sums the weights of edges.
func TotalWeight(edges []Edge) float64 {
	var total float64
	for _, e := range edges {
		total += e.Weight
	}
	return total
}
