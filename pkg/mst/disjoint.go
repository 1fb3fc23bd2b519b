package mst

// DisjointSet is a union-find forest over the integers [0, n).
// It uses union by rank and path compression.
type DisjointSet struct {
	parent []int
	rank   []int
}

// NewDisjointSet returns n singleton sets.
func NewDisjointSet(n int) *DisjointSet {
	ds := &DisjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

// Find returns the representative of the set containing x.
func (ds *DisjointSet) Find(x int) int {
	root := x
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	for ds.parent[x] != root {
		ds.parent[x], x = root, ds.parent[x]
	}
	return root
}

// Union merges the sets containing x and y. It reports false if they were
// already the same set.
func (ds *DisjointSet) Union(x, y int) bool {
	rx, ry := ds.Find(x), ds.Find(y)
	if rx == ry {
		return false
	}
	switch {
	case ds.rank[rx] < ds.rank[ry]:
		ds.parent[rx] = ry
	case ds.rank[rx] > ds.rank[ry]:
		ds.parent[ry] = rx
	default:
		ds.parent[ry] = rx
		ds.rank[rx]++
	}
	return true
}

// Connected reports whether x and y are in the same set.
func (ds *DisjointSet) Connected(x, y int) bool {
	return ds.Find(x) == ds.Find(y)
}

// Len returns the number of elements.
func (ds *DisjointSet) Len() int {
	return len(ds.parent)
}
