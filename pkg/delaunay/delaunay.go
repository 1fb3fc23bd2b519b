// Package delaunay computes a Delaunay triangulation of room anchor points.
//
// [Triangulate] wraps the sweep-hull Delaunator port from
// github.com/fogleman/delaunay, mapping its index triangles back to the
// room-tagged input vertices. The result covers the convex hull of the
// distinct input points.
//
// Degenerate inputs are not errors: fewer than three distinct points, or
// points that are all collinear, produce no triangles. Zero-area triangles are
// never emitted.
package delaunay

import (
	"math"

	delaunator "github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
)

// areaEpsilon is the smallest triangle area considered non-degenerate.
const areaEpsilon = 1e-9

// Vertex is a triangulation input point tagged with the room it came from.
type Vertex struct {
	Pos   orb.Point `json:"pos" bson:"pos"`
	Index int       `json:"index" bson:"index"`
}

// Triangle is a non-degenerate triangle of three vertices.
type Triangle struct {
	A Vertex `json:"a" bson:"a"`
	B Vertex `json:"b" bson:"b"`
	C Vertex `json:"c" bson:"c"`
}

// Vertices returns the triangle corners in A, B, C order.
func (t Triangle) Vertices() [3]Vertex {
	return [3]Vertex{t.A, t.B, t.C}
}

// Area returns the unsigned area of the triangle.
func (t Triangle) Area() float64 {
	return math.Abs(cross(t.A.Pos, t.B.Pos, t.C.Pos)) / 2
}

// Ring returns the triangle as a closed ring, for geometry export.
func (t Triangle) Ring() orb.Ring {
	return orb.Ring{t.A.Pos, t.B.Pos, t.C.Pos, t.A.Pos}
}

// Edge is an undirected triangulation edge.
type Edge struct {
	P Vertex
	Q Vertex
}

// Triangulate returns the Delaunay triangulation of the given vertices.
// Vertices sharing a position are collapsed; the first occurrence wins.
func Triangulate(vertices []Vertex) []Triangle {
	pts := dedupe(vertices)
	if len(pts) < 3 || collinear(pts) {
		return nil
	}

	in := make([]delaunator.Point, len(pts))
	for i, v := range pts {
		in[i] = delaunator.Point{X: v.Pos[0], Y: v.Pos[1]}
	}
	t, err := delaunator.Triangulate(in)
	if err != nil {
		return nil
	}

	out := make([]Triangle, 0, len(t.Triangles)/3)
	for i := 0; i+2 < len(t.Triangles); i += 3 {
		tr := Triangle{A: pts[t.Triangles[i]], B: pts[t.Triangles[i+1]], C: pts[t.Triangles[i+2]]}
		if tr.Area() < areaEpsilon {
			continue
		}
		out = append(out, tr)
	}
	return out
}

// UniqueVertices returns the distinct vertices of the triangles in order of
// first appearance.
func UniqueVertices(triangles []Triangle) []Vertex {
	seen := make(map[orb.Point]bool)
	var out []Vertex
	for _, t := range triangles {
		for _, v := range t.Vertices() {
			if !seen[v.Pos] {
				seen[v.Pos] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Edges returns the distinct undirected edges of the triangles in order of
// first appearance.
func Edges(triangles []Triangle) []Edge {
	type key struct{ p, q orb.Point }
	seen := make(map[key]bool)
	var out []Edge
	for _, t := range triangles {
		vs := t.Vertices()
		for i := range vs {
			p, q := vs[i], vs[(i+1)%3]
			if seen[key{p.Pos, q.Pos}] || seen[key{q.Pos, p.Pos}] {
				continue
			}
			seen[key{p.Pos, q.Pos}] = true
			out = append(out, Edge{P: p, Q: q})
		}
	}
	return out
}

func dedupe(vertices []Vertex) []Vertex {
	seen := make(map[orb.Point]bool, len(vertices))
	out := make([]Vertex, 0, len(vertices))
	for _, v := range vertices {
		if seen[v.Pos] {
			continue
		}
		seen[v.Pos] = true
		out = append(out, v)
	}
	return out
}

// collinear reports whether every point lies on the line through the first
// two.
func collinear(pts []Vertex) bool {
	for _, v := range pts[2:] {
		if math.Abs(cross(pts[0].Pos, pts[1].Pos, v.Pos)) >= 2*areaEpsilon {
			return false
		}
	}
	return true
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
