// Package nodelink renders the room graph of a level as a node-link diagram.
//
// Rooms become boxes pinned at their anchor positions (Graphviz neato with
// "pos=x,y!") and sized like their floors, so the diagram keeps the level's
// geometry. Edges show how the corridor network was chosen:
//
//   - faint grey: Delaunay triangulation edges not in the spanning tree
//   - solid: minimum spanning tree edges
//   - dashed blue: side halls
//   - dotted red: halls that could not be routed
//
// # Usage
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools (use "neato -n" to keep positions).
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
