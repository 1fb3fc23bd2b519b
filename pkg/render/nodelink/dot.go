package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/delaunay"
	"github.com/matzehuels/levelgen/pkg/level"
)

// DefaultScale is the number of points per level unit.
const DefaultScale = 12.0

// Options configures room graph rendering.
type Options struct {
	// Detailed adds template names and door limits to room labels and
	// distances to spanning tree edges.
	Detailed bool

	// Scale is points per level unit. Zero uses DefaultScale.
	Scale float64
}

// Edge styles.
const (
	styleTriangulation = `color="#c8c8c8", style=solid, penwidth=1`
	styleSpanning      = `color="#1f2937", style=solid, penwidth=3`
	styleSide          = `color="#2563eb", style=dashed, penwidth=2`
	styleFailed        = `color="#dc2626", style=dotted, penwidth=2`
)

// ToDOT converts a level to an undirected Graphviz graph. Rooms are boxes
// pinned at their anchors and sized like their floors. Triangulation edges
// are faint, spanning tree edges solid, side halls dashed and halls that
// could not be routed dotted red.
func ToDOT(l *level.Level, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=10];\n")
	buf.WriteString("\n")

	for _, r := range l.Rooms {
		label := strconv.Itoa(r.Index)
		if opts.Detailed {
			label = fmt.Sprintf("%d\n%s\ndoors: %d", r.Index, r.Template, r.MaxDoors)
		}
		fmt.Fprintf(&buf, "  %s [label=%q, pos=\"%s,%s!\", width=%s, height=%s];\n",
			roomID(r.Index), label,
			num(r.Pos[0]*scale), num(r.Pos[1]*scale),
			num(r.Width*scale/72), num(r.Depth*scale/72))
	}

	buf.WriteString("\n")
	spanning := make(map[[2]int]bool, len(l.Edges))
	for _, e := range l.Edges {
		a, b, ok := vertexRooms(l.Vertices, e.Source, e.Destination)
		if !ok {
			continue
		}
		spanning[pairKey(a, b)] = true
	}

	for _, e := range delaunay.Edges(l.Triangles) {
		if spanning[pairKey(e.P.Index, e.Q.Index)] {
			continue
		}
		writeEdge(&buf, e.P.Index, e.Q.Index, styleTriangulation, "")
	}
	for _, e := range l.Edges {
		a, b, ok := vertexRooms(l.Vertices, e.Source, e.Destination)
		if !ok {
			continue
		}
		label := ""
		if opts.Detailed {
			label = strconv.FormatFloat(e.Weight, 'f', 1, 64)
		}
		writeEdge(&buf, a, b, styleSpanning, label)
	}
	for _, h := range l.Halls {
		if h.Kind != corridor.KindSide {
			continue
		}
		if a, b, ok := vertexRooms(l.Vertices, h.From, h.To); ok {
			writeEdge(&buf, a, b, styleSide, "")
		}
	}
	for _, h := range l.Failed {
		if a, b, ok := vertexRooms(l.Vertices, h.From, h.To); ok {
			writeEdge(&buf, a, b, styleFailed, "")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeEdge(buf *bytes.Buffer, a, b int, style, label string) {
	attrs := []string{style}
	if label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
	}
	fmt.Fprintf(buf, "  %s -- %s [%s];\n", roomID(a), roomID(b), strings.Join(attrs, ", "))
}

// vertexRooms maps two vertex indices to the rooms they were taken from.
func vertexRooms(vs []delaunay.Vertex, i, j int) (int, int, bool) {
	if i < 0 || j < 0 || i >= len(vs) || j >= len(vs) {
		return 0, 0, false
	}
	return vs[i].Index, vs[j].Index, true
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func roomID(i int) string { return "r" + strconv.Itoa(i) }

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// RenderSVG lays out a DOT graph with neato, keeping pinned positions, and
// renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-size svg header with a
// scalable one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
