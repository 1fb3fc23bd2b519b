// Package astar finds shortest 4-connected paths over a set of grid cells.
package astar

import (
	"container/heap"
	"errors"

	"github.com/matzehuels/levelgen/pkg/grid"
)

// ErrNoPath is returned when the target cannot be reached from the start.
var ErrNoPath = errors.New("no path")

// Walkable is the set of cells a path may visit.
type Walkable interface {
	Contains(grid.Cell) bool
}

type options struct {
	cellSize float64
}

// Option configures [FindPath].
type Option func(*options)

// WithCellSize scales step and heuristic costs by size. Non-positive sizes
// are ignored.
func WithCellSize(size float64) Option {
	return func(o *options) {
		if size > 0 {
			o.cellSize = size
		}
	}
}

type node struct {
	cell   grid.Cell
	parent *node
	g, h   float64
}

func (n *node) f() float64 { return n.g + n.h }

// FindPath returns a shortest path from start to target moving only between
// cardinal neighbours contained in cells. The path excludes start and ends at
// target; it is empty when start equals target. Both ends must be in cells,
// otherwise ErrNoPath is returned.
//
// Costs use Euclidean distance, and the heuristic is the straight-line
// distance to target, so returned paths are optimal. A neighbour is queued
// again only when its cost strictly improves; an equal-cost route keeps the
// parent found first, which makes tie-breaking between equal paths follow
// queue order. FindPath only reads cells and is safe to call concurrently.
func FindPath(start, target grid.Cell, cells Walkable, opts ...Option) ([]grid.Cell, error) {
	o := options{cellSize: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if start == target {
		return []grid.Cell{}, nil
	}
	if cells == nil || !cells.Contains(start) || !cells.Contains(target) {
		return nil, ErrNoPath
	}

	open := &queue{}
	closed := make(map[grid.Cell]bool)
	bestG := make(map[grid.Cell]float64)

	heap.Push(open, &node{cell: start, h: start.Distance(target) * o.cellSize})
	bestG[start] = 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*entry).node
		if closed[current.cell] {
			continue
		}
		if current.cell == target {
			return retrace(current), nil
		}
		closed[current.cell] = true

		for _, next := range current.cell.Neighbors() {
			if closed[next] || !cells.Contains(next) {
				continue
			}
			g := current.g + current.cell.Distance(next)*o.cellSize
			if prev, ok := bestG[next]; ok && g >= prev {
				continue
			}
			bestG[next] = g
			heap.Push(open, &node{
				cell:   next,
				parent: current,
				g:      g,
				h:      next.Distance(target) * o.cellSize,
			})
		}
	}
	return nil, ErrNoPath
}

// Cost returns the summed step cost of a path that starts next to start.
func Cost(start grid.Cell, path []grid.Cell) float64 {
	var total float64
	prev := start
	for _, c := range path {
		total += prev.Distance(c)
		prev = c
	}
	return total
}

func retrace(end *node) []grid.Cell {
	var path []grid.Cell
	for n := end; n.parent != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
