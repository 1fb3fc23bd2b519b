// Package corridor turns selected room connections into corridor floor tiles.
//
// # Halls
//
// Every spanning-tree edge becomes a hall between the grid cells nearest to
// its two vertices. On top of that, round(edges × SideHallFrequency) side
// halls are added between randomly sampled vertices to put loops into the
// otherwise tree-shaped network. A vertex serves as a side hall endpoint at
// most once; when sampling cannot find an unused pair within the budget,
// [Assemble] fails with [ErrSamplingExhausted] and [Build] restarts the whole
// stage, up to MaxRestarts times.
//
// Halls are routed concurrently with [astar.FindPath]. A hall whose endpoints
// cannot be connected is reported in [Result.Failed] and left out; it never
// fails the run.
//
// # Tiles
//
// All routed cells are merged into one set, cells lying on a room floor are
// removed, and each remaining [Tile] records which of its sides open onto
// another corridor tile:
//
//	N = +Y = 1, E = +X = 2, S = -Y = 4, W = -X = 8
//
// Tiles next to a room floor are flagged as entrances.
package corridor
