// Package layout places rooms inside a level and pushes overlapping rooms apart.
//
// # Placement
//
// [Place] picks a [Template] uniformly for each room and drops it at a random
// integer position inside the level [Bounds]. Positions are snapped so that
// room edges fall on half-unit boundaries, which keeps floor regions aligned
// with the corridor grid.
//
// # Separation
//
// [Separate] is a best-effort relaxation: while any two floors intersect,
// every room involved is moved one padding step along a random cardinal
// axis. Moves that would leave the bounds (shrunk by a margin) are skipped.
// The loop is capped and reports [ErrSeparationExhausted] when the cap is
// reached; there is no guarantee a valid arrangement exists for the inputs.
//
// Floors are [orb.Bound] values, and touching floors count as overlapping,
// so a separated layout always leaves at least a sliver between rooms.
package layout
