// Package lighting provides the shared light-shape catalog, the per-emitter
// brightness cache, and the falloff math behind both.
//
// Ownership boundaries:
//   - the catalog lives in the service's shared data slot so every module
//     copy appends to the same instance
//   - cache entries are owned by the manager; emitters only hold keys
//   - cast handlers fill a fresh brightness map per call and never retain it
package lighting

import "math"

// Cell addresses one grid position.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellDistance is the grid's chessboard distance: the larger of the two
// axis deltas.
func CellDistance(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		return dy
	}
	return dx
}

// EuclideanDistance is the straight-line distance between cell centers.
func EuclideanDistance(a, b Cell) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// DefaultFalloff is the stepped brightness ratio used by grid-aligned
// shapes: 1 / max(1, round(rate * max(dist, 1))). The clamp keeps the
// ratio finite at the origin and at rates below one.
func DefaultFalloff(rate float64, cell, origin Cell) float64 {
	dist := CellDistance(cell, origin)
	if dist < 1 {
		dist = 1
	}
	div := math.Round(rate * float64(dist))
	if div < 1 {
		div = 1
	}
	return 1 / div
}

// SmoothFalloff is the continuous variant over euclidean distance:
// 1 / max(1, rate * dist).
func SmoothFalloff(rate float64, cell, origin Cell) float64 {
	div := rate * EuclideanDistance(cell, origin)
	if div < 1 {
		div = 1
	}
	return 1 / div
}
