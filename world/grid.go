package world

import (
	"math"
	"math/rand"

	"github.com/aposine/nightwatch/geo"
)

// Box is an axis-aligned obstacle on the ground plane. Height is ignored:
// an obstacle blocks sight and standing room across its full XZ footprint.
type Box struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// Contains reports whether the point's ground projection is inside the box.
func (b Box) Contains(p geo.Vec) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Z >= b.MinZ && p.Z <= b.MaxZ
}

// Grid is a flat world of axis-aligned obstacles. It serves both the vision
// sampler (sight rays) and the movement layer (reachable points).
type Grid struct {
	boxes []Box
}

// NewGrid builds a Grid from its obstacle set.
func NewGrid(boxes []Box) *Grid {
	return &Grid{boxes: boxes}
}

// SightBlocked implements sense.Obstructer: a ray from..to is blocked when
// it crosses any obstacle footprint. The target body is not part of the
// obstacle set, so reaching the target never counts as blocked.
func (g *Grid) SightBlocked(from, to geo.Vec) bool {
	for _, b := range g.boxes {
		if segmentHitsBox(from, to, b) {
			return true
		}
	}
	return false
}

// Walkable reports whether a point is outside every obstacle.
func (g *Grid) Walkable(p geo.Vec) bool {
	for _, b := range g.boxes {
		if b.Contains(p) {
			return false
		}
	}
	return true
}

const reachableTries = 12

// RandomReachablePoint draws a walkable point within radius of center using
// rejection sampling. ok=false after reachableTries misses.
func (g *Grid) RandomReachablePoint(center geo.Vec, radius float64) (geo.Vec, bool) {
	for i := 0; i < reachableTries; i++ {
		a := rand.Float64() * 2 * math.Pi
		r := radius * math.Sqrt(rand.Float64())
		p := geo.Vec{X: center.X + r*math.Cos(a), Y: center.Y, Z: center.Z + r*math.Sin(a)}
		if g.Walkable(p) {
			return p, true
		}
	}
	return geo.Vec{}, false
}

// segmentHitsBox is a 2D slab test of the ground projection of from..to
// against the box. Touching only an edge endpoint-first still counts as a
// hit.
func segmentHitsBox(from, to geo.Vec, b Box) bool {
	dx := to.X - from.X
	dz := to.Z - from.Z
	tmin, tmax := 0.0, 1.0

	for _, axis := range [2][3]float64{
		{from.X, dx, 0}, // slab on X; bounds picked below
		{from.Z, dz, 1},
	} {
		origin, delta := axis[0], axis[1]
		var lo, hi float64
		if axis[2] == 0 {
			lo, hi = b.MinX, b.MaxX
		} else {
			lo, hi = b.MinZ, b.MaxZ
		}
		if math.Abs(delta) < 1e-12 {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}
		t1 := (lo - origin) / delta
		t2 := (hi - origin) / delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}
