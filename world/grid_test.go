package world

import (
	"testing"

	"github.com/aposine/nightwatch/geo"
	"github.com/stretchr/testify/assert"
)

func TestGrid_SightBlocked(t *testing.T) {
	g := NewGrid([]Box{{MinX: 4, MinZ: -1, MaxX: 6, MaxZ: 1}})

	assert.True(t, g.SightBlocked(geo.Vec{}, geo.Vec{X: 10}),
		"ray straight through the box")
	assert.False(t, g.SightBlocked(geo.Vec{}, geo.Vec{X: 10, Z: 5}),
		"ray passing beside the box")
	assert.False(t, g.SightBlocked(geo.Vec{}, geo.Vec{X: 3}),
		"ray stopping short of the box")
	assert.False(t, g.SightBlocked(geo.Vec{Z: 5}, geo.Vec{X: 10, Z: 5}))
}

func TestGrid_SightBlockedIgnoresHeight(t *testing.T) {
	g := NewGrid([]Box{{MinX: 4, MinZ: -1, MaxX: 6, MaxZ: 1}})
	// Obstacles are full-height: raising the ray does not clear it.
	assert.True(t, g.SightBlocked(geo.Vec{Y: 1.7}, geo.Vec{X: 10, Y: 1.7}))
}

func TestGrid_Walkable(t *testing.T) {
	g := NewGrid([]Box{{MinX: 0, MinZ: 0, MaxX: 2, MaxZ: 2}})
	assert.False(t, g.Walkable(geo.Vec{X: 1, Z: 1}))
	assert.True(t, g.Walkable(geo.Vec{X: 3, Z: 1}))
	assert.False(t, g.Walkable(geo.Vec{X: 2, Z: 2}), "box edges are not walkable")
}

func TestGrid_RandomReachablePoint(t *testing.T) {
	open := NewGrid(nil)
	center := geo.Vec{X: 10, Z: 10}
	p, ok := open.RandomReachablePoint(center, 3)
	assert.True(t, ok)
	assert.LessOrEqual(t, geo.Dist(center, p), 3.0+1e-9)

	// Center buried deep inside an obstacle much larger than the radius:
	// every draw lands inside it.
	walled := NewGrid([]Box{{MinX: -100, MinZ: -100, MaxX: 100, MaxZ: 100}})
	_, ok = walled.RandomReachablePoint(geo.Vec{}, 3)
	assert.False(t, ok)
}

func TestSegmentHitsBox_DegenerateSegment(t *testing.T) {
	b := Box{MinX: 0, MinZ: 0, MaxX: 2, MaxZ: 2}
	assert.True(t, segmentHitsBox(geo.Vec{X: 1, Z: 1}, geo.Vec{X: 1, Z: 1}, b),
		"a zero-length segment inside the box hits it")
	assert.False(t, segmentHitsBox(geo.Vec{X: 5, Z: 5}, geo.Vec{X: 5, Z: 5}, b))
}
