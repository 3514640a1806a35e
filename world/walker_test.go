package world

import (
	"testing"

	"github.com/aposine/nightwatch/geo"
	"github.com/stretchr/testify/assert"
)

func TestWalker_ReachesDestination(t *testing.T) {
	w := NewWalker(geo.Vec{}, nil)
	w.MoveTo(geo.Vec{X: 2}, 1)
	assert.False(t, w.ReachedDestination())

	for i := 0; i < 25; i++ {
		w.Tick(0.1)
	}
	assert.True(t, w.ReachedDestination())
	assert.Equal(t, geo.Vec{X: 2}, w.Position())
}

func TestWalker_ConstantSpeed(t *testing.T) {
	w := NewWalker(geo.Vec{}, nil)
	w.MoveTo(geo.Vec{X: 10}, 2)
	w.Tick(0.5)
	assert.InDelta(t, 1.0, w.Position().X, 1e-9)
	assert.InDelta(t, 1.0, w.Forward().X, 1e-9, "walker faces its travel direction")
}

func TestWalker_NoOvershoot(t *testing.T) {
	w := NewWalker(geo.Vec{}, nil)
	w.MoveTo(geo.Vec{X: 1}, 100)
	w.Tick(1)
	assert.Equal(t, geo.Vec{X: 1}, w.Position())
	assert.True(t, w.ReachedDestination())
}

func TestWalker_StopHolds(t *testing.T) {
	w := NewWalker(geo.Vec{}, nil)
	w.MoveTo(geo.Vec{X: 10}, 1)
	w.Tick(0.5)
	at := w.Position()
	w.Stop()
	w.Tick(1)
	assert.Equal(t, at, w.Position())
	assert.True(t, w.ReachedDestination(), "a stopped walker reports arrival")
}

func TestWalker_FaceDirectionNormalizes(t *testing.T) {
	w := NewWalker(geo.Vec{}, nil)
	w.FaceDirection(geo.Vec{X: 3, Z: 4}, 180)
	assert.InDelta(t, 0.6, w.Forward().X, 1e-9)
	assert.InDelta(t, 0.8, w.Forward().Z, 1e-9)

	before := w.Forward()
	w.FaceDirection(geo.Vec{}, 180)
	assert.Equal(t, before, w.Forward(), "zero direction is ignored")
}

func TestWalker_RandomReachablePointWithoutGrid(t *testing.T) {
	w := NewWalker(geo.Vec{}, nil)
	_, ok := w.RandomReachablePoint(geo.Vec{}, 5)
	assert.False(t, ok)
}
