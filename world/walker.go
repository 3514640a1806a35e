package world

import (
	"github.com/aposine/nightwatch/geo"
)

// arriveEpsilon is the distance at which a walker considers its destination
// reached.
const arriveEpsilon = 0.1

// Walker is the reference movement service: straight-line constant-speed
// locomotion on the ground plane. It implements behavior.Mover and
// agent.Transform. Real games put a navmesh behind the same interface; the
// simulation core only issues commands to it.
type Walker struct {
	pos     geo.Vec
	forward geo.Vec
	dest    geo.Vec
	speed   float64
	moving  bool
	grid    *Grid
}

// NewWalker places a walker at start. grid may be nil; then every
// RandomReachablePoint query misses.
func NewWalker(start geo.Vec, grid *Grid) *Walker {
	return &Walker{pos: start, forward: geo.Vec{X: 1}, grid: grid}
}

// Position implements agent.Transform.
func (w *Walker) Position() geo.Vec { return w.pos }

// Forward implements agent.Transform.
func (w *Walker) Forward() geo.Vec { return w.forward }

// MoveTo implements behavior.Mover.
func (w *Walker) MoveTo(pos geo.Vec, speed float64) {
	w.dest = pos
	w.speed = speed
	w.moving = true
}

// Stop implements behavior.Mover.
func (w *Walker) Stop() {
	w.moving = false
}

// ReachedDestination implements behavior.Mover.
func (w *Walker) ReachedDestination() bool {
	return !w.moving || geo.Dist(w.pos, w.dest) <= arriveEpsilon
}

// FaceDirection implements behavior.Mover. The kinematic walker turns
// instantly; turnRate is presentation tuning it does not consume.
func (w *Walker) FaceDirection(dir geo.Vec, _ float64) {
	if n := dir.Normalize(); n.Len() > 0 {
		w.forward = n
	}
}

// RandomReachablePoint implements behavior.Mover.
func (w *Walker) RandomReachablePoint(center geo.Vec, radius float64) (geo.Vec, bool) {
	if w.grid == nil {
		return geo.Vec{}, false
	}
	return w.grid.RandomReachablePoint(center, radius)
}

// Tick advances the walker by dt seconds.
func (w *Walker) Tick(dt float64) {
	if !w.moving {
		return
	}
	to := w.dest.Sub(w.pos)
	dist := to.Len()
	if dist <= arriveEpsilon {
		w.pos = w.dest
		w.moving = false
		return
	}
	dir := to.Scale(1 / dist)
	w.forward = dir
	step := w.speed * dt
	if step >= dist {
		w.pos = w.dest
		w.moving = false
		return
	}
	w.pos = w.pos.Add(dir.Scale(step))
}

// Teleport hard-sets the position. Used by spawners and tests.
func (w *Walker) Teleport(pos geo.Vec) {
	w.pos = pos
	w.moving = false
}
