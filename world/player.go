package world

import (
	"sync"

	"github.com/aposine/nightwatch/geo"
)

// defaultBodyOffsets are the tracked body points relative to the player's
// ground position: feet, knees, torso, head.
var defaultBodyOffsets = []geo.Vec{
	{Y: 0.1},
	{Y: 0.6},
	{Y: 1.2},
	{Y: 1.7},
}

// Player is the tracked target of every agent. It implements sense.Target
// with four body points so partial cover yields partial visibility.
type Player struct {
	mu      sync.Mutex
	pos     geo.Vec
	offsets []geo.Vec
}

// NewPlayer places a player at pos with the default body points.
func NewPlayer(pos geo.Vec) *Player {
	return &Player{pos: pos, offsets: defaultBodyOffsets}
}

// Position implements sense.Target.
func (p *Player) Position() geo.Vec {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// SetPosition moves the player.
func (p *Player) SetPosition(pos geo.Vec) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
}

// BodyPoints implements sense.Target.
func (p *Player) BodyPoints() []geo.Vec {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]geo.Vec, len(p.offsets))
	for i, off := range p.offsets {
		out[i] = p.pos.Add(off)
	}
	return out
}
