package sense

import "github.com/aposine/nightwatch/geo"

// NoiseCategory classifies a noise for listeners that care about its
// origin. The filter itself treats all categories the same.
type NoiseCategory string

const (
	NoiseFootstep NoiseCategory = "footstep"
	NoiseImpact   NoiseCategory = "impact"
	NoiseGadget   NoiseCategory = "gadget"
)

// NoiseEvent is a single broadcast noise. Ephemeral: published once, never
// persisted.
type NoiseEvent struct {
	Position geo.Vec
	Radius   float64
	Category NoiseCategory
}

// Listener filters broadcast noises for one agent. It holds no state of its
// own: a noise inside the scaled radius is forwarded to the hear hook,
// everything else is dropped.
type Listener struct {
	multiplier float64
	position   func() geo.Vec
	hear       func(pos geo.Vec, category NoiseCategory)
}

// NewListener builds a Listener. multiplier scales every event's radius for
// this agent (sharp-eared guards hear beyond the nominal radius); values
// <= 0 fall back to 1.
func NewListener(multiplier float64, position func() geo.Vec, hear func(geo.Vec, NoiseCategory)) *Listener {
	if multiplier <= 0 {
		multiplier = 1
	}
	return &Listener{multiplier: multiplier, position: position, hear: hear}
}

// OnNoise applies the radius gate and forwards the event on a pass.
func (l *Listener) OnNoise(ev NoiseEvent) {
	if l.position == nil || l.hear == nil {
		return
	}
	if geo.Dist(l.position(), ev.Position) > ev.Radius*l.multiplier {
		return
	}
	l.hear(ev.Position, ev.Category)
}
