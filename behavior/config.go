package behavior

// Config is the immutable behavior tuning attached to an agent. All
// durations are seconds of simulated time, all distances world units.
type Config struct {
	PatrolSpeed float64
	AlertSpeed  float64
	ChaseSpeed  float64
	SearchSpeed float64
	TurnRate    float64 // degrees per second handed to FaceDirection

	IdleReorient     float64 // seconds between idle look-arounds
	WaypointDwell    float64 // pause at each patrol waypoint
	InvestigateDwell float64 // pause at an investigated noise source

	AttackRange    float64
	CatchRange     float64
	AttackSwing    float64 // duration of one attack animation
	AttackHitDelay float64 // hit-resolution instant into the swing
	AttackCooldown float64 // recovery after a swing before the next action

	SearchRadius      float64 // random points are drawn within this of the last-known position
	SearchPointBudget int     // max points visited before giving up
	SearchPointTime   float64 // per-point time limit
	SearchDuration    float64 // overall search timeout
}

// withDefaults fills zero fields with workable tuning so a sparse archetype
// still produces a functional agent.
func (c Config) withDefaults() Config {
	def := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&c.PatrolSpeed, 1.5)
	def(&c.AlertSpeed, 2.5)
	def(&c.ChaseSpeed, 4)
	def(&c.SearchSpeed, 2)
	def(&c.TurnRate, 180)
	def(&c.IdleReorient, 4)
	def(&c.WaypointDwell, 2)
	def(&c.InvestigateDwell, 3)
	def(&c.AttackRange, 1.5)
	def(&c.CatchRange, 0.8)
	def(&c.AttackSwing, 0.8)
	def(&c.AttackHitDelay, 0.4)
	def(&c.AttackCooldown, 1)
	def(&c.SearchRadius, 5)
	def(&c.SearchPointTime, 4)
	def(&c.SearchDuration, 15)
	if c.SearchPointBudget <= 0 {
		c.SearchPointBudget = 4
	}
	if c.AttackHitDelay > c.AttackSwing {
		c.AttackHitDelay = c.AttackSwing
	}
	return c
}
