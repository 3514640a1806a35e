package behavior

import (
	"github.com/aposine/nightwatch/geo"
	"github.com/google/uuid"
)

// Mover is the movement service a machine issues commands to. Pathfinding
// and locomotion live behind this interface; the machine never implements
// them.
type Mover interface {
	MoveTo(pos geo.Vec, speed float64)
	Stop()
	ReachedDestination() bool
	FaceDirection(dir geo.Vec, turnRate float64)
	// RandomReachablePoint returns a navigable point within radius of
	// center. ok=false means no point was found.
	RandomReachablePoint(center geo.Vec, radius float64) (pos geo.Vec, ok bool)
}

// Animator receives fire-and-forget presentation commands. No feedback is
// consumed.
type Animator interface {
	SetMoveSpeed(speed float64)
	SetAlertPosture(alert bool)
	PlayAttack()
	PlayCatch()
}

// Encounter receives combat outcomes: landed attack hits and the terminal
// catch. Caught ends the encounter; game-level consequences are decided
// outside the core.
type Encounter interface {
	AttackLanded(agentID uuid.UUID)
	Caught(agentID uuid.UUID)
}

// Route is an ordered patrol path. Loop wraps from the last waypoint to the
// first; otherwise traversal ping-pongs, reversing at the ends. Facings is
// optional; when present and aligned with Waypoints, the agent turns to the
// waypoint's facing while dwelling.
type Route struct {
	Waypoints []geo.Vec
	Loop      bool
	Facings   []geo.Vec
}

// Usable reports whether the route can drive a patrol. Routes with fewer
// than two waypoints fall back to Idle.
func (r *Route) Usable() bool {
	return r != nil && len(r.Waypoints) >= 2
}

// NextWaypoint advances a route cursor. idx is the current waypoint, dir the
// travel direction (+1 or -1, meaningful for ping-pong only), n the route
// length. Loop routes wrap to zero; ping-pong routes reverse at either end.
func NextWaypoint(idx, dir, n int, loop bool) (nextIdx, nextDir int) {
	if n < 2 {
		return 0, 1
	}
	if loop {
		return (idx + 1) % n, 1
	}
	if dir >= 0 {
		dir = 1
	} else {
		dir = -1
	}
	next := idx + dir
	if next >= n {
		return n - 2, -1
	}
	if next < 0 {
		return 1, 1
	}
	return next, dir
}

// View is the machine's per-tick picture of the player, derived by the
// agent from its perception sample and the live player handle.
type View struct {
	PlayerKnown   bool    // a player entity exists this tick
	PlayerVisible bool    // latest perception sample saw the player
	PlayerPos     geo.Vec // live position, valid when PlayerKnown
	PlayerDir     geo.Vec // direction from the agent to the player
	PlayerDist    float64 // distance to the agent, valid when PlayerKnown
}

// nopAnimator is used when no presentation layer is attached.
type nopAnimator struct{}

func (nopAnimator) SetMoveSpeed(float64)   {}
func (nopAnimator) SetAlertPosture(bool)   {}
func (nopAnimator) PlayAttack()            {}
func (nopAnimator) PlayCatch()             {}

// nopEncounter is used when no encounter sink is attached.
type nopEncounter struct{}

func (nopEncounter) AttackLanded(uuid.UUID) {}
func (nopEncounter) Caught(uuid.UUID)       {}
