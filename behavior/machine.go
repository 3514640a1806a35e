package behavior

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aposine/nightwatch/geo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Machine is the behavior state machine of one agent. It owns the state tag
// plus the scratch data of every state in a single struct; the agent is
// referenced by ID only, never by back-pointer. Only the active state's
// logic runs per tick.
type Machine struct {
	id     uuid.UUID
	cfg    Config
	route  *Route
	mover  Mover
	anim   Animator
	enc    Encounter
	logger *zap.Logger

	state State

	// Idle
	idleTimer float64

	// Patrol
	patrolIdx  int
	patrolDir  int
	dwellLeft  float64
	dwelling   bool
	patrolInit bool

	// Alert / Chase / Search shared memory
	lastKnown    geo.Vec
	hasLastKnown bool

	// Suspicious
	noisePos    geo.Vec
	investigate float64
	atNoise     bool

	// Search
	searchLeft    float64 // overall timeout countdown
	searchPoints  int     // points remaining in the budget
	pointTimer    float64
	searchHasGoal bool

	// Attack
	attackTimer float64
	hitResolved bool

	caught bool
}

// NewMachine builds a machine in Idle. A route with fewer than two
// waypoints is discarded with a warning and the agent stays Idle; a missing
// mover is an initialization error (the caller disables the agent).
func NewMachine(id uuid.UUID, cfg Config, route *Route, mover Mover, anim Animator, enc Encounter, logger *zap.Logger) (*Machine, error) {
	if mover == nil {
		return nil, fmt.Errorf("behavior: mover is required")
	}
	if anim == nil {
		anim = nopAnimator{}
	}
	if enc == nil {
		enc = nopEncounter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if route != nil && !route.Usable() {
		logger.Warn("patrol route has fewer than 2 waypoints, falling back to idle",
			zap.String("agent", id.String()),
			zap.Int("waypoints", len(route.Waypoints)))
		route = nil
	}
	m := &Machine{
		id:        id,
		cfg:       cfg.withDefaults(),
		route:     route,
		mover:     mover,
		anim:      anim,
		enc:       enc,
		logger:    logger,
		state:     StateIdle,
		patrolDir: 1,
	}
	m.enterIdle()
	return m, nil
}

// State returns the active state tag.
func (m *Machine) State() State {
	return m.state
}

// LastKnown returns the remembered player position, if any.
func (m *Machine) LastKnown() (geo.Vec, bool) {
	return m.lastKnown, m.hasLastKnown
}

// ---- External hooks ----

// OnPlayerDetected handles the alert-threshold crossing. pos is where the
// player was seen.
func (m *Machine) OnPlayerDetected(pos geo.Vec) {
	m.apply(evAlertTriggered, pos)
}

// OnChaseTriggered handles the chase-threshold crossing.
func (m *Machine) OnChaseTriggered(pos geo.Vec) {
	m.apply(evChaseTriggered, pos)
}

// OnSuspicionCleared handles suspicion decaying back to zero.
func (m *Machine) OnSuspicionCleared() {
	m.apply(evSuspicionCleared, geo.Vec{})
}

// OnPlayerLost handles visual contact dropping while engaged.
func (m *Machine) OnPlayerLost(lastPos geo.Vec) {
	m.apply(evPlayerLost, lastPos)
}

// OnNoiseHeard handles a noise passed through by the hearing filter.
func (m *Machine) OnNoiseHeard(pos geo.Vec) {
	m.apply(evNoiseHeard, pos)
}

// apply is the transition function keyed by (state, event). Pairs not
// listed here are ignored; Catch ignores everything.
func (m *Machine) apply(ev event, pos geo.Vec) {
	if m.state == StateCatch {
		return
	}
	switch ev {
	case evAlertTriggered:
		m.lastKnown, m.hasLastKnown = pos, true
		switch m.state {
		case StateIdle, StatePatrol, StateSuspicious:
			m.transition(StateAlert)
		case StateAlert:
			// Refresh the investigation target.
			m.mover.MoveTo(m.lastKnown, m.cfg.AlertSpeed)
		}
	case evChaseTriggered:
		if pos != (geo.Vec{}) {
			m.lastKnown, m.hasLastKnown = pos, true
		}
		switch m.state {
		case StateIdle, StatePatrol, StateSuspicious, StateAlert, StateSearch:
			m.transition(StateChase)
		}
	case evSuspicionCleared:
		if m.state == StateAlert {
			m.hasLastKnown = false
			m.goHome()
		}
	case evPlayerLost:
		if m.state == StateChase {
			if pos != (geo.Vec{}) {
				m.lastKnown, m.hasLastKnown = pos, true
			}
			m.transition(StateSearch)
		}
	case evNoiseHeard:
		switch m.state {
		case StateIdle, StatePatrol:
			m.noisePos = pos
			m.transition(StateSuspicious)
		case StateSuspicious:
			m.noisePos = pos
			m.atNoise = false
			m.mover.MoveTo(m.noisePos, m.cfg.AlertSpeed)
		case StateAlert:
			m.lastKnown, m.hasLastKnown = pos, true
			m.mover.MoveTo(m.lastKnown, m.cfg.AlertSpeed)
		}
	}
}

// Update runs one tick of the active state. dt is seconds of simulated
// time.
func (m *Machine) Update(dt float64, view View) {
	if m.state == StateCatch || dt <= 0 {
		return
	}

	// Instant-catch rule: the one transition allowed to skip the table.
	// Requires awareness — the guard is engaged or currently sees the
	// player; a player brushing past an oblivious guard is not caught.
	if view.PlayerKnown && view.PlayerDist <= m.cfg.CatchRange {
		if m.state == StateChase || m.state == StateAttack || view.PlayerVisible {
			m.transition(StateCatch)
			return
		}
	}

	switch m.state {
	case StateIdle:
		m.updateIdle(dt)
	case StatePatrol:
		m.updatePatrol(dt)
	case StateSuspicious:
		m.updateSuspicious(dt)
	case StateAlert:
		m.updateAlert(dt)
	case StateSearch:
		m.updateSearch(dt)
	case StateChase:
		m.updateChase(dt, view)
	case StateAttack:
		m.updateAttack(dt, view)
	}
}

// transition runs the exit hook of the old state and the enter hook of the
// new one.
func (m *Machine) transition(to State) {
	if to == m.state {
		return
	}
	from := m.state
	m.exit(from)
	m.state = to
	m.logger.Debug("state transition",
		zap.String("agent", m.id.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()))
	switch to {
	case StateIdle:
		m.enterIdle()
	case StatePatrol:
		m.enterPatrol()
	case StateSuspicious:
		m.enterSuspicious()
	case StateAlert:
		m.enterAlert()
	case StateSearch:
		m.enterSearch()
	case StateChase:
		m.enterChase()
	case StateAttack:
		m.enterAttack()
	case StateCatch:
		m.enterCatch()
	}
}

// exit clears per-state scratch so a re-entered state starts fresh.
func (m *Machine) exit(s State) {
	switch s {
	case StatePatrol:
		m.dwelling = false
	case StateSuspicious:
		m.atNoise = false
	case StateSearch:
		m.searchHasGoal = false
	case StateAttack:
		m.attackTimer = 0
		m.hitResolved = false
	}
}

// goHome returns to Patrol when a usable route exists, Idle otherwise.
func (m *Machine) goHome() {
	if m.route.Usable() {
		m.transition(StatePatrol)
	} else {
		m.transition(StateIdle)
	}
}

// ---- Idle ----

func (m *Machine) enterIdle() {
	m.mover.Stop()
	m.anim.SetMoveSpeed(0)
	m.anim.SetAlertPosture(false)
	m.idleTimer = m.cfg.IdleReorient
}

func (m *Machine) updateIdle(dt float64) {
	if m.route.Usable() {
		m.transition(StatePatrol)
		return
	}
	m.idleTimer -= dt
	if m.idleTimer <= 0 {
		m.idleTimer = m.cfg.IdleReorient
		m.mover.FaceDirection(randomHeading(), m.cfg.TurnRate)
	}
}

// ---- Patrol ----

func (m *Machine) enterPatrol() {
	m.anim.SetAlertPosture(false)
	m.anim.SetMoveSpeed(m.cfg.PatrolSpeed)
	m.dwelling = false
	if !m.patrolInit {
		m.patrolInit = true
		m.patrolIdx = 0
		m.patrolDir = 1
	}
	m.mover.MoveTo(m.route.Waypoints[m.patrolIdx], m.cfg.PatrolSpeed)
}

func (m *Machine) updatePatrol(dt float64) {
	if !m.route.Usable() {
		m.transition(StateIdle)
		return
	}
	if m.dwelling {
		m.dwellLeft -= dt
		if m.dwellLeft > 0 {
			return
		}
		m.dwelling = false
		m.patrolIdx, m.patrolDir = NextWaypoint(m.patrolIdx, m.patrolDir, len(m.route.Waypoints), m.route.Loop)
		m.mover.MoveTo(m.route.Waypoints[m.patrolIdx], m.cfg.PatrolSpeed)
		return
	}
	if m.mover.ReachedDestination() {
		m.dwelling = true
		m.dwellLeft = m.cfg.WaypointDwell
		if f, ok := m.waypointFacing(m.patrolIdx); ok {
			m.mover.FaceDirection(f, m.cfg.TurnRate)
		}
	}
}

func (m *Machine) waypointFacing(idx int) (geo.Vec, bool) {
	if m.route == nil || idx >= len(m.route.Facings) {
		return geo.Vec{}, false
	}
	f := m.route.Facings[idx]
	if f.Len() < 1e-9 {
		return geo.Vec{}, false
	}
	return f, true
}

// ---- Suspicious ----

func (m *Machine) enterSuspicious() {
	m.anim.SetAlertPosture(false)
	m.anim.SetMoveSpeed(m.cfg.AlertSpeed)
	m.atNoise = false
	m.mover.MoveTo(m.noisePos, m.cfg.AlertSpeed)
}

func (m *Machine) updateSuspicious(dt float64) {
	if !m.atNoise {
		if m.mover.ReachedDestination() {
			m.atNoise = true
			m.investigate = m.cfg.InvestigateDwell
			m.mover.Stop()
		}
		return
	}
	m.investigate -= dt
	if m.investigate <= 0 {
		m.goHome()
	}
}

// ---- Alert ----

func (m *Machine) enterAlert() {
	m.anim.SetAlertPosture(true)
	m.anim.SetMoveSpeed(m.cfg.AlertSpeed)
	if m.hasLastKnown {
		m.mover.MoveTo(m.lastKnown, m.cfg.AlertSpeed)
	}
}

func (m *Machine) updateAlert(dt float64) {
	// Hold at the last-known position scanning until suspicion either
	// escalates to chase or decays to zero.
	if m.hasLastKnown && m.mover.ReachedDestination() {
		m.mover.Stop()
		m.idleTimer -= dt
		if m.idleTimer <= 0 {
			m.idleTimer = m.cfg.IdleReorient / 2
			m.mover.FaceDirection(randomHeading(), m.cfg.TurnRate)
		}
	}
}

// ---- Search ----

func (m *Machine) enterSearch() {
	m.anim.SetAlertPosture(true)
	m.anim.SetMoveSpeed(m.cfg.SearchSpeed)
	m.searchLeft = m.cfg.SearchDuration
	m.searchPoints = m.cfg.SearchPointBudget
	m.searchHasGoal = false
}

func (m *Machine) updateSearch(dt float64) {
	m.searchLeft -= dt
	if m.searchLeft <= 0 {
		m.giveUpSearch()
		return
	}
	if m.searchHasGoal {
		m.pointTimer -= dt
		if m.pointTimer > 0 && !m.mover.ReachedDestination() {
			return
		}
		m.searchHasGoal = false
	}
	if m.searchPoints <= 0 {
		m.giveUpSearch()
		return
	}
	m.searchPoints--
	center := m.lastKnown
	goal, ok := m.mover.RandomReachablePoint(center, m.cfg.SearchRadius)
	if !ok {
		// No reachable point around the last-known position: sweep the
		// center itself.
		goal = center
	}
	m.searchHasGoal = true
	m.pointTimer = m.cfg.SearchPointTime
	m.mover.MoveTo(goal, m.cfg.SearchSpeed)
}

func (m *Machine) giveUpSearch() {
	m.hasLastKnown = false
	m.goHome()
}

// ---- Chase ----

func (m *Machine) enterChase() {
	m.anim.SetAlertPosture(true)
	m.anim.SetMoveSpeed(m.cfg.ChaseSpeed)
	if m.hasLastKnown {
		m.mover.MoveTo(m.lastKnown, m.cfg.ChaseSpeed)
	}
}

func (m *Machine) updateChase(dt float64, view View) {
	if !view.PlayerVisible {
		m.apply(evPlayerLost, geo.Vec{})
		return
	}
	m.lastKnown, m.hasLastKnown = view.PlayerPos, true
	if view.PlayerDist <= m.cfg.AttackRange {
		m.transition(StateAttack)
		return
	}
	m.mover.MoveTo(view.PlayerPos, m.cfg.ChaseSpeed)
}

// ---- Attack ----

func (m *Machine) enterAttack() {
	m.mover.Stop()
	m.anim.SetMoveSpeed(0)
	m.attackTimer = 0
	m.hitResolved = false
	m.anim.PlayAttack()
}

func (m *Machine) updateAttack(dt float64, view View) {
	if view.PlayerKnown {
		m.mover.FaceDirection(view.PlayerDir, m.cfg.TurnRate)
	}
	m.attackTimer += dt

	// Hit resolution happens once, at a fixed instant into the swing.
	if !m.hitResolved && m.attackTimer >= m.cfg.AttackHitDelay {
		m.hitResolved = true
		if view.PlayerKnown && view.PlayerDist <= m.cfg.AttackRange {
			m.enc.AttackLanded(m.id)
		}
	}

	if m.attackTimer < m.cfg.AttackSwing+m.cfg.AttackCooldown {
		return
	}

	// Swing and cooldown complete: re-attack in range, otherwise resume
	// the chase.
	if view.PlayerKnown && view.PlayerDist <= m.cfg.AttackRange {
		m.attackTimer = 0
		m.hitResolved = false
		m.anim.PlayAttack()
		return
	}
	m.transition(StateChase)
}

// ---- Catch ----

func (m *Machine) enterCatch() {
	m.mover.Stop()
	m.anim.SetMoveSpeed(0)
	m.anim.PlayCatch()
	if !m.caught {
		m.caught = true
		m.logger.Info("player caught", zap.String("agent", m.id.String()))
		m.enc.Caught(m.id)
	}
}

// randomHeading returns a random horizontal unit direction.
func randomHeading() geo.Vec {
	a := rand.Float64() * 2 * math.Pi
	return geo.Vec{X: math.Cos(a), Z: math.Sin(a)}
}
