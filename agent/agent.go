package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/aposine/nightwatch/behavior"
	"github.com/aposine/nightwatch/geo"
	"github.com/aposine/nightwatch/sense"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transform exposes the agent's own pose. Implemented by the movement
// layer; the agent never mutates it directly.
type Transform interface {
	Position() geo.Vec
	Forward() geo.Vec
}

// Config is the full immutable configuration record of one agent, attached
// at spawn and never mutated afterwards.
type Config struct {
	Vision            sense.VisionConfig
	Suspicion         sense.SuspicionConfig
	Behavior          behavior.Config
	HearingMultiplier float64
	EyeHeight         float64
}

// Deps are the collaborators an agent consumes. Transform and Mover are
// required; Animator, Encounter, Target and World may be nil.
type Deps struct {
	Name      string
	Config    Config
	Route     *behavior.Route
	Transform Transform
	Mover     behavior.Mover
	Animator  behavior.Animator
	Encounter behavior.Encounter
	Target    sense.Target
	World     sense.Obstructer
	Logger    *zap.Logger
}

// Agent is one simulated adversary. It owns exactly one behavior machine,
// one suspicion accumulator, one vision sampler and one hearing filter. All
// of its state is exclusively owned: agents never touch each other.
type Agent struct {
	ID   uuid.UUID
	Name string

	cfg       Config
	transform Transform
	target    sense.Target
	logger    *zap.Logger

	sampler  *sense.Sampler
	susp     *sense.Accumulator
	machine  *behavior.Machine
	listener *sense.Listener

	lastSample sense.Sample
	wasVisible bool

	mu        sync.Mutex
	teardown  []func()
	destroyed bool
}

// New validates the configuration and wires the agent's internals. A
// validation failure (missing collaborator, bad thresholds) returns an
// error; the caller logs it and leaves the agent out of the simulation, per
// the local-failure policy.
func New(d Deps) (*Agent, error) {
	if d.Transform == nil {
		return nil, fmt.Errorf("agent %q: transform is required", d.Name)
	}
	if d.Mover == nil {
		return nil, fmt.Errorf("agent %q: mover is required", d.Name)
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	susp, err := sense.NewAccumulator(d.Config.Suspicion)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", d.Name, err)
	}

	id := uuid.New()
	machine, err := behavior.NewMachine(id, d.Config.Behavior, d.Route, d.Mover, d.Animator, d.Encounter, logger)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", d.Name, err)
	}

	a := &Agent{
		ID:        id,
		Name:      d.Name,
		cfg:       d.Config,
		transform: d.Transform,
		target:    d.Target,
		logger:    logger,
		sampler:   sense.NewSampler(d.Config.Vision, d.World),
		susp:      susp,
		machine:   machine,
	}
	a.listener = sense.NewListener(d.Config.HearingMultiplier,
		a.Position,
		func(pos geo.Vec, _ sense.NoiseCategory) { a.machine.OnNoiseHeard(pos) })
	return a, nil
}

// Position returns the agent's current world position.
func (a *Agent) Position() geo.Vec {
	return a.transform.Position()
}

// State returns the active behavior state.
func (a *Agent) State() behavior.State {
	return a.machine.State()
}

// Suspicion returns the current suspicion value.
func (a *Agent) Suspicion() float64 {
	return a.susp.Value()
}

// Listener returns the hearing filter for noise-bus subscription.
func (a *Agent) Listener() *sense.Listener {
	return a.listener
}

// Eligible implements sense.PerceptionRunner.
func (a *Agent) Eligible(now time.Time) bool {
	return a.sampler.Eligible(now)
}

// alive reports whether Destroy has not run yet.
func (a *Agent) alive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.destroyed
}

// RunPerception implements sense.PerceptionRunner. Only the detection
// scheduler calls this; the agent never samples on its own.
func (a *Agent) RunPerception(now time.Time) {
	if !a.alive() {
		return
	}
	a.sampler.MarkRun(now)
	eye := a.transform.Position().Add(geo.Vec{Y: a.cfg.EyeHeight})
	a.lastSample = a.sampler.Sample(eye, a.transform.Forward(), a.target)

	if a.wasVisible && !a.lastSample.AnyVisible {
		a.machine.OnPlayerLost(a.lastSample.LastVisiblePos)
	}
	a.wasVisible = a.lastSample.AnyVisible
}

// Tick advances the agent by dt seconds of simulated time: suspicion
// integration, event routing, then one behavior update.
func (a *Agent) Tick(dt float64) {
	if !a.alive() {
		return
	}
	a.route(a.susp.Tick(a.lastSample, dt))
	a.machine.Update(dt, a.view())
}

// AddSuspicion applies a direct external suspicion bump (scripted one-shot
// detection) and routes any threshold events.
func (a *Agent) AddSuspicion(amount float64) {
	a.route(a.susp.Add(amount))
}

// ClearSuspicion resets the meter and re-arms its threshold edges.
func (a *Agent) ClearSuspicion() {
	a.susp.Clear()
}

// route forwards accumulator events to the machine in firing order.
func (a *Agent) route(events []sense.Event) {
	for _, ev := range events {
		switch ev {
		case sense.EventAlertTriggered:
			a.machine.OnPlayerDetected(a.lastSample.LastVisiblePos)
		case sense.EventChaseTriggered:
			a.machine.OnChaseTriggered(a.lastSample.LastVisiblePos)
		case sense.EventSuspicionCleared:
			a.machine.OnSuspicionCleared()
		}
	}
}

// view derives the machine's per-tick picture of the player.
func (a *Agent) view() behavior.View {
	v := behavior.View{PlayerVisible: a.lastSample.AnyVisible}
	if a.target == nil {
		return v
	}
	pos := a.target.Position()
	self := a.transform.Position()
	v.PlayerKnown = true
	v.PlayerPos = pos
	v.PlayerDir = pos.Sub(self).Normalize()
	v.PlayerDist = geo.Dist(self, pos)
	return v
}

// OnTeardown registers a cleanup hook (scheduler deregistration, noise
// unsubscription) run exactly once by Destroy.
func (a *Agent) OnTeardown(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.teardown = append(a.teardown, fn)
}

// Destroy detaches the agent from every shared structure. Idempotent; after
// Destroy no scheduler or noise bus holds a reference to the agent.
func (a *Agent) Destroy() {
	a.mu.Lock()
	if a.destroyed {
		a.mu.Unlock()
		return
	}
	a.destroyed = true
	fns := a.teardown
	a.teardown = nil
	a.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	a.logger.Debug("agent destroyed", zap.String("agent", a.ID.String()), zap.String("name", a.Name))
}
