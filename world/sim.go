package world

import (
	"sync"
	"time"

	"github.com/aposine/nightwatch/agent"
	"github.com/aposine/nightwatch/sense"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// simEpoch anchors the logical clock. Wall time never drives the
// simulation; Step advances the clock by exactly dt.
var simEpoch = time.Unix(0, 0)

type simEntry struct {
	agent  *agent.Agent
	walker *Walker // nil when movement is external
	dead   bool
}

// Simulation is the single-threaded cooperative tick container: one logical
// clock, all agents updated serially within a Step. The detection scheduler
// and the noise bus are explicit service objects owned here, created at
// simulation start and torn down with it.
type Simulation struct {
	Detector *sense.BatchScheduler
	Noise    *NoiseBus

	mu      sync.Mutex
	entries []*simEntry
	byID    map[uuid.UUID]*simEntry
	clock   time.Time
	logger  *zap.Logger
}

// NewSimulation creates an empty simulation. batchSize bounds perception
// evaluations per Step.
func NewSimulation(batchSize int, logger *zap.Logger) *Simulation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulation{
		Detector: sense.NewBatchScheduler(batchSize, logger),
		Noise:    NewNoiseBus(logger),
		byID:     make(map[uuid.UUID]*simEntry),
		clock:    simEpoch,
		logger:   logger,
	}
}

// Now returns the logical clock.
func (s *Simulation) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// Add registers an agent (and its walker, if the simulation drives the
// movement). Registration wires the detection scheduler and the noise bus
// and arms the matching teardown hooks on the agent.
func (s *Simulation) Add(a *agent.Agent, w *Walker) {
	s.Detector.Register(a)
	cancelNoise := s.Noise.Subscribe(a.Listener().OnNoise)

	e := &simEntry{agent: a, walker: w}
	a.OnTeardown(func() { s.Detector.Unregister(a) })
	a.OnTeardown(cancelNoise)
	a.OnTeardown(func() { s.drop(a.ID) })

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.byID[a.ID] = e
	s.mu.Unlock()

	s.logger.Info("agent added",
		zap.String("agent", a.ID.String()),
		zap.String("name", a.Name))
}

// Remove destroys one agent: scheduler deregistration, noise
// unsubscription, and removal from the tick list. Safe during a Step; the
// entry is tombstoned and swept after the pass.
func (s *Simulation) Remove(a *agent.Agent) {
	a.Destroy()
}

// drop tombstones the entry for id.
func (s *Simulation) drop(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		e.dead = true
		delete(s.byID, id)
	}
}

// AgentCount returns the number of live agents.
func (s *Simulation) AgentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Agents returns a snapshot of the live agents.
func (s *Simulation) Agents() []*agent.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*agent.Agent, 0, len(s.byID))
	for _, e := range s.entries {
		if !e.dead {
			out = append(out, e.agent)
		}
	}
	return out
}

// Step advances the simulation by dt seconds: clock, one detection
// scheduler tick, then every live agent serially (mover first, so the
// behavior update sees this tick's position).
func (s *Simulation) Step(dt float64) {
	s.mu.Lock()
	s.clock = s.clock.Add(time.Duration(dt * float64(time.Second)))
	now := s.clock
	snapshot := make([]*simEntry, len(s.entries))
	copy(snapshot, s.entries)
	s.mu.Unlock()

	s.Detector.Tick(now)

	for _, e := range snapshot {
		if e.dead {
			continue
		}
		if e.walker != nil {
			e.walker.Tick(dt)
		}
		e.agent.Tick(dt)
	}

	s.sweep()
}

// Shutdown destroys every agent and detaches all shared structures.
func (s *Simulation) Shutdown() {
	for _, a := range s.Agents() {
		a.Destroy()
	}
	s.sweep()
	s.logger.Info("simulation shut down")
}

func (s *Simulation) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.entries[:0]
	for _, e := range s.entries {
		if !e.dead {
			live = append(live, e)
		}
	}
	s.entries = live
}
