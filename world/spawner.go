package world

import (
	"fmt"

	"github.com/aposine/nightwatch/agent"
	"github.com/aposine/nightwatch/behavior"
	"github.com/aposine/nightwatch/geo"
	"github.com/aposine/nightwatch/sense"
	"go.uber.org/zap"
)

// SpawnDef binds an archetype and an optional patrol route to a spawn
// position.
type SpawnDef struct {
	Name      string
	Archetype string
	Route     string // empty: no route, agent idles
	Pos       geo.Vec
}

// Spawner creates agents from spawn definitions and registers them with a
// simulation. A definition that fails validation disables only that agent;
// the rest of the batch spawns normally.
type Spawner struct {
	sim        *Simulation
	grid       *Grid
	target     sense.Target
	encounter  behavior.Encounter
	archetypes map[string]agent.Config
	routes     map[string]*behavior.Route
	logger     *zap.Logger
}

// NewSpawner wires a Spawner. target and encounter may be nil.
func NewSpawner(sim *Simulation, grid *Grid, target sense.Target, encounter behavior.Encounter,
	archetypes map[string]agent.Config, routes map[string]*behavior.Route, logger *zap.Logger) *Spawner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spawner{
		sim:        sim,
		grid:       grid,
		target:     target,
		encounter:  encounter,
		archetypes: archetypes,
		routes:     routes,
		logger:     logger,
	}
}

// SpawnAll creates every definition, returning the number of live agents
// spawned.
func (sp *Spawner) SpawnAll(defs []SpawnDef) int {
	spawned := 0
	for _, def := range defs {
		if _, err := sp.Spawn(def); err != nil {
			sp.logger.Warn("agent disabled",
				zap.String("name", def.Name),
				zap.Error(err))
			continue
		}
		spawned++
	}
	sp.logger.Info("spawn complete",
		zap.Int("requested", len(defs)),
		zap.Int("spawned", spawned))
	return spawned
}

// Spawn creates and registers one agent.
func (sp *Spawner) Spawn(def SpawnDef) (*agent.Agent, error) {
	cfg, ok := sp.archetypes[def.Archetype]
	if !ok {
		return nil, fmt.Errorf("unknown archetype %q", def.Archetype)
	}
	var route *behavior.Route
	if def.Route != "" {
		route = sp.routes[def.Route] // missing route: idle fallback inside the machine
		if route == nil {
			sp.logger.Warn("unknown patrol route, agent will idle",
				zap.String("name", def.Name),
				zap.String("route", def.Route))
		}
	}

	w := NewWalker(def.Pos, sp.grid)
	a, err := agent.New(agent.Deps{
		Name:      def.Name,
		Config:    cfg,
		Route:     route,
		Transform: w,
		Mover:     w,
		Encounter: sp.encounter,
		Target:    sp.target,
		World:     sp.grid,
		Logger:    sp.logger,
	})
	if err != nil {
		return nil, err
	}
	sp.sim.Add(a, w)
	return a, nil
}
