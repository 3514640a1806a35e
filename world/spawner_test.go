package world

import (
	"testing"

	"github.com/aposine/nightwatch/agent"
	"github.com/aposine/nightwatch/behavior"
	"github.com/aposine/nightwatch/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpawner(sim *Simulation) *Spawner {
	bad := guardConfig()
	bad.Suspicion.AlertThreshold = 90
	bad.Suspicion.ChaseThreshold = 40

	archetypes := map[string]agent.Config{
		"guard":  guardConfig(),
		"broken": bad,
	}
	routes := map[string]*behavior.Route{
		"loop": {Loop: true, Waypoints: []geo.Vec{{X: 0}, {X: 5}}},
	}
	return NewSpawner(sim, NewGrid(nil), nil, nil, archetypes, routes, nil)
}

func TestSpawn_RegistersAgent(t *testing.T) {
	sim := NewSimulation(4, nil)
	sp := testSpawner(sim)

	a, err := sp.Spawn(SpawnDef{Name: "g1", Archetype: "guard", Route: "loop", Pos: geo.Vec{X: 2, Z: 3}})
	require.NoError(t, err)
	assert.Equal(t, geo.Vec{X: 2, Z: 3}, a.Position())
	assert.Equal(t, 1, sim.AgentCount())
	assert.Equal(t, 1, sim.Detector.Len())
}

func TestSpawn_UnknownArchetypeFails(t *testing.T) {
	sim := NewSimulation(4, nil)
	sp := testSpawner(sim)

	_, err := sp.Spawn(SpawnDef{Name: "g1", Archetype: "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown archetype")
	assert.Zero(t, sim.AgentCount())
}

func TestSpawn_BadConfigDisablesAgent(t *testing.T) {
	sim := NewSimulation(4, nil)
	sp := testSpawner(sim)

	_, err := sp.Spawn(SpawnDef{Name: "g1", Archetype: "broken"})
	assert.Error(t, err)
	assert.Zero(t, sim.AgentCount(), "a rejected agent never joins the simulation")
}

func TestSpawn_UnknownRouteIdles(t *testing.T) {
	sim := NewSimulation(4, nil)
	sp := testSpawner(sim)

	a, err := sp.Spawn(SpawnDef{Name: "g1", Archetype: "guard", Route: "nope"})
	require.NoError(t, err)
	assert.Equal(t, behavior.StateIdle, a.State())

	sim.Step(0.05)
	assert.Equal(t, behavior.StateIdle, a.State(), "no route means the agent holds position")
}

func TestSpawnAll_SkipsFailuresAndCountsRest(t *testing.T) {
	sim := NewSimulation(4, nil)
	sp := testSpawner(sim)

	n := sp.SpawnAll([]SpawnDef{
		{Name: "a", Archetype: "guard"},
		{Name: "b", Archetype: "ghost"},
		{Name: "c", Archetype: "broken"},
		{Name: "d", Archetype: "guard", Route: "loop"},
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, sim.AgentCount())
}
