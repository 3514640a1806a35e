package agent

import (
	"testing"
	"time"

	"github.com/aposine/nightwatch/behavior"
	"github.com/aposine/nightwatch/geo"
	"github.com/aposine/nightwatch/sense"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBody implements Transform and behavior.Mover for a stationary agent.
type stubBody struct {
	pos geo.Vec
	fwd geo.Vec
}

func (s *stubBody) Position() geo.Vec              { return s.pos }
func (s *stubBody) Forward() geo.Vec               { return s.fwd }
func (s *stubBody) MoveTo(geo.Vec, float64)        {}
func (s *stubBody) Stop()                          {}
func (s *stubBody) ReachedDestination() bool       { return true }
func (s *stubBody) FaceDirection(geo.Vec, float64) {}
func (s *stubBody) RandomReachablePoint(geo.Vec, float64) (geo.Vec, bool) {
	return geo.Vec{}, false
}

type stubTarget struct{ pos geo.Vec }

func (s *stubTarget) Position() geo.Vec { return s.pos }
func (s *stubTarget) BodyPoints() []geo.Vec {
	return []geo.Vec{s.pos.Add(geo.Vec{Y: 1})}
}

func testDeps(target sense.Target) Deps {
	return Deps{
		Name: "guard",
		Config: Config{
			Vision: sense.VisionConfig{
				Range:      10,
				FOVDegrees: 120,
				Interval:   150 * time.Millisecond,
			},
			Suspicion: sense.SuspicionConfig{
				AlertThreshold: 30,
				ChaseThreshold: 60,
				BuildBase:      50,
				DecayRate:      10,
			},
			HearingMultiplier: 1,
			EyeHeight:         1.6,
		},
		Transform: &stubBody{fwd: geo.Vec{X: 1}},
		Mover:     &stubBody{fwd: geo.Vec{X: 1}},
		Target:    target,
	}
}

func TestNew_Validation(t *testing.T) {
	d := testDeps(nil)
	d.Transform = nil
	_, err := New(d)
	assert.Error(t, err)

	d = testDeps(nil)
	d.Mover = nil
	_, err = New(d)
	assert.Error(t, err)

	d = testDeps(nil)
	d.Config.Suspicion.AlertThreshold = 80
	d.Config.Suspicion.ChaseThreshold = 50
	_, err = New(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `agent "guard"`, "errors carry the agent name")
}

func TestTick_RoutesThresholdEvents(t *testing.T) {
	tgt := &stubTarget{pos: geo.Vec{X: 3}}
	a, err := New(testDeps(tgt))
	require.NoError(t, err)
	require.Equal(t, behavior.StateIdle, a.State())

	a.RunPerception(time.Unix(1, 0))

	// visibleCount=1, build 50/s: alert crosses within the first second,
	// chase within the second.
	a.Tick(0.7)
	assert.Equal(t, behavior.StateAlert, a.State())
	a.Tick(0.7)
	assert.Equal(t, behavior.StateChase, a.State())
	assert.InDelta(t, 70, a.Suspicion(), 0.001)
}

func TestRunPerception_FallingEdgeReportsLoss(t *testing.T) {
	tgt := &stubTarget{pos: geo.Vec{X: 3}}
	a, err := New(testDeps(tgt))
	require.NoError(t, err)

	a.AddSuspicion(100)
	require.Equal(t, behavior.StateChase, a.State())

	a.RunPerception(time.Unix(1, 0))
	tgt.pos = geo.Vec{X: 50} // out of range
	a.RunPerception(time.Unix(2, 0))

	assert.Equal(t, behavior.StateSearch, a.State(),
		"visibility dropping while chasing starts a search at the last seen spot")
}

func TestSearch_ReescalatesWhenSuspicionRebuilds(t *testing.T) {
	tgt := &stubTarget{pos: geo.Vec{X: 3}}
	a, err := New(testDeps(tgt))
	require.NoError(t, err)

	a.RunPerception(time.Unix(1, 0))
	a.Tick(0.7)
	a.Tick(0.7) // suspicion 70, chasing
	require.Equal(t, behavior.StateChase, a.State())

	tgt.pos = geo.Vec{X: 50}
	a.RunPerception(time.Unix(2, 0))
	require.Equal(t, behavior.StateSearch, a.State())

	// Decay below the chase threshold while searching.
	a.Tick(1.5) // 70 - 15 = 55 < 60
	require.Equal(t, behavior.StateSearch, a.State())

	// Player steps back into view: the meter rebuilds past the chase
	// threshold and the search escalates straight back to a chase.
	tgt.pos = geo.Vec{X: 3}
	a.RunPerception(time.Unix(3, 0))
	a.Tick(0.5) // 55 + 25 = 80 >= 60
	assert.Equal(t, behavior.StateChase, a.State(),
		"re-crossing the chase threshold during a search resumes the chase")
}

func TestEligible_FollowsSampleInterval(t *testing.T) {
	a, err := New(testDeps(nil))
	require.NoError(t, err)

	now := time.Unix(1, 0)
	assert.True(t, a.Eligible(now))
	a.RunPerception(now)
	assert.False(t, a.Eligible(now.Add(100*time.Millisecond)))
	assert.True(t, a.Eligible(now.Add(150*time.Millisecond)))
}

func TestListener_ForwardsHeardNoise(t *testing.T) {
	a, err := New(testDeps(nil))
	require.NoError(t, err)

	a.Listener().OnNoise(sense.NoiseEvent{Position: geo.Vec{X: 4}, Radius: 6})
	assert.Equal(t, behavior.StateSuspicious, a.State())
}

func TestClearSuspicion_ResetsMeter(t *testing.T) {
	a, err := New(testDeps(nil))
	require.NoError(t, err)
	a.AddSuspicion(50)
	a.ClearSuspicion()
	assert.Zero(t, a.Suspicion())
}

func TestDestroy_RunsTeardownOnceAndSilencesAgent(t *testing.T) {
	tgt := &stubTarget{pos: geo.Vec{X: 3}}
	a, err := New(testDeps(tgt))
	require.NoError(t, err)

	torn := 0
	a.OnTeardown(func() { torn++ })
	a.Destroy()
	a.Destroy()
	assert.Equal(t, 1, torn)

	// A destroyed agent ignores further ticks and perception runs.
	a.RunPerception(time.Unix(1, 0))
	a.Tick(5)
	assert.Equal(t, behavior.StateIdle, a.State())
	assert.Zero(t, a.Suspicion())
}
