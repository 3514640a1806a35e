package sense

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countRunner struct {
	runs     int
	eligible bool
	onRun    func()
}

func (c *countRunner) Eligible(time.Time) bool { return c.eligible }
func (c *countRunner) RunPerception(time.Time) {
	c.runs++
	if c.onRun != nil {
		c.onRun()
	}
}

func newRunners(n int) []*countRunner {
	out := make([]*countRunner, n)
	for i := range out {
		out[i] = &countRunner{eligible: true}
	}
	return out
}

func TestTick_BatchSizeBound(t *testing.T) {
	b := NewBatchScheduler(3, nil)
	runners := newRunners(10)
	for _, r := range runners {
		b.Register(r)
	}

	ran := b.Tick(time.Unix(1, 0))
	assert.Equal(t, 3, ran, "a tick must run at most batchSize samplers")

	total := 0
	for _, r := range runners {
		total += r.runs
	}
	assert.Equal(t, 3, total)
}

func TestTick_RoundRobinCoversAll(t *testing.T) {
	b := NewBatchScheduler(3, nil)
	runners := newRunners(9)
	for _, r := range runners {
		b.Register(r)
	}
	for i := 0; i < 3; i++ {
		b.Tick(time.Unix(int64(i), 0))
	}
	for i, r := range runners {
		assert.Equal(t, 1, r.runs, "runner %d must have run exactly once over a full rotation", i)
	}
}

func TestTick_SkipsIneligible(t *testing.T) {
	b := NewBatchScheduler(2, nil)
	idle := &countRunner{eligible: false}
	busy := &countRunner{eligible: true}
	b.Register(idle)
	b.Register(busy)

	ran := b.Tick(time.Unix(1, 0))
	assert.Equal(t, 1, ran)
	assert.Zero(t, idle.runs)
	assert.Equal(t, 1, busy.runs)
}

func TestRegister_Idempotent(t *testing.T) {
	b := NewBatchScheduler(8, nil)
	r := &countRunner{eligible: true}
	b.Register(r)
	b.Register(r)
	assert.Equal(t, 1, b.Len())

	b.Tick(time.Unix(1, 0))
	assert.Equal(t, 1, r.runs)
}

func TestUnregister_Idempotent(t *testing.T) {
	b := NewBatchScheduler(8, nil)
	r := &countRunner{eligible: true}
	b.Register(r)
	b.Unregister(r)
	b.Unregister(r)
	assert.Zero(t, b.Len())

	b.Tick(time.Unix(1, 0))
	assert.Zero(t, r.runs)
}

func TestUnregister_DuringIteration(t *testing.T) {
	b := NewBatchScheduler(8, nil)
	runners := newRunners(4)
	// The first runner that executes removes its neighbour mid-tick.
	runners[0].onRun = func() { b.Unregister(runners[1]) }
	for _, r := range runners {
		b.Register(r)
	}

	assert.NotPanics(t, func() { b.Tick(time.Unix(1, 0)) })
	assert.Equal(t, 3, b.Len())
	assert.Zero(t, runners[1].runs, "a runner removed mid-tick must not execute")
}

func TestTick_PanickingRunnerDoesNotStopOthers(t *testing.T) {
	b := NewBatchScheduler(8, nil)
	bad := &countRunner{eligible: true, onRun: func() { panic("broken agent") }}
	good := &countRunner{eligible: true}
	b.Register(bad)
	b.Register(good)

	assert.NotPanics(t, func() { b.Tick(time.Unix(1, 0)) })
	assert.Equal(t, 1, good.runs)
}

func TestRegister_RevivesTombstonedEntry(t *testing.T) {
	b := NewBatchScheduler(8, nil)
	runners := newRunners(2)
	runners[0].onRun = func() {
		b.Unregister(runners[1])
		b.Register(runners[1])
	}
	for _, r := range runners {
		b.Register(r)
	}
	b.Tick(time.Unix(1, 0))
	assert.Equal(t, 2, b.Len())
}
