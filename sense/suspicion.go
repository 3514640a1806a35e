package sense

import (
	"fmt"
	"math"
	"time"
)

// Event is a threshold crossing reported by the Accumulator. Events are
// returned from Tick/Add rather than delivered through callbacks so the
// caller controls routing order.
type Event int

const (
	EventAlertTriggered Event = iota
	EventChaseTriggered
	EventSuspicionCleared
)

func (e Event) String() string {
	switch e {
	case EventAlertTriggered:
		return "alert_triggered"
	case EventChaseTriggered:
		return "chase_triggered"
	case EventSuspicionCleared:
		return "suspicion_cleared"
	default:
		return "unknown"
	}
}

// SuspicionMax is the upper clamp of the suspicion meter and the
// conventional chase threshold.
const SuspicionMax = 100.0

// BuildMode selects how partial visibility scales the build rate.
type BuildMode int

const (
	// BuildExponential doubles the rate per extra visible point:
	// rate(n) = base * 2^(n-1).
	BuildExponential BuildMode = iota
	// BuildTable multiplies the base rate by a per-count table entry.
	BuildTable
)

// SuspicionConfig is the immutable suspicion tuning attached to an agent.
type SuspicionConfig struct {
	AlertThreshold float64
	ChaseThreshold float64 // 0 means SuspicionMax
	BuildBase      float64 // suspicion per second at one visible point
	Mode           BuildMode
	Table          [MaxBodyPoints]float64 // multipliers for 1..4 visible points
	DecayRate      float64                // suspicion per second after the grace period
	GracePeriod    time.Duration          // unseen time before decay starts
}

// Accumulator integrates vision samples into a bounded, decaying suspicion
// value with edge-triggered threshold events.
type Accumulator struct {
	cfg SuspicionConfig

	value            float64
	timeSinceVisible float64
	wasAlert         bool
	wasChasing       bool
}

// NewAccumulator validates cfg and builds an Accumulator. A configuration
// where the alert threshold exceeds the chase threshold is a data error and
// is rejected rather than silently reordered.
func NewAccumulator(cfg SuspicionConfig) (*Accumulator, error) {
	if cfg.ChaseThreshold <= 0 {
		cfg.ChaseThreshold = SuspicionMax
	}
	if cfg.AlertThreshold < 0 {
		return nil, fmt.Errorf("suspicion: alert threshold %.1f is negative", cfg.AlertThreshold)
	}
	if cfg.AlertThreshold > cfg.ChaseThreshold {
		return nil, fmt.Errorf("suspicion: alert threshold %.1f exceeds chase threshold %.1f",
			cfg.AlertThreshold, cfg.ChaseThreshold)
	}
	if cfg.BuildBase < 0 || cfg.DecayRate < 0 {
		return nil, fmt.Errorf("suspicion: negative rate (build %.1f, decay %.1f)",
			cfg.BuildBase, cfg.DecayRate)
	}
	return &Accumulator{cfg: cfg}, nil
}

// Value returns the current suspicion level in [0, SuspicionMax].
func (a *Accumulator) Value() float64 {
	return a.value
}

// TimeSinceVisible returns seconds since the target was last visible.
func (a *Accumulator) TimeSinceVisible() float64 {
	return a.timeSinceVisible
}

// buildRate returns suspicion per second for n visible points. n=0
// contributes nothing.
func (a *Accumulator) buildRate(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n > MaxBodyPoints {
		n = MaxBodyPoints
	}
	if a.cfg.Mode == BuildTable {
		return a.cfg.BuildBase * a.cfg.Table[n-1]
	}
	return a.cfg.BuildBase * math.Pow(2, float64(n-1))
}

// Tick integrates one sample over dt seconds and returns the threshold
// events that fired this tick, in firing order.
func (a *Accumulator) Tick(sample Sample, dt float64) []Event {
	if dt <= 0 {
		return nil
	}
	if sample.AnyVisible {
		a.timeSinceVisible = 0
		return a.raise(a.buildRate(sample.VisibleCount) * dt)
	}
	a.timeSinceVisible += dt
	if a.timeSinceVisible <= a.cfg.GracePeriod.Seconds() {
		return nil
	}
	return a.lower(a.cfg.DecayRate * dt)
}

// Add applies a direct external suspicion bump, e.g. a scripted one-shot
// detection. Negative amounts lower the meter.
func (a *Accumulator) Add(amount float64) []Event {
	if amount >= 0 {
		return a.raise(amount)
	}
	return a.lower(-amount)
}

// Clear resets the meter to zero and re-arms both threshold edges without
// emitting SuspicionCleared.
func (a *Accumulator) Clear() {
	a.value = 0
	a.timeSinceVisible = 0
	a.wasAlert = false
	a.wasChasing = false
}

func (a *Accumulator) raise(amount float64) []Event {
	a.value += amount
	if a.value > SuspicionMax {
		a.value = SuspicionMax
	}
	var events []Event
	if !a.wasAlert && a.value >= a.cfg.AlertThreshold {
		a.wasAlert = true
		events = append(events, EventAlertTriggered)
	}
	if !a.wasChasing && a.value >= a.cfg.ChaseThreshold {
		a.wasChasing = true
		events = append(events, EventChaseTriggered)
	}
	return events
}

func (a *Accumulator) lower(amount float64) []Event {
	if a.value == 0 {
		return nil
	}
	a.value -= amount
	// Per-crossing semantics: falling below a threshold re-arms it, so a
	// later rebuild fires the event again.
	if a.value < a.cfg.ChaseThreshold {
		a.wasChasing = false
	}
	if a.value < a.cfg.AlertThreshold {
		a.wasAlert = false
	}
	if a.value > 0 {
		return nil
	}
	a.value = 0
	a.wasAlert = false
	a.wasChasing = false
	return []Event{EventSuspicionCleared}
}
