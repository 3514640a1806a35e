package sense

import (
	"time"

	"github.com/aposine/nightwatch/geo"
)

// MaxBodyPoints is the number of target body points a sampler evaluates.
// Extra points supplied by a target are ignored.
const MaxBodyPoints = 4

// Target is the entity a sampler tries to see. BodyPoints returns up to
// MaxBodyPoints world-space positions (head, torso, hands...); Position is
// the reference point recorded as the last visible position.
type Target interface {
	BodyPoints() []geo.Vec
	Position() geo.Vec
}

// Obstructer answers sight-ray queries. Implementations must not count the
// target's own body as an obstacle: a ray that reaches the target counts as
// unblocked.
type Obstructer interface {
	SightBlocked(from, to geo.Vec) bool
}

// Sample is the result of one vision evaluation. Produced whole each
// sampling tick, never partially updated.
type Sample struct {
	VisibleCount   int // in [0, MaxBodyPoints]
	AnyVisible     bool
	LastVisiblePos geo.Vec
}

// VisionConfig is the immutable vision tuning attached to an agent.
type VisionConfig struct {
	Range      float64
	FOVDegrees float64
	Interval   time.Duration // sampling cadence enforced by the BatchScheduler
}

// Sampler performs multi-point line-of-sight checks for one agent.
type Sampler struct {
	cfg    VisionConfig
	world  Obstructer
	nextAt time.Time
	last   Sample
}

// NewSampler creates a Sampler. A nil Obstructer means unobstructed sight.
func NewSampler(cfg VisionConfig, world Obstructer) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = 150 * time.Millisecond
	}
	return &Sampler{cfg: cfg, world: world}
}

// Sample evaluates every body point of tgt against range, field of view and
// obstruction, in that order. A nil target or a target with no body points
// yields a zero sample.
func (s *Sampler) Sample(eye, forward geo.Vec, tgt Target) Sample {
	out := Sample{}
	if tgt == nil {
		s.last = out
		return out
	}
	points := tgt.BodyPoints()
	if len(points) > MaxBodyPoints {
		points = points[:MaxBodyPoints]
	}
	halfFOV := s.cfg.FOVDegrees / 2
	for _, p := range points {
		to := p.Sub(eye)
		if to.Len() > s.cfg.Range {
			continue
		}
		if geo.AngleBetween(forward, to) > halfFOV {
			continue
		}
		if s.world != nil && s.world.SightBlocked(eye, p) {
			continue
		}
		out.VisibleCount++
	}
	out.AnyVisible = out.VisibleCount > 0
	if out.AnyVisible {
		out.LastVisiblePos = tgt.Position()
	} else {
		out.LastVisiblePos = s.last.LastVisiblePos
	}
	s.last = out
	return out
}

// Last returns the most recent sample.
func (s *Sampler) Last() Sample {
	return s.last
}

// Eligible reports whether the sampling interval has elapsed.
func (s *Sampler) Eligible(now time.Time) bool {
	return !now.Before(s.nextAt)
}

// MarkRun advances the next-eligible timestamp after a scheduler-driven run.
func (s *Sampler) MarkRun(now time.Time) {
	s.nextAt = now.Add(s.cfg.Interval)
}
