package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aposine/nightwatch/agent"
	"github.com/aposine/nightwatch/behavior"
	"github.com/aposine/nightwatch/geo"
	"github.com/aposine/nightwatch/sense"
	"github.com/aposine/nightwatch/world"
	"go.uber.org/zap"
)

// ---- On-disk definitions ----

type PointDef struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p PointDef) vec() geo.Vec { return geo.Vec{X: p.X, Y: p.Y, Z: p.Z} }

type VisionDef struct {
	Range      float64 `json:"range"`
	FOVDegrees float64 `json:"fov_degrees"`
	IntervalMs int     `json:"interval_ms"`
}

type SuspicionDef struct {
	AlertThreshold float64   `json:"alert_threshold"`
	ChaseThreshold float64   `json:"chase_threshold"`
	BuildBase      float64   `json:"build_base"`
	BuildMode      string    `json:"build_mode"` // "exponential" (default) or "table"
	BuildTable     []float64 `json:"build_table"`
	DecayRate      float64   `json:"decay_rate"`
	GraceMs        int       `json:"grace_ms"`
}

type BehaviorDef struct {
	PatrolSpeed       float64 `json:"patrol_speed"`
	AlertSpeed        float64 `json:"alert_speed"`
	ChaseSpeed        float64 `json:"chase_speed"`
	SearchSpeed       float64 `json:"search_speed"`
	TurnRate          float64 `json:"turn_rate"`
	IdleReorient      float64 `json:"idle_reorient_s"`
	WaypointDwell     float64 `json:"waypoint_dwell_s"`
	InvestigateDwell  float64 `json:"investigate_dwell_s"`
	AttackRange       float64 `json:"attack_range"`
	CatchRange        float64 `json:"catch_range"`
	AttackSwing       float64 `json:"attack_swing_s"`
	AttackHitDelay    float64 `json:"attack_hit_delay_s"`
	AttackCooldown    float64 `json:"attack_cooldown_s"`
	SearchRadius      float64 `json:"search_radius"`
	SearchPointBudget int     `json:"search_point_budget"`
	SearchPointTime   float64 `json:"search_point_time_s"`
	SearchDuration    float64 `json:"search_duration_s"`
}

type ArchetypeDef struct {
	ID                string       `json:"id"`
	Vision            VisionDef    `json:"vision"`
	Suspicion         SuspicionDef `json:"suspicion"`
	Behavior          BehaviorDef  `json:"behavior"`
	HearingMultiplier float64      `json:"hearing_multiplier"`
	EyeHeight         float64      `json:"eye_height"`
}

type RouteDef struct {
	ID        string     `json:"id"`
	Loop      bool       `json:"loop"`
	Waypoints []PointDef `json:"waypoints"`
	Facings   []PointDef `json:"facings"`
}

type SpawnPointDef struct {
	Name      string   `json:"name"`
	Archetype string   `json:"archetype"`
	Route     string   `json:"route"`
	Pos       PointDef `json:"pos"`
}

type ObstacleDef struct {
	MinX float64 `json:"min_x"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxZ float64 `json:"max_z"`
}

// ---- Conversion to runtime records ----

// Defaults are process-level fallback values applied to definitions that
// omit the matching field.
type Defaults struct {
	SampleInterval time.Duration // vision cadence when interval_ms is absent
}

// ToConfig converts an archetype definition into the immutable agent
// configuration record. def fills fields the definition leaves unset.
func (d ArchetypeDef) ToConfig(def Defaults) agent.Config {
	mode := sense.BuildExponential
	if d.Suspicion.BuildMode == "table" {
		mode = sense.BuildTable
	}
	var table [sense.MaxBodyPoints]float64
	for i := 0; i < len(d.Suspicion.BuildTable) && i < sense.MaxBodyPoints; i++ {
		table[i] = d.Suspicion.BuildTable[i]
	}
	eye := d.EyeHeight
	if eye <= 0 {
		eye = 1.7
	}
	interval := time.Duration(d.Vision.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = def.SampleInterval
	}
	return agent.Config{
		Vision: sense.VisionConfig{
			Range:      d.Vision.Range,
			FOVDegrees: d.Vision.FOVDegrees,
			Interval:   interval,
		},
		Suspicion: sense.SuspicionConfig{
			AlertThreshold: d.Suspicion.AlertThreshold,
			ChaseThreshold: d.Suspicion.ChaseThreshold,
			BuildBase:      d.Suspicion.BuildBase,
			Mode:           mode,
			Table:          table,
			DecayRate:      d.Suspicion.DecayRate,
			GracePeriod:    time.Duration(d.Suspicion.GraceMs) * time.Millisecond,
		},
		Behavior: behavior.Config{
			PatrolSpeed:       d.Behavior.PatrolSpeed,
			AlertSpeed:        d.Behavior.AlertSpeed,
			ChaseSpeed:        d.Behavior.ChaseSpeed,
			SearchSpeed:       d.Behavior.SearchSpeed,
			TurnRate:          d.Behavior.TurnRate,
			IdleReorient:      d.Behavior.IdleReorient,
			WaypointDwell:     d.Behavior.WaypointDwell,
			InvestigateDwell:  d.Behavior.InvestigateDwell,
			AttackRange:       d.Behavior.AttackRange,
			CatchRange:        d.Behavior.CatchRange,
			AttackSwing:       d.Behavior.AttackSwing,
			AttackHitDelay:    d.Behavior.AttackHitDelay,
			AttackCooldown:    d.Behavior.AttackCooldown,
			SearchRadius:      d.Behavior.SearchRadius,
			SearchPointBudget: d.Behavior.SearchPointBudget,
			SearchPointTime:   d.Behavior.SearchPointTime,
			SearchDuration:    d.Behavior.SearchDuration,
		},
		HearingMultiplier: d.HearingMultiplier,
		EyeHeight:         eye,
	}
}

// ToRoute converts a route definition.
func (d RouteDef) ToRoute() *behavior.Route {
	r := &behavior.Route{Loop: d.Loop}
	for _, w := range d.Waypoints {
		r.Waypoints = append(r.Waypoints, w.vec())
	}
	for _, f := range d.Facings {
		r.Facings = append(r.Facings, f.vec())
	}
	return r
}

// ---- Loader ----

// Data is everything the loader produces, keyed and converted for the
// spawner.
type Data struct {
	Archetypes map[string]agent.Config
	Routes     map[string]*behavior.Route
	Spawns     []world.SpawnDef
	Obstacles  []world.Box
}

// Loader reads archetype, route, spawn and obstacle JSON files from a data
// directory. Missing files are warnings, not errors: the simulation runs
// with whatever is present.
type Loader struct {
	dir      string
	defaults Defaults
	logger   *zap.Logger
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string, defaults Defaults, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, defaults: defaults, logger: logger}
}

// Load reads and converts every data file.
func (l *Loader) Load() (*Data, error) {
	data := &Data{
		Archetypes: make(map[string]agent.Config),
		Routes:     make(map[string]*behavior.Route),
	}

	var archetypes []ArchetypeDef
	if err := l.readJSON("archetypes.json", &archetypes); err == nil {
		for _, a := range archetypes {
			if a.ID == "" {
				l.logger.Warn("archetype without id skipped")
				continue
			}
			data.Archetypes[a.ID] = a.ToConfig(l.defaults)
		}
	}

	var routes []RouteDef
	if err := l.readJSON("routes.json", &routes); err == nil {
		for _, r := range routes {
			if r.ID == "" {
				l.logger.Warn("route without id skipped")
				continue
			}
			data.Routes[r.ID] = r.ToRoute()
		}
	}

	var spawns []SpawnPointDef
	if err := l.readJSON("spawns.json", &spawns); err == nil {
		for _, s := range spawns {
			data.Spawns = append(data.Spawns, world.SpawnDef{
				Name:      s.Name,
				Archetype: s.Archetype,
				Route:     s.Route,
				Pos:       s.Pos.vec(),
			})
		}
	}

	var obstacles []ObstacleDef
	if err := l.readJSON("obstacles.json", &obstacles); err == nil {
		for _, o := range obstacles {
			data.Obstacles = append(data.Obstacles, world.Box{
				MinX: o.MinX, MinZ: o.MinZ, MaxX: o.MaxX, MaxZ: o.MaxZ,
			})
		}
	}

	l.logger.Info("resources loaded",
		zap.String("dir", l.dir),
		zap.Int("archetypes", len(data.Archetypes)),
		zap.Int("routes", len(data.Routes)),
		zap.Int("spawns", len(data.Spawns)),
		zap.Int("obstacles", len(data.Obstacles)))
	return data, nil
}

// readJSON unmarshals one data file into out. A missing or malformed file
// is logged and reported; callers treat it as "section absent".
func (l *Loader) readJSON(name string, out interface{}) error {
	path := filepath.Join(l.dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("data file unavailable", zap.String("file", name), zap.Error(err))
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		l.logger.Warn("data file malformed", zap.String("file", name), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
