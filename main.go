package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aposine/nightwatch/config"
	"github.com/aposine/nightwatch/geo"
	"github.com/aposine/nightwatch/resource"
	"github.com/aposine/nightwatch/scheduler"
	"github.com/aposine/nightwatch/sense"
	"github.com/aposine/nightwatch/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// encounterSink ends the run on the first catch.
type encounterSink struct {
	logger *zap.Logger
	once   sync.Once
	done   chan struct{}
}

func (e *encounterSink) AttackLanded(agentID uuid.UUID) {
	e.logger.Info("attack landed", zap.String("agent", agentID.String()))
}

func (e *encounterSink) Caught(agentID uuid.UUID) {
	e.logger.Info("player caught, encounter over", zap.String("agent", agentID.String()))
	e.once.Do(func() { close(e.done) })
}

// demoWalk drives the player along a fixed loop so the guards have
// something to perceive.
type demoWalk struct {
	player *world.Player
	path   []geo.Vec
	idx    int
	speed  float64
}

func (d *demoWalk) tick(dt float64) {
	if len(d.path) == 0 {
		return
	}
	goal := d.path[d.idx]
	pos := d.player.Position()
	to := goal.Sub(pos)
	dist := to.Len()
	if dist < 0.15 {
		d.idx = (d.idx + 1) % len(d.path)
		return
	}
	step := d.speed * dt
	if step > dist {
		step = dist
	}
	d.player.SetPosition(pos.Add(to.Scale(step / dist)))
}

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Log.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Resources ----
	defaults := resource.Defaults{
		SampleInterval: time.Duration(cfg.Sim.SampleIntervalMs) * time.Millisecond,
	}
	data, err := resource.NewLoader(cfg.Data.Dir, defaults, logger).Load()
	if err != nil {
		log.Fatalf("resources: %v", err)
	}
	if len(data.Spawns) == 0 {
		logger.Warn("no spawn points configured, nothing to simulate")
	}

	// ---- World ----
	grid := world.NewGrid(data.Obstacles)
	player := world.NewPlayer(geo.Vec{X: 2, Z: 2})
	sim := world.NewSimulation(cfg.Sim.DetectionBatchSize, logger)
	enc := &encounterSink{logger: logger, done: make(chan struct{})}
	spawner := world.NewSpawner(sim, grid, player, enc, data.Archetypes, data.Routes, logger)
	spawner.SpawnAll(data.Spawns)

	walk := &demoWalk{
		player: player,
		path: []geo.Vec{
			{X: 2, Z: 2}, {X: 18, Z: 2}, {X: 18, Z: 14}, {X: 2, Z: 14},
		},
		speed: 2,
	}

	// ---- Periodic tasks ----
	sched := scheduler.New(sim.Now(), logger)
	sched.AddTicker("player_footsteps", 900*time.Millisecond, func() {
		sim.Noise.Publish(sense.NoiseEvent{
			Position: player.Position(),
			Radius:   6,
			Category: sense.NoiseFootstep,
		})
	})
	if cfg.Sim.StatusEvery > 0 {
		sched.AddTicker("status", cfg.Sim.StatusEvery, func() {
			for _, a := range sim.Agents() {
				logger.Info("agent status",
					zap.String("name", a.Name),
					zap.String("state", a.State().String()),
					zap.Float64("suspicion", a.Suspicion()))
			}
		})
	}

	// ---- Run loop ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	dt := float64(cfg.Sim.TickMs) / 1000
	limiter := rate.NewLimiter(rate.Every(time.Duration(cfg.Sim.TickMs)*time.Millisecond), 1)
	elapsed := 0.0

	logger.Info("simulation started",
		zap.Int("agents", sim.AgentCount()),
		zap.Float64("tick_s", dt),
		zap.Bool("real_time", cfg.Sim.RealTime))

run:
	for {
		select {
		case <-sigCh:
			logger.Info("interrupted")
			break run
		case <-enc.done:
			break run
		default:
		}
		if cfg.Sim.RealTime {
			if err := limiter.Wait(context.Background()); err != nil {
				break run
			}
		}
		walk.tick(dt)
		sim.Step(dt)
		sched.Advance(sim.Now())
		elapsed += dt
		if cfg.Sim.Duration > 0 && elapsed >= cfg.Sim.Duration.Seconds() {
			logger.Info("duration reached")
			break run
		}
	}

	sim.Shutdown()
}
