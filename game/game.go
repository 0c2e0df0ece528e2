// Package game wires the particle engine into an interactive demo scene:
// a central fountain, a set of orbiting movers trailing particles, and a
// pool of burst emitters fired on wall hits or by hand.
package game

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/nebula/camera"
	"github.com/pthm-cable/nebula/components"
	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/emitter"
	"github.com/pthm-cable/nebula/renderer"
	"github.com/pthm-cable/nebula/telemetry"
)

// Options configures a game instance.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// Game holds the complete demo state.
type Game struct {
	world *ecs.World
	rng   *rand.Rand

	moverMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Mover,
		components.Trail,
	]
	moverFilter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Mover,
		components.Trail,
	]

	// Particle engine
	group    *emitter.Group
	fountain *emitter.Emitter

	// Rendering
	particles *renderer.ParticleRenderer
	cam       *camera.Orbit

	// Telemetry
	perf   *telemetry.PerfCollector
	stats  *telemetry.Collector
	output *telemetry.OutputManager

	// State
	tick          int32
	paused        bool
	stepsPerFrame int
	logStats      bool
	perfLogEvery  int

	// Control panel state
	showPanel    bool
	fountainRate float32

	worldRadius float32
	dt          float32
}

// NewGame creates a game with default options.
func NewGame() *Game {
	return NewGameWithOptions(Options{Seed: 42, StepsPerUpdate: 1})
}

// NewGameWithOptions creates a game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	world := ecs.NewWorld()

	g := &Game{
		world:         world,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		logStats:      opts.LogStats,
		perfLogEvery:  cfg.Telemetry.PerfLogEvery,
		stepsPerFrame: max(opts.StepsPerUpdate, 1),
		fountainRate:  1.0,
		worldRadius:   float32(cfg.Demo.WorldRadius),
		dt:            cfg.Derived.DT32,
		moverMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Mover,
			components.Trail,
		](world),
		moverFilter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Mover,
			components.Trail,
		](world),
	}

	// Telemetry first, so scene setup can record events
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.RollingWindow)
	g.stats = telemetry.NewCollector(statsWindow, g.dt)

	if opts.OutputDir != "" {
		out, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			Logf("telemetry output disabled: %v", err)
		} else {
			g.output = out
		}
	}

	// Particle engine
	g.group = emitter.NewGroup(emitter.GroupConfig{
		MaxParticleCount: cfg.Simulation.MaxParticleCount,
		FixedTimeStep:    cfg.Derived.DT32,
		Seed:             cfg.Simulation.Seed,
	})

	g.fountain = emitter.New(fountainConfig(cfg))
	g.group.Add(g.fountain)
	g.stats.RecordEmitterAdded()

	g.spawnMovers(cfg.Demo.MoverCount, float32(cfg.Demo.MoverSpeed))

	// Burst pool
	g.group.AddPool(cfg.Demo.PoolSize, []emitter.Config{burstConfig(cfg.Demo.BurstParticles)}, true)

	if !opts.Headless {
		g.particles = renderer.NewParticleRenderer()
		g.cam = camera.New(g.worldRadius * 2.5)
	}

	return g
}

// spawnMovers creates the orbiting mover entities, each with its own
// trail emitter joined to the group.
func (g *Game) spawnMovers(count int, speed float32) {
	for i := 0; i < count; i++ {
		hue := float32(i) / float32(max(count, 1))

		// Random point inside the world sphere, random direction
		dir := g.randomUnit()
		pos := components.Position{
			X: dir.X * g.worldRadius * 0.5,
			Y: dir.Y * g.worldRadius * 0.5,
			Z: dir.Z * g.worldRadius * 0.5,
		}
		heading := g.randomUnit()
		vel := components.Velocity{
			X: heading.X * speed,
			Y: heading.Y * speed,
			Z: heading.Z * speed,
		}

		trail := emitter.New(trailConfig(hue))
		g.group.Add(trail)
		g.stats.RecordEmitterAdded()

		g.moverMapper.NewEntity(&pos, &vel, &components.Mover{Hue: hue}, &components.Trail{Emitter: trail})
	}
}

// randomUnit returns a uniformly distributed unit vector.
func (g *Game) randomUnit() emitter.Vec3 {
	for {
		v := emitter.Vec3{
			X: g.rng.Float32()*2 - 1,
			Y: g.rng.Float32()*2 - 1,
			Z: g.rng.Float32()*2 - 1,
		}
		if l := v.Length(); l > 0.01 && l <= 1 {
			return v.Scale(1 / l)
		}
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Group exposes the particle group, used by the benchmark harness.
func (g *Game) Group() *emitter.Group {
	return g.group
}

// Unload releases all resources.
func (g *Game) Unload() {
	if g.particles != nil {
		g.particles.Unload()
	}
	if g.output != nil {
		if err := g.output.Close(); err != nil {
			Logf("closing telemetry output: %v", err)
		}
	}
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
