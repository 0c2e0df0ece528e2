package game

import (
	"github.com/pthm-cable/nebula/emitter"
	"github.com/pthm-cable/nebula/telemetry"
)

// Update runs input handling and one or more simulation steps.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}

	for i := 0; i < g.stepsPerFrame; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs simulation steps without any input or rendering.
// Dirty ranges are still consumed each step so the upload contract is
// exercised the same way the renderer would.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerFrame; i++ {
		g.simulationStep()
		g.consumeUploads()
	}
}

// simulationStep advances movers and the particle group by one fixed
// timestep.
func (g *Game) simulationStep() {
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseSimulate)

	g.updateMovers()
	g.group.Tick(g.dt)

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perf.EndTick()
	g.tick++

	if g.perfLogEvery > 0 && g.tick%int32(g.perfLogEvery) == 0 && g.logStats {
		g.perf.Stats().LogStats()
	}
}

// updateMovers integrates mover motion, reflects them off the world
// sphere, repositions their trail emitters and fires bursts on impact.
func (g *Game) updateMovers() {
	query := g.moverFilter.Query()
	for query.Next() {
		pos, vel, mover, trail := query.Get()

		pos.X += vel.X * g.dt
		pos.Y += vel.Y * g.dt
		pos.Z += vel.Z * g.dt

		if mover.BounceCooldown > 0 {
			mover.BounceCooldown -= g.dt
		}

		// Reflect off the world sphere
		dist := sqrt32(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
		if dist > g.worldRadius && dist > 0 {
			nx, ny, nz := pos.X/dist, pos.Y/dist, pos.Z/dist
			dot := vel.X*nx + vel.Y*ny + vel.Z*nz
			vel.X -= 2 * dot * nx
			vel.Y -= 2 * dot * ny
			vel.Z -= 2 * dot * nz

			// Pull back inside the boundary
			pos.X = nx * g.worldRadius
			pos.Y = ny * g.worldRadius
			pos.Z = nz * g.worldRadius

			if mover.BounceCooldown <= 0 {
				g.triggerBurst(pos.Vec3())
				mover.BounceCooldown = 0.5
			}
		}

		// Trail follows the mover; new spawns pick up the position
		trail.Emitter.SetPosition(emitter.Vec3Channel{
			Value:  pos.Vec3(),
			Radius: 0.15,
		})
	}
}

// triggerBurst fires a pooled burst emitter at a world position.
func (g *Game) triggerBurst(at emitter.Vec3) {
	if g.group.TriggerPoolEmitter(1, &at) > 0 {
		g.stats.RecordPoolTrigger()
	}
}

// consumeUploads reads the dirty ranges into the stats collector.
// Reading does not clear them; the next group tick does.
func (g *Game) consumeUploads() {
	for a := emitter.Attr(0); a < emitter.AttrCount; a++ {
		attr := g.group.Attribute(a)
		if _, count, ok := attr.UploadRange(); ok {
			g.stats.RecordUpload(count, attr.FullUpload())
		}
	}
}

// flushTelemetry writes a window row when the stats window elapses.
func (g *Game) flushTelemetry() {
	if !g.stats.ShouldFlush(g.tick) {
		return
	}

	w := g.stats.Flush(g.tick,
		g.group.LiveCount(),
		g.group.ParticleCount(),
		g.group.Capacity(),
		len(g.group.Emitters()),
		g.group.PoolSize(),
	)

	if g.logStats {
		Logf("tick %d: live=%d/%d emitters=%d pool=%d uploads=%d (%d full)",
			g.tick, w.LiveParticles, w.TotalParticles, w.Emitters, w.PoolSize,
			w.UploadComponents, w.FullUploads)
	}

	if g.output != nil {
		if err := g.output.WriteTelemetry(w); err != nil {
			Logf("writing telemetry window: %v", err)
		}
		if err := g.output.WritePerf(g.perf.Stats(), g.tick); err != nil {
			Logf("writing perf window: %v", err)
		}
	}
}
