package emitter

// Emitter pooling: a group can park pre-added emitters in a reusable pool
// and trigger them on demand (explosions, impacts) without mutating buffer
// layout. Re-pooling is scheduled on simulated time, not wall clock.

// poolReturn schedules an emitter's return to the pool once the group's
// run time reaches at.
type poolReturn struct {
	e  *Emitter
	at float32
}

// AddPool creates n emitters, adds each to the group, then immediately
// parks them in the pool. cfgs supplies per-index configurations; a single
// entry is shared by all n. createNew allows GetFromPool to construct and
// add a brand-new emitter (with the first configuration) when the pool
// runs dry.
func (g *Group) AddPool(n int, cfgs []Config, createNew bool) {
	if n <= 0 || len(cfgs) == 0 {
		Diag("group: pool needs a positive size and at least one config",
			"n", n, "configs", len(cfgs))
		return
	}
	g.poolCfg = cfgs[0]
	g.poolCreateNew = createNew

	for i := 0; i < n; i++ {
		cfg := cfgs[i%len(cfgs)]
		cfg.Disabled = true
		e := New(cfg)
		g.Add(e)
		g.pool = append(g.pool, e)
	}
}

// GetFromPool pops an emitter from the pool. When the pool is empty it
// either constructs and adds a brand-new emitter (if the pool was created
// with createNew) or returns nil. An empty result is not an error.
func (g *Group) GetFromPool() *Emitter {
	if n := len(g.pool); n > 0 {
		e := g.pool[n-1]
		g.pool = g.pool[:n-1]
		return e
	}
	if g.poolCreateNew {
		cfg := g.poolCfg
		cfg.Disabled = true
		e := New(cfg)
		g.Add(e)
		return e
	}
	return nil
}

// PoolSize returns the number of parked emitters.
func (g *Group) PoolSize() int {
	return len(g.pool)
}

// ReleaseIntoPool soft-resets e (killing its live particles in place) and
// returns it to the pool. Emitters not belonging to this group are
// rejected with a diagnostic.
func (g *Group) ReleaseIntoPool(e *Emitter) {
	if e == nil || e.group != g {
		Diag("group: release of non-member emitter into pool rejected")
		return
	}
	e.reset(true)
	g.pool = append(g.pool, e)
}

// TriggerPoolEmitter pulls count emitters from the pool, optionally moves
// them to pos, enables them, and schedules their automatic return to the
// pool once their longest possible output has aged out. It returns the
// number of emitters actually triggered.
func (g *Group) TriggerPoolEmitter(count int, pos *Vec3) int {
	triggered := 0
	for i := 0; i < count; i++ {
		e := g.GetFromPool()
		if e == nil {
			Diag("group: pool exhausted", "requested", count, "triggered", triggered)
			break
		}
		if pos != nil {
			c := e.position
			c.Value = *pos
			e.SetPosition(c)
		}
		e.age = 0
		e.Enable()

		ttl := e.MaxLifetime()
		if e.duration > ttl {
			ttl = e.duration
		}
		g.poolReturns = append(g.poolReturns, poolReturn{e: e, at: g.runTime + ttl})
		triggered++
	}
	return triggered
}

// processPoolReturns re-pools emitters whose scheduled return time has
// passed. Called once per tick.
func (g *Group) processPoolReturns() {
	if len(g.poolReturns) == 0 {
		return
	}
	pending := g.poolReturns[:0]
	for _, pr := range g.poolReturns {
		if g.runTime >= pr.at {
			g.ReleaseIntoPool(pr.e)
		} else {
			pending = append(pending, pr)
		}
	}
	g.poolReturns = pending
}
