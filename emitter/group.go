package emitter

import (
	"sort"

	"github.com/pthm-cable/nebula/buffer"
)

// Feature flags the optional shading paths a group's current emitters
// need. The renderer checks these instead of scanning emitter configs.
type Feature uint8

const (
	// FeatureTextureRotation is set when any emitter animates sprite
	// angle over lifetime.
	FeatureTextureRotation Feature = 1 << iota
	// FeatureOrbit is set when any emitter orbits particles around a
	// center point.
	FeatureOrbit
	// FeatureRotation is set when any emitter self-rotates particles.
	FeatureRotation
	// FeatureWiggle is set when any emitter configures wiggle motion.
	FeatureWiggle
)

// GroupConfig configures an emitter collection.
type GroupConfig struct {
	// MaxParticleCount is the declared slot capacity. Zero disables the
	// cap; growth beyond a declared cap proceeds with a diagnostic, but
	// rendering correctness past the cap is not guaranteed.
	MaxParticleCount int

	// FixedTimeStep is the fallback dt used when Tick is called with a
	// non-positive step. Defaults to 1/60.
	FixedTimeStep float32

	// Seed initializes the group's random source. Identical seeds and
	// identical tick sequences reproduce bit-identical buffers.
	Seed uint32
}

// slotRange is a free contiguous span of particle slots.
type slotRange struct {
	offset, count int
}

// Group owns the full set of attribute buffers, allocates contiguous slot
// ranges to member emitters, advances them every tick, and aggregates
// their dirty ranges into per-buffer upload spans.
//
// Removal policy: slots of removed emitters are killed in place and their
// range goes on a free-list for reuse by later Adds; no buffer is
// compacted implicitly. Compact defragments explicitly.
type Group struct {
	rng   *Source
	attrs [AttrCount]*buffer.Attribute

	emitters []*Emitter

	maxParticleCount int
	fixedTimeStep    float32
	particleCount    int
	capacity         int
	free             []slotRange

	runTime   float32
	deltaTime float32
	features  Feature

	attributesNeedRefresh      bool
	attributesNeedDynamicReset bool

	pool          []*Emitter
	poolCfg       Config
	poolCreateNew bool
	poolReturns   []poolReturn
}

// NewGroup creates an empty group with its own random source.
func NewGroup(cfg GroupConfig) *Group {
	g := &Group{
		rng:              NewSource(cfg.Seed),
		maxParticleCount: cfg.MaxParticleCount,
		fixedTimeStep:    cfg.FixedTimeStep,
	}
	if g.fixedTimeStep <= 0 {
		g.fixedTimeStep = 1.0 / 60.0
	}
	for a := Attr(0); a < AttrCount; a++ {
		g.attrs[a] = buffer.NewAttribute(a.Stride())
	}
	if g.maxParticleCount > 0 {
		g.ensureCapacity(g.maxParticleCount)
	}
	return g
}

// Attribute returns the shared buffer for a.
func (g *Group) Attribute(a Attr) *buffer.Attribute {
	return g.attrs[a]
}

// Rand returns the group's random source.
func (g *Group) Rand() *Source {
	return g.rng
}

// ParticleCount returns the total slot count of current member emitters.
func (g *Group) ParticleCount() int {
	return g.particleCount
}

// Capacity returns the allocated slot high-water mark.
func (g *Group) Capacity() int {
	return g.capacity
}

// LiveCount returns the number of currently live particles across all
// member emitters. The renderer's draw range follows this, not capacity.
func (g *Group) LiveCount() int {
	n := 0
	for _, e := range g.emitters {
		n += e.activeCount
	}
	return n
}

// Emitters returns the current members.
func (g *Group) Emitters() []*Emitter {
	return g.emitters
}

// Features returns the shading feature bits for the current member set.
func (g *Group) Features() Feature {
	return g.features
}

// RunTime returns accumulated simulated time, fed to the backend as a
// uniform.
func (g *Group) RunTime() float32 {
	return g.runTime
}

// DeltaTime returns the last tick's step.
func (g *Group) DeltaTime() float32 {
	return g.deltaTime
}

func (g *Group) ensureCapacity(size int) {
	for _, a := range g.attrs {
		a.EnsureCapacity(size)
	}
}

// allocate finds a slot range of count slots, preferring the tightest
// free-list fit before growing the buffers.
func (g *Group) allocate(count int) int {
	best := -1
	for i, r := range g.free {
		if r.count < count {
			continue
		}
		if best < 0 || r.count < g.free[best].count {
			best = i
		}
	}
	if best >= 0 {
		r := g.free[best]
		if r.count == count {
			g.free = append(g.free[:best], g.free[best+1:]...)
		} else {
			g.free[best] = slotRange{r.offset + count, r.count - count}
		}
		return r.offset
	}

	offset := g.capacity
	g.capacity += count
	if g.maxParticleCount > 0 && g.capacity > g.maxParticleCount {
		Diag("group: declared max particle count exceeded",
			"max", g.maxParticleCount, "capacity", g.capacity)
	}
	size := g.capacity
	if g.maxParticleCount > size {
		size = g.maxParticleCount
	}
	g.ensureCapacity(size)
	return offset
}

// Add gives e a contiguous slot range, populates its slots across every
// attribute buffer, and flags a full upload. An emitter already belonging
// to a group is rejected with a diagnostic.
func (g *Group) Add(e *Emitter) {
	if e == nil {
		Diag("group: nil emitter rejected")
		return
	}
	if e.group == g {
		Diag("group: emitter is already a member")
		return
	}
	if e.group != nil {
		Diag("group: emitter belongs to another group")
		return
	}

	offset := g.allocate(e.particleCount)
	g.particleCount += e.particleCount

	e.onJoin(g, offset)
	e.populate()

	g.emitters = append(g.emitters, e)
	g.updateFeatures()
	g.attributesNeedRefresh = true
}

// Remove detaches e: its slots are killed in place (visible immediately,
// no tick required), its range goes on the free-list, and a full upload is
// flagged. Non-members are rejected with a diagnostic.
func (g *Group) Remove(e *Emitter) {
	idx := -1
	for i, m := range g.emitters {
		if m == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		Diag("group: remove of non-member emitter rejected")
		return
	}

	params := g.attrs[AttrParams]
	for i := e.offset; i < e.offset+e.particleCount; i++ {
		params.SetComponent(i, ParamAlive, 0)
		params.SetComponent(i, ParamAge, 0)
	}

	g.freeRange(slotRange{e.offset, e.particleCount})
	g.particleCount -= e.particleCount
	g.emitters = append(g.emitters[:idx], g.emitters[idx+1:]...)
	e.onRemove()

	g.updateFeatures()
	g.attributesNeedRefresh = true
}

// freeRange returns a span to the free-list, coalescing adjacent spans.
func (g *Group) freeRange(r slotRange) {
	g.free = append(g.free, r)
	sort.Slice(g.free, func(i, j int) bool {
		return g.free[i].offset < g.free[j].offset
	})
	merged := g.free[:1]
	for _, next := range g.free[1:] {
		last := &merged[len(merged)-1]
		if last.offset+last.count == next.offset {
			last.count += next.count
		} else {
			merged = append(merged, next)
		}
	}
	g.free = merged
}

// Compact splices every free span out of every attribute buffer, rebasing
// the remaining emitters' offsets. Buffers shrink to the packed size and
// are flagged for a full upload.
func (g *Group) Compact() {
	if len(g.free) == 0 {
		return
	}
	// Highest offset first so earlier spans stay valid while splicing.
	sort.Slice(g.free, func(i, j int) bool {
		return g.free[i].offset > g.free[j].offset
	})
	for _, r := range g.free {
		end := r.offset + r.count
		if end > g.capacity {
			end = g.capacity
		}
		if r.offset >= end {
			continue
		}
		for _, a := range g.attrs {
			a.Splice(r.offset, end)
		}
		removed := end - r.offset
		for _, e := range g.emitters {
			if e.offset >= end {
				e.offset -= removed
				e.activationIndex -= float32(removed)
			}
		}
		g.capacity -= removed
	}
	g.free = nil
	g.attributesNeedRefresh = true
}

// updateFeatures rescans member emitters for the optional shading paths
// they exercise.
func (g *Group) updateFeatures() {
	var f Feature
	for _, e := range g.emitters {
		if curveInUse(e.angle) {
			f |= FeatureTextureRotation
		}
		if e.orbit.active() {
			f |= FeatureOrbit
		}
		if e.rotation.active() {
			f |= FeatureRotation
		}
		if e.wiggle.Value != 0 || e.wiggle.Spread != 0 {
			f |= FeatureWiggle
		}
	}
	g.features = f
}

func curveInUse(c CurveChannel) bool {
	for _, v := range c.Value {
		if v != 0 {
			return true
		}
	}
	for _, s := range c.Spread {
		if s != 0 {
			return true
		}
	}
	return false
}

// Tick advances the whole collection by dt (the fixed timestep when dt is
// non-positive), then leaves each attribute buffer's upload range ready
// for the renderer. At most one tick may be in flight at a time.
func (g *Group) Tick(dt float32) {
	if dt <= 0 {
		dt = g.fixedTimeStep
	}
	g.deltaTime = dt
	g.runTime += dt

	for _, a := range g.attrs {
		a.ResetRange()
	}

	if len(g.emitters) == 0 && !g.attributesNeedRefresh {
		return
	}

	for _, e := range g.emitters {
		e.tick(dt)
	}
	g.processPoolReturns()

	if g.attributesNeedRefresh {
		for _, a := range g.attrs {
			a.ForceFull()
		}
		g.attributesNeedRefresh = false
		g.attributesNeedDynamicReset = true
	} else if g.attributesNeedDynamicReset {
		g.attributesNeedDynamicReset = false
	}
}

// UsageReset reports the one-shot "reset buffer usage back to steady
// state" signal armed on the tick after a structural change forced a full
// upload.
func (g *Group) UsageReset() bool {
	return g.attributesNeedDynamicReset
}
