// Package emitter implements the CPU side of a GPU-instanced particle
// system: emitters translate declarative per-channel configuration into
// packed fixed-stride attribute buffers, a group schedules particle birth,
// ageing and death each tick, and only the buffer sub-ranges that changed
// are flagged for re-upload.
package emitter

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/nebula/buffer"
)

// Diag receives non-fatal diagnostics (misuse, capacity warnings). Replace
// it to route warnings somewhere other than slog.
var Diag = func(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// channel identifies a configurable per-particle channel for the
// dirty-config bookkeeping. Order matters: channels are assigned in this
// order, and forces sample the already-assigned position.
type channel int

const (
	chPosition channel = iota
	chVelocity
	chAcceleration
	chOrbit
	chRotation
	chColor
	chOpacity
	chSize
	chAngle
	chParams
	channelCount
)

// Config is the declarative per-emitter configuration. The zero value of
// most fields picks a sane default (100 particles, box distribution,
// 2-second lifetime, active, direction +1, infinite duration).
type Config struct {
	// ParticleCount is the number of slots the emitter owns. Defaults
	// to 100.
	ParticleCount int

	// Type is the emitter-level spatial distribution, overridable per
	// channel. Defaults to DistBox.
	Type Distribution

	// Duration in simulated seconds after which the emitter goes dead.
	// Zero or negative means it never expires on its own.
	Duration float32

	// IsStatic emitters populate their slots once and are skipped by the
	// scheduler entirely.
	IsStatic bool

	// ActiveMultiplier scales the activation rate in [0,1]. Defaults
	// to 1.
	ActiveMultiplier float32

	// Direction is +1 for forward ageing, -1 for reverse. Defaults
	// to +1.
	Direction float32

	// Disabled starts the emitter in the dead state; call Enable to
	// start it.
	Disabled bool

	Position     Vec3Channel
	Velocity     Vec3Channel
	Acceleration Vec3Channel
	Drag         ScalarChannel
	Wiggle       ScalarChannel
	MaxAge       ScalarChannel
	Orbit        AxisChannel
	Rotation     AxisChannel
	Color        ColorChannel
	Opacity      CurveChannel
	Size         CurveChannel
	Angle        CurveChannel
}

// Emitter owns the emission configuration and the live/dead scheduling of
// a contiguous range of particle slots inside a Group's shared buffers. An
// emitter never owns buffer memory: it holds only its (offset, count)
// handle, valid while it is a member of exactly one Group.
type Emitter struct {
	particleCount    int
	distribution     Distribution
	duration         float32
	isStatic         bool
	activeMultiplier float32
	direction        float32

	position     Vec3Channel
	velocity     Vec3Channel
	acceleration Vec3Channel
	drag         ScalarChannel
	wiggle       ScalarChannel
	maxAge       ScalarChannel
	orbit        AxisChannel
	rotation     AxisChannel
	color        ColorChannel
	opacity      CurveChannel
	size         CurveChannel
	angle        CurveChannel

	group  *Group
	offset int

	alive              bool
	age                float32
	activationIndex    float32
	particlesPerSecond float32
	activeCount        int

	updateFlags  [channelCount]bool
	updateCounts [channelCount]int
	resetFlags   [channelCount]bool

	onComplete []func()
}

// New creates a standalone emitter from cfg. It simulates nothing until it
// joins a Group.
func New(cfg Config) *Emitter {
	e := &Emitter{
		particleCount:    cfg.ParticleCount,
		distribution:     cfg.Type,
		duration:         cfg.Duration,
		isStatic:         cfg.IsStatic,
		activeMultiplier: cfg.ActiveMultiplier,
		direction:        cfg.Direction,
		position:         cfg.Position,
		velocity:         cfg.Velocity,
		acceleration:     cfg.Acceleration,
		drag:             cfg.Drag,
		wiggle:           cfg.Wiggle,
		maxAge:           cfg.MaxAge,
		orbit:            cfg.Orbit,
		rotation:         cfg.Rotation,
		color:            cfg.Color,
		opacity:          cfg.Opacity,
		size:             cfg.Size,
		angle:            cfg.Angle,
		alive:            !cfg.Disabled,
		offset:           -1,
	}

	if e.particleCount <= 0 {
		e.particleCount = 100
	}
	if e.distribution == DistUnset {
		e.distribution = DistBox
	}
	if e.activeMultiplier <= 0 {
		e.activeMultiplier = 1
	}
	if e.direction >= 0 {
		e.direction = 1
	} else {
		e.direction = -1
	}
	if e.maxAge.Value == 0 && e.maxAge.Spread == 0 {
		e.maxAge.Value = 2
	}
	normalizeVec3Channel(&e.position)
	normalizeVec3Channel(&e.velocity)
	normalizeVec3Channel(&e.acceleration)

	e.resetFlags[chPosition] = cfg.Position.Randomize
	e.resetFlags[chVelocity] = cfg.Velocity.Randomize
	e.resetFlags[chAcceleration] = cfg.Acceleration.Randomize
	e.resetFlags[chOrbit] = cfg.Orbit.Randomize
	e.resetFlags[chRotation] = cfg.Rotation.Randomize
	e.resetFlags[chColor] = cfg.Color.Randomize
	e.resetFlags[chOpacity] = cfg.Opacity.Randomize
	e.resetFlags[chSize] = cfg.Size.Randomize
	e.resetFlags[chAngle] = cfg.Angle.Randomize

	return e
}

func normalizeVec3Channel(c *Vec3Channel) {
	if c.RadiusScale.IsZero() {
		c.RadiusScale = Vec3{1, 1, 1}
	}
}

// Count returns the number of particle slots the emitter owns.
func (e *Emitter) Count() int {
	return e.particleCount
}

// Offset returns the emitter's first slot index, or -1 while detached.
func (e *Emitter) Offset() int {
	return e.offset
}

// Alive reports whether the emitter is activating new particles.
func (e *Emitter) Alive() bool {
	return e.alive
}

// Age returns the emitter's accumulated simulated age.
func (e *Emitter) Age() float32 {
	return e.age
}

// ActiveCount returns the number of currently live particles.
func (e *Emitter) ActiveCount() int {
	return e.activeCount
}

// Group returns the collection the emitter belongs to, or nil.
func (e *Emitter) Group() *Group {
	return e.group
}

// MaxLifetime returns the longest possible particle lifetime under the
// current configuration.
func (e *Emitter) MaxLifetime() float32 {
	return absf(e.maxAge.Value) + absf(e.maxAge.Spread)
}

// Duration returns the configured emitter duration; zero means infinite.
func (e *Emitter) Duration() float32 {
	return e.duration
}

// Enable transitions the emitter to the alive state.
func (e *Emitter) Enable() {
	e.alive = true
}

// Disable stops new particle activation. Existing particles still age out.
func (e *Emitter) Disable() {
	e.alive = false
}

// OnCompletion registers fn to run when the emitter's finite duration
// elapses. Each natural completion fires every registered callback exactly
// once.
func (e *Emitter) OnCompletion(fn func()) {
	e.onComplete = append(e.onComplete, fn)
}

// flagUpdate arms re-application of a channel across subsequent
// activations. The flag self-clears after twice the particle count of
// applications, smoothing in-flight configuration changes across the
// activation window.
func (e *Emitter) flagUpdate(ch channel) {
	e.updateFlags[ch] = true
	e.updateCounts[ch] = 0
}

// SetPosition replaces the position channel configuration.
func (e *Emitter) SetPosition(c Vec3Channel) {
	normalizeVec3Channel(&c)
	e.position = c
	e.resetFlags[chPosition] = c.Randomize
	e.flagUpdate(chPosition)
}

// SetVelocity replaces the velocity channel configuration.
func (e *Emitter) SetVelocity(c Vec3Channel) {
	normalizeVec3Channel(&c)
	e.velocity = c
	e.resetFlags[chVelocity] = c.Randomize
	e.flagUpdate(chVelocity)
}

// SetAcceleration replaces the acceleration channel configuration.
func (e *Emitter) SetAcceleration(c Vec3Channel) {
	normalizeVec3Channel(&c)
	e.acceleration = c
	e.resetFlags[chAcceleration] = c.Randomize
	e.flagUpdate(chAcceleration)
}

// SetDrag replaces the drag configuration, packed alongside acceleration.
func (e *Emitter) SetDrag(c ScalarChannel) {
	e.drag = c
	e.flagUpdate(chAcceleration)
}

// SetWiggle replaces the wiggle configuration.
func (e *Emitter) SetWiggle(c ScalarChannel) {
	e.wiggle = c
	e.flagUpdate(chParams)
}

// SetMaxAge replaces the particle lifetime configuration.
func (e *Emitter) SetMaxAge(c ScalarChannel) {
	e.maxAge = c
	e.flagUpdate(chParams)
}

// SetOrbit replaces the orbit channel configuration.
func (e *Emitter) SetOrbit(c AxisChannel) {
	e.orbit = c
	e.resetFlags[chOrbit] = c.Randomize
	e.flagUpdate(chOrbit)
}

// SetRotation replaces the self-rotation channel configuration.
func (e *Emitter) SetRotation(c AxisChannel) {
	e.rotation = c
	e.resetFlags[chRotation] = c.Randomize
	e.flagUpdate(chRotation)
}

// SetColor replaces the color-over-lifetime configuration.
func (e *Emitter) SetColor(c ColorChannel) {
	e.color = c
	e.resetFlags[chColor] = c.Randomize
	e.flagUpdate(chColor)
}

// SetOpacity replaces the opacity-over-lifetime configuration.
func (e *Emitter) SetOpacity(c CurveChannel) {
	e.opacity = c
	e.resetFlags[chOpacity] = c.Randomize
	e.flagUpdate(chOpacity)
}

// SetSize replaces the size-over-lifetime configuration.
func (e *Emitter) SetSize(c CurveChannel) {
	e.size = c
	e.resetFlags[chSize] = c.Randomize
	e.flagUpdate(chSize)
}

// SetAngle replaces the sprite-angle-over-lifetime configuration.
func (e *Emitter) SetAngle(c CurveChannel) {
	e.angle = c
	e.resetFlags[chAngle] = c.Randomize
	e.flagUpdate(chAngle)
}

// SetActiveMultiplier scales the activation rate. Clamped to [0,1].
func (e *Emitter) SetActiveMultiplier(m float32) {
	e.activeMultiplier = clamp01(m)
}

func (e *Emitter) attr(a Attr) *buffer.Attribute {
	return e.group.attrs[a]
}

func (e *Emitter) rng() *Source {
	return e.group.rng
}

// onJoin wires the emitter into a group at the given slot offset.
func (e *Emitter) onJoin(g *Group, offset int) {
	e.group = g
	e.offset = offset
	e.activationIndex = float32(offset)
	e.activeCount = 0
	e.particlesPerSecond = e.computePPS()
}

// onRemove detaches the emitter from its group. The buffer handle becomes
// invalid; subsequent ticks are rejected until the emitter rejoins a
// group.
func (e *Emitter) onRemove() {
	e.group = nil
	e.offset = -1
	e.activationIndex = 0
	e.activeCount = 0
	for ch := channel(0); ch < channelCount; ch++ {
		e.updateFlags[ch] = false
		e.updateCounts[ch] = 0
	}
}

// reset soft-resets the emitter for pooling: dead, age zero, cursor back
// to the range start. With force, its live particles are killed in place.
func (e *Emitter) reset(force bool) {
	e.alive = false
	e.age = 0
	if e.group != nil {
		e.activationIndex = float32(e.offset)
	}
	if force && e.group != nil {
		params := e.attr(AttrParams)
		for i := e.offset; i < e.offset+e.particleCount; i++ {
			params.SetComponent(i, ParamAlive, 0)
			params.SetComponent(i, ParamAge, 0)
		}
		e.activeCount = 0
	}
}

// computePPS derives the activation rate that refills the emitter's slot
// range once per effective lifetime window.
func (e *Emitter) computePPS() float32 {
	life := e.MaxLifetime()
	if e.duration > 0 && e.duration < life {
		life = e.duration
	}
	if life <= 0 {
		life = 1
	}
	return float32(e.particleCount) / life
}

// tick runs one simulation step over the emitter's slot range. Static
// emitters are skipped entirely.
func (e *Emitter) tick(dt float32) {
	if e.isStatic {
		return
	}
	if e.group == nil {
		Diag("emitter: tick on detached emitter ignored")
		return
	}

	params := e.attr(AttrParams)
	start := e.offset
	end := e.offset + e.particleCount

	// Age the live particles and retire the expired ones.
	for i := start; i < end; i++ {
		if params.At(i, ParamAlive) != 1 {
			continue
		}
		age := params.At(i, ParamAge) + dt*e.direction
		maxAge := params.At(i, ParamMaxAge)
		if e.direction > 0 && age >= maxAge {
			age = 0
			params.SetComponent(i, ParamAlive, 0)
			e.activeCount--
		} else if e.direction < 0 && age <= 0 {
			age = maxAge
			params.SetComponent(i, ParamAlive, 0)
			e.activeCount--
		}
		params.SetComponent(i, ParamAge, age)
	}

	if !e.alive {
		e.age = 0
		return
	}

	if e.duration > 0 && e.age > e.duration {
		e.alive = false
		e.age = 0
		for _, fn := range e.onComplete {
			fn()
		}
		return
	}

	// Continuous activation: the fractional cursor advances by the
	// activation budget for this tick, clamped to the range end.
	ppsDt := e.particlesPerSecond * e.activeMultiplier * dt
	activationStart := float32(math.Floor(float64(e.activationIndex)))
	if e.particleCount == 1 {
		activationStart = e.activationIndex
	}
	activationEnd := activationStart + ppsDt
	if activationEnd > float32(end) {
		activationEnd = float32(end)
	}
	count := int(activationEnd) - int(activationStart)

	if count > 0 {
		stagger := dt / float32(count)
		for i, j := int(activationStart), 0; i < int(activationEnd); i, j = i+1, j+1 {
			// Skip slots still alive; a single-slot emitter may
			// re-trigger immediately.
			if e.particleCount != 1 && params.At(i, ParamAlive) == 1 {
				continue
			}
			e.activate(i, float32(j)*stagger)
		}
	}

	e.activationIndex += ppsDt
	if e.activationIndex > float32(end) {
		e.activationIndex = float32(start)
	}

	e.age += dt
}

// activate brings slot i to life, re-randomizing every channel flagged for
// respawn sampling or pending a configuration change, and staggering the
// initial age so a batch of simultaneous activations doesn't clump.
func (e *Emitter) activate(i int, initialAge float32) {
	params := e.attr(AttrParams)
	if params.At(i, ParamAlive) != 1 {
		e.activeCount++
	}

	for ch := channel(0); ch < channelCount; ch++ {
		if !e.resetFlags[ch] && !e.updateFlags[ch] {
			continue
		}
		e.assign(ch, i)
		if e.updateFlags[ch] {
			e.updateCounts[ch]++
			if e.updateCounts[ch] >= e.particleCount*2 {
				e.updateFlags[ch] = false
				e.updateCounts[ch] = 0
			}
		}
	}

	params.SetComponent(i, ParamAlive, 1)
	params.SetComponent(i, ParamAge, initialAge)
}

// populate assigns every channel of every slot in the emitter's range.
// Called once when the emitter joins a group.
func (e *Emitter) populate() {
	for i := e.offset; i < e.offset+e.particleCount; i++ {
		for ch := channel(0); ch < channelCount; ch++ {
			e.assign(ch, i)
		}
	}
	if e.isStatic {
		// Static emitters show every slot immediately and never tick.
		e.activeCount = e.particleCount
	}
}

// assign dispatches one channel assignment for slot i.
func (e *Emitter) assign(ch channel, i int) {
	switch ch {
	case chPosition:
		e.assignPosition(i)
	case chVelocity:
		e.assignForce(AttrVelocity, e.velocity, i)
	case chAcceleration:
		e.assignForce(AttrAcceleration, e.acceleration, i)
	case chOrbit:
		e.assignAxis(AttrOrbit, e.orbit, i)
	case chRotation:
		e.assignAxis(AttrRotation, e.rotation, i)
	case chColor:
		e.assignColor(i)
	case chOpacity:
		e.assignCurve(AttrOpacity, e.opacity, 1, true, i)
	case chSize:
		e.assignCurve(AttrSize, e.size, 1, true, i)
	case chAngle:
		e.assignCurve(AttrAngle, e.angle, 0, false, i)
	case chParams:
		e.assignParams(i)
	}
}

func (e *Emitter) distributionFor(c Vec3Channel) Distribution {
	if c.Distribution != DistUnset {
		return c.Distribution
	}
	return e.distribution
}

func (e *Emitter) assignPosition(i int) {
	rng := e.rng()
	c := e.position
	var v Vec3

	switch e.distributionFor(c) {
	case DistSphere:
		v = sampleSphere(rng, c, true)
		v = v.Add(c.Value)
	case DistDisc:
		v = sampleSphere(rng, c, false)
		v = v.Add(c.Value)
	case DistLine:
		t := rng.Float()
		v = Vec3{
			lerp(c.Value.X, c.Spread.X, t),
			lerp(c.Value.Y, c.Spread.Y, t),
			lerp(c.Value.Z, c.Spread.Z, t),
		}
	default:
		v = rng.SpreadVec3(c.Value, c.Spread)
		if c.SpreadClamp.X != 0 {
			v.X = roundToMultiple(v.X, c.SpreadClamp.X)
		}
		if c.SpreadClamp.Y != 0 {
			v.Y = roundToMultiple(v.Y, c.SpreadClamp.Y)
		}
		if c.SpreadClamp.Z != 0 {
			v.Z = roundToMultiple(v.Z, c.SpreadClamp.Z)
		}
	}

	e.attr(AttrPosition).SetVec3(i, v.X, v.Y, v.Z)
}

// sampleSphere samples a point on a sphere surface (or disc edge when
// withDepth is false) of radius c.Radius ± c.Spread.X/2, scaled per axis
// by c.RadiusScale. c.SpreadClamp.X quantizes the sampled radius.
func sampleSphere(rng *Source, c Vec3Channel, withDepth bool) Vec3 {
	depth := float32(0)
	if withDepth {
		depth = 2*rng.Float() - 1
	}
	t := 2 * float32(math.Pi) * rng.Float()
	r := float32(math.Sqrt(float64(1 - depth*depth)))

	rad := rng.Spread(c.Radius, c.Spread.X)
	if c.SpreadClamp.X != 0 {
		rad = roundToMultiple(rad, c.SpreadClamp.X)
	}

	return Vec3{
		r * float32(math.Cos(float64(t))) * rad * c.RadiusScale.X,
		r * float32(math.Sin(float64(t))) * rad * c.RadiusScale.Y,
		depth * rad * c.RadiusScale.Z,
	}
}

func (e *Emitter) assignForce(attr Attr, c Vec3Channel, i int) {
	rng := e.rng()
	var v Vec3

	switch e.distributionFor(c) {
	case DistSphere, DistDisc:
		// Radial: direction follows the already-assigned position
		// relative to the emitter's base position.
		pos := e.attr(AttrPosition)
		dir := Vec3{
			pos.At(i, 0) - e.position.Value.X,
			pos.At(i, 1) - e.position.Value.Y,
			pos.At(i, 2) - e.position.Value.Z,
		}.Normalize()
		v = dir.Scale(rng.Spread(c.Value.X, c.Spread.X))
	case DistLine:
		t := rng.Float()
		v = Vec3{
			lerp(c.Value.X, c.Spread.X, t),
			lerp(c.Value.Y, c.Spread.Y, t),
			lerp(c.Value.Z, c.Spread.Z, t),
		}
	default:
		v = rng.SpreadVec3(c.Value, c.Spread)
	}

	if attr == AttrAcceleration {
		drag := clamp01(rng.Spread(e.drag.Value, e.drag.Spread))
		e.attr(attr).SetVec4(i, v.X, v.Y, v.Z, drag)
		return
	}
	e.attr(attr).SetVec3(i, v.X, v.Y, v.Z)
}

func (e *Emitter) assignCurve(attr Attr, c CurveChannel, def float32, abs bool, i int) {
	rng := e.rng()
	value, spread := c.normalized(def)

	var out [CurveKeys]float32
	if flatCurve(value, spread) {
		// One sample broadcast across every keyframe.
		s := rng.Spread(value[0], spread[0])
		if abs {
			s = absf(s)
		}
		for k := range out {
			out[k] = s
		}
	} else {
		for k := range out {
			s := rng.Spread(value[k], spread[k])
			if abs {
				s = absf(s)
			}
			out[k] = s
		}
	}
	e.attr(attr).SetVec4(i, out[0], out[1], out[2], out[3])
}

func (e *Emitter) assignColor(i int) {
	rng := e.rng()
	value, spread := e.color.normalized()

	var out [CurveKeys]float32
	for k := range out {
		c := rng.SpreadVec3(value[k], spread[k])
		out[k] = PackColor(clamp01(c.X), clamp01(c.Y), clamp01(c.Z))
	}
	e.attr(AttrColor).SetVec4(i, out[0], out[1], out[2], out[3])
}

func (e *Emitter) assignAxis(attr Attr, c AxisChannel, i int) {
	rng := e.rng()
	axis := rng.SpreadVec3(c.Axis, c.AxisSpread).Normalize()
	angle := rng.Spread(c.Angle, c.AngleSpread)
	staticFlag := float32(0)
	if c.Static {
		staticFlag = 1
	}
	e.attr(attr).SetVec3(i, PackAxis(axis), angle, staticFlag)

	if attr == AttrOrbit {
		e.attr(AttrOrbitCenter).SetVec3(i, c.Center.X, c.Center.Y, c.Center.Z)
	}
}

func (e *Emitter) assignParams(i int) {
	rng := e.rng()
	alive := float32(0)
	if e.isStatic {
		alive = 1
	}
	maxAge := absf(rng.Spread(e.maxAge.Value, e.maxAge.Spread))
	wiggle := rng.Spread(e.wiggle.Value, e.wiggle.Spread)
	e.attr(AttrParams).SetVec4(i, alive, 0, maxAge, wiggle)
}
