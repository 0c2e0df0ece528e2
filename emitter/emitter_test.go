package emitter

import "testing"

const testDT = float32(1.0 / 60.0)

func quietDiag(t *testing.T) *int {
	t.Helper()
	count := 0
	old := Diag
	Diag = func(msg string, args ...any) { count++ }
	t.Cleanup(func() { Diag = old })
	return &count
}

func newTestGroup(max int) *Group {
	return NewGroup(GroupConfig{MaxParticleCount: max, Seed: 1234})
}

func TestEmitterDefaults(t *testing.T) {
	e := New(Config{})

	if e.Count() != 100 {
		t.Errorf("expected default particle count 100, got %d", e.Count())
	}
	if !e.Alive() {
		t.Error("expected emitter to start alive")
	}
	if e.Offset() != -1 {
		t.Errorf("expected detached offset -1, got %d", e.Offset())
	}
	if e.MaxLifetime() != 2 {
		t.Errorf("expected default max lifetime 2, got %f", e.MaxLifetime())
	}
}

func TestEmitterInfiniteDurationNeverDies(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 10, MaxAge: ScalarChannel{Value: 0.5}})
	g.Add(e)

	for i := 0; i < 1200; i++ { // 20 simulated seconds
		g.Tick(testDT)
	}
	if !e.Alive() {
		t.Error("emitter with no duration self-transitioned to dead")
	}
}

func TestEmitterDurationCompletion(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 10, Duration: 1, MaxAge: ScalarChannel{Value: 0.5}})
	completions := 0
	e.OnCompletion(func() { completions++ })
	g.Add(e)

	for i := 0; i < 120; i++ { // 2 simulated seconds
		g.Tick(testDT)
	}

	if e.Alive() {
		t.Error("expected emitter dead after exceeding its duration")
	}
	if e.Age() != 0 {
		t.Errorf("expected age reset to 0 on completion, got %f", e.Age())
	}
	if completions != 1 {
		t.Errorf("expected completion callbacks to fire exactly once, fired %d times", completions)
	}

	// Re-enabling restarts the cycle and allows a second completion.
	e.Enable()
	for i := 0; i < 120; i++ {
		g.Tick(testDT)
	}
	if completions != 2 {
		t.Errorf("expected a second completion after re-enable, got %d", completions)
	}
}

func TestEmitterActivatesAllSlotsWithinOneLifetime(t *testing.T) {
	const n = 10
	const maxAge = float32(2)

	g := newTestGroup(0)
	e := New(Config{ParticleCount: n, MaxAge: ScalarChannel{Value: maxAge}})
	g.Add(e)

	prev := 0
	for i := 0; i < 120; i++ { // exactly maxAge seconds
		g.Tick(testDT)
		// Activation is monotone during the first lifetime: nothing
		// dies before maxAge seconds have elapsed per slot.
		if e.ActiveCount() < prev {
			t.Fatalf("particle died before its lifetime elapsed at tick %d", i)
		}
		prev = e.ActiveCount()
	}
	if e.ActiveCount() != n {
		t.Errorf("expected all %d slots active after one lifetime, got %d", n, e.ActiveCount())
	}
}

func TestEmitterRecyclesSlots(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 8, MaxAge: ScalarChannel{Value: 0.5}})
	g.Add(e)

	for i := 0; i < 600; i++ { // many lifetimes
		g.Tick(testDT)
		if e.ActiveCount() > 8 {
			t.Fatalf("active count exceeded slot count: %d", e.ActiveCount())
		}
		if e.ActiveCount() < 0 {
			t.Fatalf("active count went negative: %d", e.ActiveCount())
		}
	}
	if e.ActiveCount() == 0 {
		t.Error("expected steady-state recycling to keep particles live")
	}
}

func TestEmitterReverseDirection(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 5, Direction: -1, MaxAge: ScalarChannel{Value: 1}})
	g.Add(e)

	for i := 0; i < 300; i++ {
		g.Tick(testDT)
	}

	// Reverse-aged particles die at age <= 0 and park at maxAge.
	params := g.Attribute(AttrParams)
	for i := 0; i < 5; i++ {
		if params.At(i, ParamAlive) == 0 && params.At(i, ParamAge) != params.At(i, ParamMaxAge) {
			t.Errorf("slot %d: dead reverse particle should rest at maxAge, age=%f maxAge=%f",
				i, params.At(i, ParamAge), params.At(i, ParamMaxAge))
		}
	}
}

func TestEmitterDisableStopsActivation(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 10, MaxAge: ScalarChannel{Value: 0.5}})
	g.Add(e)

	for i := 0; i < 30; i++ {
		g.Tick(testDT)
	}
	e.Disable()

	// Existing particles age out; nothing new activates.
	for i := 0; i < 60; i++ { // > maxAge
		g.Tick(testDT)
	}
	if e.ActiveCount() != 0 {
		t.Errorf("expected all particles dead after disable + lifetime, got %d", e.ActiveCount())
	}
	if e.Alive() {
		t.Error("expected emitter to stay dead until Enable")
	}
}

func TestEmitterStaticSkipsScheduling(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 5, IsStatic: true, MaxAge: ScalarChannel{Value: 0.1}})
	g.Add(e)

	if e.ActiveCount() != 5 {
		t.Fatalf("expected static emitter fully populated, got %d", e.ActiveCount())
	}
	for i := 0; i < 120; i++ {
		g.Tick(testDT)
	}
	if e.ActiveCount() != 5 {
		t.Errorf("static emitter's particles aged out: %d", e.ActiveCount())
	}
}

func TestEmitterSingleSlotReactivation(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 1, MaxAge: ScalarChannel{Value: 0.5}})
	g.Add(e)

	for i := 0; i < 120; i++ {
		g.Tick(testDT)
	}
	// A single-slot emitter re-triggers immediately each time its
	// fractional cursor laps the range, without waiting for death.
	if e.ActiveCount() != 1 {
		t.Errorf("expected the single slot live, got %d", e.ActiveCount())
	}
}

func TestEmitterSetterReappliesChannel(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 4, MaxAge: ScalarChannel{Value: 0.25}})
	g.Add(e)

	e.SetSize(CurveChannel{Value: []float32{9}})
	if !e.updateFlags[chSize] {
		t.Fatal("expected size channel flagged after setter")
	}

	for i := 0; i < 120; i++ {
		g.Tick(testDT)
	}

	size := g.Attribute(AttrSize)
	for i := 0; i < 4; i++ {
		if got := size.At(i, 0); got != 9 {
			t.Errorf("slot %d: expected re-applied size 9, got %f", i, got)
		}
	}
	// The flag self-clears after twice the particle count of
	// applications.
	if e.updateFlags[chSize] {
		t.Error("expected size update flag cleared after the smoothing window")
	}
}

func TestEmitterDetachedTickRejected(t *testing.T) {
	diags := quietDiag(t)
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 3})
	g.Add(e)
	g.Remove(e)

	before := *diags
	e.tick(testDT)
	if *diags != before+1 {
		t.Error("expected a diagnostic for ticking a detached emitter")
	}
	if e.Group() != nil || e.Offset() != -1 {
		t.Error("expected emitter fully detached after removal")
	}
}

func TestEmitterBoxPositionSpread(t *testing.T) {
	g := newTestGroup(10)
	e := New(Config{
		ParticleCount: 5,
		IsStatic:      true,
		Position:      Vec3Channel{Spread: Vec3{10, 10, 10}},
	})
	g.Add(e)

	pos := g.Attribute(AttrPosition)
	params := g.Attribute(AttrParams)
	for i := 0; i < 5; i++ {
		for c := 0; c < 3; c++ {
			if v := pos.At(i, c); v < -5 || v > 5 {
				t.Errorf("slot %d component %d outside ±5: %f", i, c, v)
			}
		}
		if params.At(i, ParamAlive) != 1 {
			t.Errorf("slot %d: expected alive static particle", i)
		}
	}
	if g.ParticleCount() != 5 {
		t.Errorf("expected group particle count 5, got %d", g.ParticleCount())
	}
}

func TestEmitterSpherePositionRadius(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{
		ParticleCount: 50,
		IsStatic:      true,
		Type:          DistSphere,
		Position:      Vec3Channel{Value: Vec3{1, 2, 3}, Radius: 4},
	})
	g.Add(e)

	pos := g.Attribute(AttrPosition)
	for i := 0; i < 50; i++ {
		p := Vec3{pos.At(i, 0), pos.At(i, 1), pos.At(i, 2)}
		r := p.Sub(Vec3{1, 2, 3}).Length()
		if absf(r-4) > 1e-3 {
			t.Errorf("slot %d: expected radius 4 from center, got %f", i, r)
		}
	}
}

func TestEmitterRadialVelocityPointsOutward(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{
		ParticleCount: 20,
		IsStatic:      true,
		Type:          DistSphere,
		Position:      Vec3Channel{Radius: 2},
		Velocity:      Vec3Channel{Value: Vec3{X: 3}},
	})
	g.Add(e)

	pos := g.Attribute(AttrPosition)
	vel := g.Attribute(AttrVelocity)
	for i := 0; i < 20; i++ {
		p := Vec3{pos.At(i, 0), pos.At(i, 1), pos.At(i, 2)}.Normalize()
		v := Vec3{vel.At(i, 0), vel.At(i, 1), vel.At(i, 2)}
		// v should be p scaled by the sampled magnitude 3.
		dot := p.X*v.X + p.Y*v.Y + p.Z*v.Z
		if absf(dot-3) > 1e-3 {
			t.Errorf("slot %d: expected radial speed 3, got %f", i, dot)
		}
	}
}

func TestEmitterDragPackedIntoAcceleration(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{
		ParticleCount: 10,
		IsStatic:      true,
		Drag:          ScalarChannel{Value: 2, Spread: 3}, // samples beyond [0,1]
	})
	g.Add(e)

	acc := g.Attribute(AttrAcceleration)
	for i := 0; i < 10; i++ {
		w := acc.At(i, 3)
		if w < 0 || w > 1 {
			t.Errorf("slot %d: drag outside [0,1]: %f", i, w)
		}
	}
}

func TestEmitterOpacityNonNegative(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{
		ParticleCount: 20,
		IsStatic:      true,
		Opacity:       CurveChannel{Value: []float32{0.1, 0.5}, Spread: []float32{5, 5}},
	})
	g.Add(e)

	op := g.Attribute(AttrOpacity)
	for i := 0; i < 20; i++ {
		for k := 0; k < CurveKeys; k++ {
			if op.At(i, k) < 0 {
				t.Errorf("slot %d keyframe %d: negative opacity %f", i, k, op.At(i, k))
			}
		}
	}
}

func TestEmitterParamsMaxAgeSpread(t *testing.T) {
	g := newTestGroup(0)
	e := New(Config{
		ParticleCount: 30,
		IsStatic:      true,
		MaxAge:        ScalarChannel{Value: 3, Spread: 2},
	})
	g.Add(e)

	params := g.Attribute(AttrParams)
	for i := 0; i < 30; i++ {
		m := params.At(i, ParamMaxAge)
		if m < 2 || m > 4 {
			t.Errorf("slot %d: maxAge outside 3±1: %f", i, m)
		}
	}
}
