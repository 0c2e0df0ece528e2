package emitter

import "testing"

func TestGroupAddRejectsDoubleMembership(t *testing.T) {
	diags := quietDiag(t)
	g := newTestGroup(0)
	g2 := newTestGroup(0)
	e := New(Config{ParticleCount: 5})

	g.Add(e)
	if *diags != 0 {
		t.Fatalf("unexpected diagnostics on first add: %d", *diags)
	}

	g.Add(e)
	if *diags != 1 {
		t.Errorf("expected diagnostic re-adding a member, got %d", *diags)
	}
	g2.Add(e)
	if *diags != 2 {
		t.Errorf("expected diagnostic adding to a second group, got %d", *diags)
	}
	if g.ParticleCount() != 5 || g2.ParticleCount() != 0 {
		t.Errorf("rejected adds mutated state: %d / %d", g.ParticleCount(), g2.ParticleCount())
	}
}

func TestGroupCapacityWarning(t *testing.T) {
	diags := quietDiag(t)
	g := newTestGroup(10)

	g.Add(New(Config{ParticleCount: 5, IsStatic: true}))
	g.Add(New(Config{ParticleCount: 5, IsStatic: true}))
	if *diags != 0 {
		t.Fatalf("filling to the declared capacity should not warn, got %d diagnostics", *diags)
	}

	// The 11th slot exceeds the declared capacity: warn but proceed.
	g.Add(New(Config{ParticleCount: 1, IsStatic: true}))
	if *diags != 1 {
		t.Errorf("expected one capacity diagnostic, got %d", *diags)
	}
	if g.ParticleCount() != 11 {
		t.Errorf("expected 11 particles stored, got %d", g.ParticleCount())
	}
	if got := g.Attribute(AttrParams).At(10, ParamAlive); got != 1 {
		t.Errorf("expected the 11th slot's data stored, alive=%f", got)
	}
}

func TestGroupRemoveKillsSlotsImmediately(t *testing.T) {
	g := newTestGroup(10)
	a := New(Config{ParticleCount: 5, IsStatic: true})
	b := New(Config{
		ParticleCount: 5,
		IsStatic:      true,
		Position:      Vec3Channel{Value: Vec3{100, 0, 0}, Spread: Vec3{1, 1, 1}},
	})
	g.Add(a)
	g.Add(b)

	pos := g.Attribute(AttrPosition)
	before := make([]float32, 0, 15)
	for i := 5; i < 10; i++ {
		before = append(before, pos.At(i, 0), pos.At(i, 1), pos.At(i, 2))
	}

	g.Remove(a)

	params := g.Attribute(AttrParams)
	for i := 0; i < 5; i++ {
		if params.At(i, ParamAlive) != 0 || params.At(i, ParamAge) != 0 {
			t.Errorf("slot %d: expected alive=0 age=0 without a tick, got %f/%f",
				i, params.At(i, ParamAlive), params.At(i, ParamAge))
		}
	}
	after := make([]float32, 0, 15)
	for i := 5; i < 10; i++ {
		after = append(after, pos.At(i, 0), pos.At(i, 1), pos.At(i, 2))
	}
	for c := range before {
		if before[c] != after[c] {
			t.Errorf("remaining emitter's slot data changed at component %d", c)
		}
	}
	if g.ParticleCount() != 5 {
		t.Errorf("expected particle count 5 after removal, got %d", g.ParticleCount())
	}
}

func TestGroupRemoveRejectsNonMember(t *testing.T) {
	diags := quietDiag(t)
	g := newTestGroup(0)
	e := New(Config{ParticleCount: 5})

	g.Remove(e)
	if *diags != 1 {
		t.Errorf("expected diagnostic removing a non-member, got %d", *diags)
	}
}

func TestGroupFreeListReuse(t *testing.T) {
	g := newTestGroup(0)
	a := New(Config{ParticleCount: 5})
	b := New(Config{ParticleCount: 5})
	g.Add(a)
	g.Add(b)

	g.Remove(a)
	c := New(Config{ParticleCount: 5})
	g.Add(c)

	if c.Offset() != 0 {
		t.Errorf("expected freed range reused at offset 0, got %d", c.Offset())
	}
	if g.Capacity() != 10 {
		t.Errorf("expected capacity unchanged at 10, got %d", g.Capacity())
	}

	// A smaller emitter splits a larger free span.
	g.Remove(b)
	d := New(Config{ParticleCount: 2})
	g.Add(d)
	if d.Offset() != 5 {
		t.Errorf("expected split allocation at offset 5, got %d", d.Offset())
	}
}

func TestGroupCompactRebasesOffsets(t *testing.T) {
	g := newTestGroup(0)
	a := New(Config{ParticleCount: 4, IsStatic: true})
	b := New(Config{
		ParticleCount: 4,
		IsStatic:      true,
		Position:      Vec3Channel{Value: Vec3{7, 8, 9}},
	})
	g.Add(a)
	g.Add(b)
	g.Remove(a)

	g.Compact()

	if b.Offset() != 0 {
		t.Fatalf("expected remaining emitter rebased to offset 0, got %d", b.Offset())
	}
	if g.Capacity() != 4 {
		t.Errorf("expected capacity compacted to 4, got %d", g.Capacity())
	}
	pos := g.Attribute(AttrPosition)
	for i := 0; i < 4; i++ {
		if pos.At(i, 0) != 7 || pos.At(i, 1) != 8 || pos.At(i, 2) != 9 {
			t.Errorf("slot %d: compaction lost data: (%f, %f, %f)",
				i, pos.At(i, 0), pos.At(i, 1), pos.At(i, 2))
		}
	}
	if !g.Attribute(AttrPosition).FullUpload() {
		t.Error("expected compaction to flag a full upload")
	}
}

func TestGroupTickNoEmittersIsIdle(t *testing.T) {
	g := newTestGroup(0)
	g.Tick(testDT)

	for a := Attr(0); a < AttrCount; a++ {
		if g.Attribute(a).NeedsUpload() {
			t.Errorf("attribute %s dirty with zero emitters", a)
		}
	}
}

func TestGroupDirtyRangeIdempotence(t *testing.T) {
	g := newTestGroup(0)
	g.Add(New(Config{ParticleCount: 5, IsStatic: true}))

	// First tick flushes the structural full upload.
	g.Tick(testDT)
	if !g.Attribute(AttrPosition).FullUpload() {
		t.Fatal("expected full upload after add")
	}
	if !g.UsageReset() {
		t.Error("expected one-shot usage reset armed after the full upload")
	}

	// Steady state with a static emitter touches nothing.
	g.Tick(testDT)
	if g.UsageReset() {
		t.Error("expected usage reset flag cleared on the following tick")
	}
	for a := Attr(0); a < AttrCount; a++ {
		if g.Attribute(a).NeedsUpload() {
			t.Errorf("attribute %s dirty in steady state", a)
		}
	}
}

func TestGroupTickMarksParamsRange(t *testing.T) {
	g := newTestGroup(0)
	g.Add(New(Config{ParticleCount: 10, MaxAge: ScalarChannel{Value: 1}}))

	// Run past the first activation (the fractional cursor needs to
	// cross a whole slot index before anything activates).
	for i := 0; i < 10; i++ {
		g.Tick(testDT)
	}

	if !g.Attribute(AttrParams).NeedsUpload() {
		t.Error("expected params buffer dirty while particles age")
	}
}

func TestGroupDeterminism(t *testing.T) {
	build := func() *Group {
		g := NewGroup(GroupConfig{Seed: 777})
		g.Add(New(Config{
			ParticleCount: 50,
			MaxAge:        ScalarChannel{Value: 1, Spread: 0.5},
			Position:      Vec3Channel{Spread: Vec3{4, 4, 4}},
			Velocity:      Vec3Channel{Value: Vec3{0, 1, 0}, Spread: Vec3{1, 1, 1}},
			Color:         ColorChannel{Value: []Vec3{{1, 0, 0}, {0, 0, 1}}, Spread: []Vec3{{0.2, 0.2, 0.2}}},
			Size:          CurveChannel{Value: []float32{1, 3}},
			Wiggle:        ScalarChannel{Value: 2},
		}))
		return g
	}

	g1, g2 := build(), build()
	for i := 0; i < 200; i++ {
		g1.Tick(testDT)
		g2.Tick(testDT)
	}

	for a := Attr(0); a < AttrCount; a++ {
		d1 := g1.Attribute(a).Array().Data
		d2 := g2.Attribute(a).Array().Data
		if len(d1) != len(d2) {
			t.Fatalf("attribute %s: storage length diverged", a)
		}
		for c := range d1 {
			if d1[c] != d2[c] {
				t.Fatalf("attribute %s: component %d diverged: %f != %f", a, c, d1[c], d2[c])
			}
		}
	}
}

func TestGroupFeatureScan(t *testing.T) {
	g := newTestGroup(0)
	if g.Features() != 0 {
		t.Fatalf("expected no features on empty group, got %b", g.Features())
	}

	e := New(Config{
		ParticleCount: 5,
		Wiggle:        ScalarChannel{Value: 1},
		Orbit:         AxisChannel{Axis: Vec3{0, 1, 0}, Angle: 3},
	})
	g.Add(e)

	f := g.Features()
	if f&FeatureWiggle == 0 {
		t.Error("expected wiggle feature set")
	}
	if f&FeatureOrbit == 0 {
		t.Error("expected orbit feature set")
	}
	if f&FeatureTextureRotation != 0 {
		t.Error("texture rotation feature set without angle config")
	}

	g.Remove(e)
	if g.Features() != 0 {
		t.Errorf("expected features cleared after removal, got %b", g.Features())
	}
}

func TestGroupLiveCountFollowsEmitters(t *testing.T) {
	g := newTestGroup(0)
	a := New(Config{ParticleCount: 5, IsStatic: true})
	b := New(Config{ParticleCount: 10, MaxAge: ScalarChannel{Value: 1}})
	g.Add(a)
	g.Add(b)

	if g.LiveCount() != 5 {
		t.Errorf("expected 5 live static particles, got %d", g.LiveCount())
	}
	for i := 0; i < 60; i++ {
		g.Tick(testDT)
	}
	if g.LiveCount() <= 5 {
		t.Errorf("expected dynamic activations to raise the live count, got %d", g.LiveCount())
	}
	if g.LiveCount() > 15 {
		t.Errorf("live count exceeded total slots: %d", g.LiveCount())
	}
}

func TestGroupFixedTimeStepFallback(t *testing.T) {
	g := NewGroup(GroupConfig{FixedTimeStep: 0.25})
	g.Add(New(Config{ParticleCount: 5}))

	g.Tick(0)
	if g.DeltaTime() != 0.25 {
		t.Errorf("expected fallback dt 0.25, got %f", g.DeltaTime())
	}
	if g.RunTime() != 0.25 {
		t.Errorf("expected run time accumulated, got %f", g.RunTime())
	}
}
