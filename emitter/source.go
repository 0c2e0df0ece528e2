package emitter

// Source is a seedable pseudo-random generator producing uniform floats in
// [0,1). A 32-bit linear congruential generator is enough here: sampling
// quality requirements are visual, and the same seed plus the same call
// sequence must reproduce bit-identical buffers for tests and replays.
//
// Not safe for concurrent use; each Group owns its own Source.
type Source struct {
	state uint32
}

// NewSource returns a Source seeded with seed.
func NewSource(seed uint32) *Source {
	return &Source{state: seed}
}

// Seed resets the generator state deterministically.
func (s *Source) Seed(seed uint32) {
	s.state = seed
}

// Float returns the next uniform float in [0,1).
func (s *Source) Float() float32 {
	s.state = s.state*1664525 + 1013904223
	return float32(s.state>>8) / float32(1<<24)
}

// Spread samples uniformly from base ± spread/2.
func (s *Source) Spread(base, spread float32) float32 {
	return base + spread*(s.Float()-0.5)
}

// SpreadVec3 samples each component uniformly from base ± spread/2.
func (s *Source) SpreadVec3(base, spread Vec3) Vec3 {
	return Vec3{
		s.Spread(base.X, spread.X),
		s.Spread(base.Y, spread.Y),
		s.Spread(base.Z, spread.Z),
	}
}
