package emitter

// Distribution selects how spatial channels (position, velocity,
// acceleration) sample their values. The set is closed and dispatched with
// a switch per channel assignment, once per particle activation.
type Distribution int

const (
	// DistUnset inherits the emitter-level distribution.
	DistUnset Distribution = iota
	// DistBox samples a uniform box with independent per-axis spread.
	DistBox
	// DistSphere samples a uniform sphere surface.
	DistSphere
	// DistDisc samples a uniform disc edge in the xy plane.
	DistDisc
	// DistLine interpolates between a start and an end point.
	DistLine
)

func (d Distribution) String() string {
	switch d {
	case DistBox:
		return "box"
	case DistSphere:
		return "sphere"
	case DistDisc:
		return "disc"
	case DistLine:
		return "line"
	default:
		return "unset"
	}
}

// Vec3Channel configures a vector-valued per-particle channel.
//
// For DistBox, a particle samples Value ± Spread/2 per axis, each axis
// optionally snapped to the nearest multiple of SpreadClamp. For DistSphere
// and DistDisc, Radius is the base radius, Spread.X is the radius spread,
// SpreadClamp.X quantizes the sampled radius, and RadiusScale stretches the
// result per axis. For DistLine, Value is the start point and Spread the
// end point.
type Vec3Channel struct {
	Value       Vec3
	Spread      Vec3
	SpreadClamp Vec3

	Radius      float32
	RadiusScale Vec3

	// Distribution overrides the emitter-level distribution when set.
	Distribution Distribution

	// Randomize re-samples the channel every time a particle respawns,
	// instead of only when the configuration changes.
	Randomize bool
}

// ScalarChannel configures a scalar channel sampled as Value ± Spread/2.
type ScalarChannel struct {
	Value  float32
	Spread float32
}

// CurveChannel configures a value-over-lifetime scalar channel. Value and
// Spread may each hold 1..CurveKeys entries; mismatched lengths are
// corrected by interpolating the shorter array up to the longer's length,
// then both are stretched to exactly CurveKeys keyframes.
type CurveChannel struct {
	Value  []float32
	Spread []float32

	Randomize bool
}

// normalized returns the channel's value and spread arrays stretched to
// CurveKeys entries, applying def when no values are configured.
func (c CurveChannel) normalized(def float32) (value, spread [CurveKeys]float32) {
	v := c.Value
	if len(v) == 0 {
		v = []float32{def}
	}
	copy(value[:], interpolateArray(v, CurveKeys))
	if len(c.Spread) > 0 {
		copy(spread[:], interpolateArray(c.Spread, CurveKeys))
	}
	return value, spread
}

// flat reports whether every keyframe value and spread is identical, in
// which case one sample can be broadcast across all keyframes.
func flatCurve(value, spread [CurveKeys]float32) bool {
	for i := 1; i < CurveKeys; i++ {
		if value[i] != value[0] || spread[i] != spread[0] {
			return false
		}
	}
	return true
}

// ColorChannel configures the RGB-over-lifetime channel. Value holds base
// colors with components in [0,1]; Spread perturbs each component, clamped
// back to [0,1] before packing.
type ColorChannel struct {
	Value  []Vec3
	Spread []Vec3

	Randomize bool
}

// normalized stretches value and spread to CurveKeys keyframes, defaulting
// to white.
func (c ColorChannel) normalized() (value, spread [CurveKeys]Vec3) {
	v := c.Value
	if len(v) == 0 {
		v = []Vec3{{1, 1, 1}}
	}
	copy(value[:], interpolateVec3Array(v, CurveKeys))
	if len(c.Spread) > 0 {
		copy(spread[:], interpolateVec3Array(c.Spread, CurveKeys))
	}
	return value, spread
}

// AxisChannel configures the orbit and self-rotation channels: a base axis
// perturbed per particle by AxisSpread and normalized, an angle sampled as
// Angle ± AngleSpread/2, a static flag, and (for orbiting) the center
// point the particle revolves around.
type AxisChannel struct {
	Axis        Vec3
	AxisSpread  Vec3
	Angle       float32
	AngleSpread float32
	Static      bool
	Center      Vec3

	Randomize bool
}

// active reports whether the channel produces any visible motion.
func (c AxisChannel) active() bool {
	return c.Angle != 0 || c.AngleSpread != 0
}
