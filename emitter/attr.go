package emitter

// Attr identifies one of the fixed per-particle attribute buffers owned by
// a Group. A particle slot is an index shared by every buffer at once; its
// full state is the union of the values at that index across all of them.
type Attr int

const (
	// AttrPosition holds x, y, z.
	AttrPosition Attr = iota
	// AttrVelocity holds vx, vy, vz.
	AttrVelocity
	// AttrAcceleration holds ax, ay, az plus drag in w, clamped to [0,1].
	AttrAcceleration
	// AttrOrbit holds packed orbit axis, orbit angle, and a static flag.
	AttrOrbit
	// AttrOrbitCenter holds the per-particle orbit center point.
	AttrOrbitCenter
	// AttrRotation holds packed self-rotation axis, angle, and static flag.
	AttrRotation
	// AttrParams holds alive (0/1), age, maxAge, wiggle.
	AttrParams
	// AttrSize holds four lifetime-keyframe sizes.
	AttrSize
	// AttrAngle holds four lifetime-keyframe sprite angles.
	AttrAngle
	// AttrColor holds four packed RGB lifetime keyframes.
	AttrColor
	// AttrOpacity holds four lifetime-keyframe opacities.
	AttrOpacity

	// AttrCount is the number of attribute buffers.
	AttrCount
)

// CurveKeys is the number of evenly spaced lifetime keyframes stored for
// the value-over-lifetime channels (size, angle, color, opacity).
const CurveKeys = 4

var attrNames = [AttrCount]string{
	"position", "velocity", "acceleration", "orbit", "orbitCenter",
	"rotation", "params", "size", "angle", "color", "opacity",
}

var attrStrides = [AttrCount]int{
	3, 3, 4, 3, 3, 3, 4, CurveKeys, CurveKeys, CurveKeys, CurveKeys,
}

// String returns the attribute's buffer name as the renderer knows it.
func (a Attr) String() string {
	if a < 0 || a >= AttrCount {
		return "unknown"
	}
	return attrNames[a]
}

// Stride returns the components-per-element item size of the attribute.
func (a Attr) Stride() int {
	return attrStrides[a]
}

// Components within AttrParams.
const (
	ParamAlive = iota
	ParamAge
	ParamMaxAge
	ParamWiggle
)
