// Package camera provides an orbit camera for viewing the particle scene.
package camera

import "math"

// Orbit circles a target point at a given distance. Yaw and pitch are in
// radians; pitch is clamped away from the poles so the up vector stays
// valid.
type Orbit struct {
	// Target is the point the camera looks at
	TargetX, TargetY, TargetZ float32

	Yaw      float32
	Pitch    float32
	Distance float32

	// Distance constraints
	MinDistance, MaxDistance float32
}

const (
	pitchLimit = float32(math.Pi/2) - 0.05

	defaultYaw   = float32(math.Pi / 4)
	defaultPitch = float32(0.4)
)

// New creates an orbit camera looking at the origin from the given
// distance.
func New(distance float32) *Orbit {
	if distance <= 0 {
		distance = 10
	}
	return &Orbit{
		Yaw:         defaultYaw,
		Pitch:       defaultPitch,
		Distance:    distance,
		MinDistance: distance * 0.2,
		MaxDistance: distance * 5,
	}
}

// Rotate adjusts yaw and pitch by the given deltas, clamping pitch.
func (o *Orbit) Rotate(dyaw, dpitch float32) {
	o.Yaw += dyaw
	o.Pitch += dpitch
	if o.Pitch > pitchLimit {
		o.Pitch = pitchLimit
	}
	if o.Pitch < -pitchLimit {
		o.Pitch = -pitchLimit
	}
}

// Dolly moves the camera toward or away from the target. Positive delta
// zooms out.
func (o *Orbit) Dolly(delta float32) {
	o.Distance += delta
	if o.Distance < o.MinDistance {
		o.Distance = o.MinDistance
	}
	if o.Distance > o.MaxDistance {
		o.Distance = o.MaxDistance
	}
}

// Reset restores the default orientation, keeping the target and
// distance limits.
func (o *Orbit) Reset(distance float32) {
	o.Yaw = defaultYaw
	o.Pitch = defaultPitch
	o.Distance = distance
	if o.Distance < o.MinDistance {
		o.Distance = o.MinDistance
	}
	if o.Distance > o.MaxDistance {
		o.Distance = o.MaxDistance
	}
}

// Position returns the camera eye position in world coordinates.
func (o *Orbit) Position() (x, y, z float32) {
	cy := float32(math.Cos(float64(o.Yaw)))
	sy := float32(math.Sin(float64(o.Yaw)))
	cp := float32(math.Cos(float64(o.Pitch)))
	sp := float32(math.Sin(float64(o.Pitch)))

	x = o.TargetX + o.Distance*cp*cy
	y = o.TargetY + o.Distance*sp
	z = o.TargetZ + o.Distance*cp*sy
	return x, y, z
}
