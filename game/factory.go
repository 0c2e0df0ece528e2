package game

import (
	"math"

	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/emitter"
)

// fountainConfig builds the central fountain: particles launch upward
// from a small disc, fall under gravity and fade out.
func fountainConfig(cfg *config.Config) emitter.Config {
	return emitter.Config{
		ParticleCount: cfg.Demo.FountainParticles,
		Type:          emitter.DistDisc,
		Position: emitter.Vec3Channel{
			Radius: 0.4,
		},
		Velocity: emitter.Vec3Channel{
			Distribution: emitter.DistBox,
			Value:        emitter.Vec3{Y: 8},
			Spread:       emitter.Vec3{X: 2.5, Y: 2, Z: 2.5},
		},
		Acceleration: emitter.Vec3Channel{
			Distribution: emitter.DistBox,
			Value:        emitter.Vec3{Y: -9.8},
		},
		MaxAge: emitter.ScalarChannel{Value: 3, Spread: 1},
		Size:   emitter.CurveChannel{Value: []float32{0.15, 0.4, 0.3, 0.05}},
		Opacity: emitter.CurveChannel{
			Value: []float32{0, 0.9, 0.7, 0},
		},
		Color: emitter.ColorChannel{
			Value:  []emitter.Vec3{{X: 0.4, Y: 0.7, Z: 1}, {X: 0.2, Y: 0.4, Z: 1}, {X: 0.1, Y: 0.2, Z: 0.8}},
			Spread: []emitter.Vec3{{X: 0.1, Y: 0.1, Z: 0.1}},
		},
		Wiggle: emitter.ScalarChannel{Value: 0, Spread: 2},
	}
}

// trailConfig builds a mover trail: short-lived particles spawned in a
// tight sphere around the mover, drifting slowly and shrinking.
func trailConfig(hue float32) emitter.Config {
	r, g, b := hueToRGB(hue)
	return emitter.Config{
		ParticleCount: 150,
		Type:          emitter.DistSphere,
		Position: emitter.Vec3Channel{
			Radius: 0.15,
		},
		Velocity: emitter.Vec3Channel{
			Distribution: emitter.DistSphere,
			Value:        emitter.Vec3{X: 0.3},
			Spread:       emitter.Vec3{X: 0.2},
		},
		Drag:   emitter.ScalarChannel{Value: 0.6},
		MaxAge: emitter.ScalarChannel{Value: 1.2, Spread: 0.4},
		Size:   emitter.CurveChannel{Value: []float32{0.25, 0.15, 0.08, 0}},
		Opacity: emitter.CurveChannel{
			Value: []float32{0.8, 0.5, 0.2, 0},
		},
		Color: emitter.ColorChannel{
			Value: []emitter.Vec3{{X: r, Y: g, Z: b}},
		},
	}
}

// burstConfig builds a one-shot explosion used by the emitter pool.
// Duration is just past MaxAge so the pool can recycle it.
func burstConfig(particleCount int) emitter.Config {
	return emitter.Config{
		ParticleCount:    particleCount,
		Type:             emitter.DistSphere,
		Duration:         0.1,
		ActiveMultiplier: 1,
		Position: emitter.Vec3Channel{
			Radius: 0.1,
		},
		Velocity: emitter.Vec3Channel{
			Distribution: emitter.DistSphere,
			Value:        emitter.Vec3{X: 6},
			Spread:       emitter.Vec3{X: 4},
		},
		Drag:   emitter.ScalarChannel{Value: 0.8},
		MaxAge: emitter.ScalarChannel{Value: 1.0, Spread: 0.5},
		Size:   emitter.CurveChannel{Value: []float32{0.3, 0.2, 0.1, 0}},
		Opacity: emitter.CurveChannel{
			Value: []float32{1, 0.8, 0.3, 0},
		},
		Color: emitter.ColorChannel{
			Value:  []emitter.Vec3{{X: 1, Y: 0.8, Z: 0.3}, {X: 1, Y: 0.4, Z: 0.1}, {X: 0.6, Y: 0.1, Z: 0.05}},
			Spread: []emitter.Vec3{{X: 0.2, Y: 0.1, Z: 0}},
		},
	}
}

// hueToRGB converts a hue in [0,1) at full saturation and value.
func hueToRGB(h float32) (r, g, b float32) {
	h = float32(math.Mod(float64(h), 1)) * 6
	sector := int(h)
	f := h - float32(sector)
	switch sector % 6 {
	case 0:
		return 1, f, 0
	case 1:
		return 1 - f, 1, 0
	case 2:
		return 0, 1, f
	case 3:
		return 0, 1 - f, 1
	case 4:
		return f, 0, 1
	default:
		return 1, 0, 1 - f
	}
}
