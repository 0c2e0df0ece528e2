// Package components defines ECS components for the demo scene.
package components

import "github.com/pthm-cable/nebula/emitter"

// Position represents an entity's world position.
type Position struct {
	X, Y, Z float32
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y, Z float32
}

// Vec3 converts the position to the engine vector type.
func (p Position) Vec3() emitter.Vec3 {
	return emitter.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// Trail attaches a continuously emitting trail to a mover entity.
type Trail struct {
	Emitter *emitter.Emitter
}

// Mover holds per-entity demo state.
type Mover struct {
	// Hue in [0,1), used to tint the trail when spawned
	Hue float32

	// BounceCooldown suppresses burst triggers right after a wall hit
	BounceCooldown float32
}
