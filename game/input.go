package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nebula/emitter"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerFrame > 1 {
		g.stepsPerFrame--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerFrame < 10 {
		g.stepsPerFrame++
	}

	// Manual burst at a random point on the world sphere
	if rl.IsKeyPressed(rl.KeyB) {
		dir := g.randomUnit()
		at := emitter.Vec3{
			X: dir.X * g.worldRadius * 0.6,
			Y: dir.Y * g.worldRadius * 0.6,
			Z: dir.Z * g.worldRadius * 0.6,
		}
		g.triggerBurst(at)
	}

	// Compact the group's slot layout after emitters churn
	if rl.IsKeyPressed(rl.KeyC) {
		g.group.Compact()
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.showPanel = !g.showPanel
	}

	g.handleCameraInput()
}

// handleCameraInput drives the orbit camera with the right mouse button
// and the scroll wheel.
func (g *Game) handleCameraInput() {
	if g.cam == nil {
		return
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		g.cam.Rotate(delta.X*0.005, -delta.Y*0.005)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.cam.Dolly(-wheel * g.worldRadius * 0.1)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.cam.Reset(g.worldRadius * 2.5)
	}
}
