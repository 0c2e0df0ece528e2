package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nebula/telemetry"
)

// Draw syncs dirty attribute ranges to the renderer and draws the scene.
// Upload and render are timed as their own perf sample, separate from the
// simulation ticks.
func (g *Game) Draw() {
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseUpload)

	g.particles.Sync(g.group)
	g.consumeUploads()

	g.perf.StartPhase(telemetry.PhaseRender)
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 8, G: 8, B: 16, A: 255})

	ex, ey, ez := g.cam.Position()
	cam3d := rl.Camera3D{
		Position:   rl.Vector3{X: ex, Y: ey, Z: ez},
		Target:     rl.Vector3{X: g.cam.TargetX, Y: g.cam.TargetY, Z: g.cam.TargetZ},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       60,
		Projection: rl.CameraPerspective,
	}

	rl.BeginMode3D(cam3d)
	rl.DrawGrid(20, g.worldRadius/10)
	rl.DrawCircle3D(rl.Vector3{}, g.worldRadius, rl.Vector3{X: 1}, 90, rl.Color{R: 60, G: 60, B: 90, A: 120})
	g.particles.Draw(g.group, cam3d)
	rl.EndMode3D()

	g.drawHUD()
	if g.showPanel {
		g.drawControlPanel()
	}

	rl.EndDrawing()
	g.perf.EndTick()
	g.perf.RecordFrame()
}

// drawHUD renders the text overlay.
func (g *Game) drawHUD() {
	rl.DrawText(fmt.Sprintf("Tick: %d", g.tick), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Particles: %d/%d (cap %d)",
		g.group.LiveCount(), g.group.ParticleCount(), g.group.Capacity()), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Emitters: %d  Pool: %d",
		len(g.group.Emitters()), g.group.PoolSize()), 10, 60, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]  B: burst  C: compact  Tab: panel",
		g.stepsPerFrame), 10, 85, 20, rl.Gray)
	if g.paused {
		rl.DrawText("PAUSED", 10, 110, 20, rl.Yellow)
	}
}

// drawControlPanel renders the raygui tuning panel.
func (g *Game) drawControlPanel() {
	panelX := float32(rl.GetScreenWidth() - 270)
	panelY := float32(10)

	rl.DrawRectangle(int32(panelX)-10, int32(panelY)-5, 270, 170, rl.Color{R: 20, G: 20, B: 30, A: 200})
	rl.DrawText("Scene Controls", int32(panelX), int32(panelY), 20, rl.RayWhite)
	panelY += 30

	rl.DrawText("Fountain rate", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	newRate := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: 180, Height: 20},
		"0", "1",
		g.fountainRate, 0, 1,
	)
	rl.DrawText(fmt.Sprintf("%.2f", g.fountainRate), int32(panelX+190), int32(panelY+2), 16, rl.RayWhite)
	if newRate != g.fountainRate {
		g.fountainRate = newRate
		g.fountain.SetActiveMultiplier(newRate)
	}
	panelY += 30

	if g.fountain.Alive() {
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 26}, "Stop Fountain") {
			g.fountain.Disable()
		}
	} else {
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 26}, "Start Fountain") {
			g.fountain.Enable()
		}
	}
	panelY += 34

	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 26}, "Burst") {
		dir := g.randomUnit()
		g.triggerBurst(dir.Scale(g.worldRadius * 0.5))
	}
	if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 26}, "Compact") {
		g.group.Compact()
	}
}
