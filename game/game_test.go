package game

import (
	"io"
	"testing"

	"github.com/pthm-cable/nebula/config"
)

func newHeadlessGame(t *testing.T, seed int64) *Game {
	t.Helper()
	config.MustInit("")
	SetLogWriter(io.Discard)
	return NewGameWithOptions(Options{
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: 1,
	})
}

func TestHeadlessSimulationRuns(t *testing.T) {
	g := newHeadlessGame(t, 7)
	defer g.Unload()

	cfg := config.Cfg()
	wantEmitters := 1 + cfg.Demo.MoverCount + cfg.Demo.PoolSize
	if got := len(g.Group().Emitters()); got != wantEmitters {
		t.Fatalf("emitters = %d, want %d (fountain + movers + pool)", got, wantEmitters)
	}

	// Two simulated seconds is enough for the fountain and trails to
	// activate particles.
	for i := 0; i < 120; i++ {
		g.UpdateHeadless()
	}

	if g.Tick() != 120 {
		t.Fatalf("tick = %d, want 120", g.Tick())
	}
	if g.Group().LiveCount() == 0 {
		t.Fatal("no live particles after 2 simulated seconds")
	}
}

func TestHeadlessDeterminism(t *testing.T) {
	a := newHeadlessGame(t, 99)
	defer a.Unload()
	b := newHeadlessGame(t, 99)
	defer b.Unload()

	for i := 0; i < 300; i++ {
		a.UpdateHeadless()
		b.UpdateHeadless()
	}

	if a.Group().LiveCount() != b.Group().LiveCount() {
		t.Fatalf("same seed diverged: %d vs %d live particles",
			a.Group().LiveCount(), b.Group().LiveCount())
	}
}

func TestMoversStayInsideWorld(t *testing.T) {
	g := newHeadlessGame(t, 3)
	defer g.Unload()

	for i := 0; i < 600; i++ {
		g.UpdateHeadless()
	}

	limit := g.worldRadius * 1.01
	query := g.moverFilter.Query()
	for query.Next() {
		pos, _, _, _ := query.Get()
		dist := sqrt32(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
		if dist > limit {
			t.Fatalf("mover escaped to distance %v (world radius %v)", dist, g.worldRadius)
		}
	}
}
