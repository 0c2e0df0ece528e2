// Package renderer draws a particle group with raylib. It plays the role
// of the rendering backend the engine core targets: it keeps a
// device-side copy of every attribute buffer, re-uploads only the spans
// the group marked dirty, and draws as many billboards as there are live
// particles.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nebula/emitter"
)

// deviceBuffer is the device-side mirror of one attribute buffer.
type deviceBuffer struct {
	data []float32
}

// upload copies one component span from the CPU array into the mirror,
// growing it when the backing storage grew.
func (b *deviceBuffer) upload(src []float32, offset, count int) {
	if len(b.data) < len(src) {
		grown := make([]float32, len(src))
		copy(grown, b.data)
		b.data = grown
	}
	if offset+count > len(src) {
		count = len(src) - offset
	}
	copy(b.data[offset:offset+count], src[offset:offset+count])
}

// ParticleRenderer renders a particle group as camera-facing billboards.
type ParticleRenderer struct {
	tex     rl.Texture2D
	buffers [emitter.AttrCount]deviceBuffer

	// Upload stats for the last Sync call
	lastSpans      int
	lastComponents int
}

// NewParticleRenderer creates a renderer with a procedural radial-gradient
// sprite, avoiding any texture assets.
func NewParticleRenderer() *ParticleRenderer {
	img := rl.GenImageGradientRadial(64, 64, 0.2, rl.White, rl.Blank)
	defer rl.UnloadImage(img)

	return &ParticleRenderer{
		tex: rl.LoadTextureFromImage(img),
	}
}

// Unload releases GPU resources.
func (r *ParticleRenderer) Unload() {
	rl.UnloadTexture(r.tex)
}

// Sync re-uploads every dirty span the group produced this tick into the
// device-side mirrors. Buffers with an empty upload range are skipped.
func (r *ParticleRenderer) Sync(g *emitter.Group) {
	r.lastSpans = 0
	r.lastComponents = 0

	// A structural change (emitter churn, buffer growth) invalidates the
	// device buffers entirely; re-specify them at the new size.
	if g.UsageReset() {
		for a := emitter.Attr(0); a < emitter.AttrCount; a++ {
			if arr := g.Attribute(a).Array(); arr != nil {
				r.buffers[a].data = make([]float32, len(arr.Data))
			}
		}
	}

	for a := emitter.Attr(0); a < emitter.AttrCount; a++ {
		attr := g.Attribute(a)
		offset, count, ok := attr.UploadRange()
		if !ok {
			continue
		}
		r.buffers[a].upload(attr.Array().Data, offset, count)
		r.lastSpans++
		r.lastComponents += count
	}
}

// LastUpload returns the span and component counts of the last Sync.
func (r *ParticleRenderer) LastUpload() (spans, components int) {
	return r.lastSpans, r.lastComponents
}

func (r *ParticleRenderer) at(a emitter.Attr, slot, comp int) float32 {
	return r.buffers[a].data[slot*a.Stride()+comp]
}

// Draw renders every live particle from the device-side mirrors. The draw
// count follows the group's live particles, never buffer capacity.
func (r *ParticleRenderer) Draw(g *emitter.Group, cam rl.Camera3D) {
	capacity := len(r.buffers[emitter.AttrParams].data) / emitter.AttrParams.Stride()
	features := g.Features()

	budget := g.LiveCount()
	for i := 0; i < capacity && budget > 0; i++ {
		if r.at(emitter.AttrParams, i, emitter.ParamAlive) != 1 {
			continue
		}
		budget--

		age := r.at(emitter.AttrParams, i, emitter.ParamAge)
		maxAge := r.at(emitter.AttrParams, i, emitter.ParamMaxAge)
		t := float32(0)
		if maxAge > 0 {
			t = clamp01f(age / maxAge)
		}

		pos := r.particlePosition(i, age)
		if features&emitter.FeatureWiggle != 0 {
			wiggle := r.at(emitter.AttrParams, i, emitter.ParamWiggle)
			if wiggle != 0 {
				w := age + wiggle*0.1
				pos.X += sinf(w*wiggle) * 0.2
				pos.Y += cosf(w*wiggle) * 0.2
			}
		}

		size := evalCurve(func(k int) float32 { return r.at(emitter.AttrSize, i, k) }, t)
		opacity := evalCurve(func(k int) float32 { return r.at(emitter.AttrOpacity, i, k) }, t)
		tint := r.particleColor(i, t, opacity)

		rl.DrawBillboard(cam, r.tex, rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}, size, tint)
	}
}

// particlePosition evaluates the documented attribute semantics the
// shading side would: spawn position plus velocity and drag-damped
// acceleration integrated over age.
func (r *ParticleRenderer) particlePosition(i int, age float32) emitter.Vec3 {
	px := r.at(emitter.AttrPosition, i, 0)
	py := r.at(emitter.AttrPosition, i, 1)
	pz := r.at(emitter.AttrPosition, i, 2)
	vx := r.at(emitter.AttrVelocity, i, 0)
	vy := r.at(emitter.AttrVelocity, i, 1)
	vz := r.at(emitter.AttrVelocity, i, 2)
	ax := r.at(emitter.AttrAcceleration, i, 0)
	ay := r.at(emitter.AttrAcceleration, i, 1)
	az := r.at(emitter.AttrAcceleration, i, 2)
	drag := r.at(emitter.AttrAcceleration, i, 3)

	damp := 1 - drag*clamp01f(age)*0.5
	half := 0.5 * age * age
	return emitter.Vec3{
		X: px + (vx*age+ax*half)*damp,
		Y: py + (vy*age+ay*half)*damp,
		Z: pz + (vz*age+az*half)*damp,
	}
}

// particleColor interpolates the packed color keyframes at lifetime t and
// applies the opacity curve as the alpha channel.
func (r *ParticleRenderer) particleColor(i int, t, opacity float32) rl.Color {
	seg := t * float32(emitter.CurveKeys-1)
	k := int(seg)
	if k >= emitter.CurveKeys-1 {
		k = emitter.CurveKeys - 2
	}
	f := seg - float32(k)

	r0, g0, b0 := unpackColor(r.at(emitter.AttrColor, i, k))
	r1, g1, b1 := unpackColor(r.at(emitter.AttrColor, i, k+1))

	a := clamp01f(opacity)
	return rl.Color{
		R: uint8((r0 + (r1-r0)*f) * 255),
		G: uint8((g0 + (g1-g0)*f) * 255),
		B: uint8((b0 + (b1-b0)*f) * 255),
		A: uint8(a * 255),
	}
}

// evalCurve interpolates four evenly spaced lifetime keyframes at t.
func evalCurve(key func(int) float32, t float32) float32 {
	seg := t * float32(emitter.CurveKeys-1)
	k := int(seg)
	if k >= emitter.CurveKeys-1 {
		k = emitter.CurveKeys - 2
	}
	return key(k) + (key(k+1)-key(k))*(seg-float32(k))
}

func unpackColor(packed float32) (cr, cg, cb float32) {
	p := uint32(packed)
	return float32(p>>16&0xff) / 255, float32(p>>8&0xff) / 255, float32(p&0xff) / 255
}

func clamp01f(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sinf(x float32) float32 { return float32(math.Sin(float64(x))) }
func cosf(x float32) float32 { return float32(math.Cos(float64(x))) }
