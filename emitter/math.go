package emitter

import "math"

// Vec3 is a three-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// clampFloat clamps v between minVal and maxVal.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// absf returns |v|.
func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// roundToMultiple snaps v to the nearest multiple of step. A step of zero
// leaves v unchanged.
func roundToMultiple(v, step float32) float32 {
	if step == 0 {
		return v
	}
	return float32(math.Round(float64(v/step))) * step
}

// PackColor packs an RGB triple in [0,1] per channel into a single float,
// base-256 per channel, matching what the shading side unpacks.
func PackColor(r, g, b float32) float32 {
	ri := float32(math.Floor(float64(clamp01(r) * 255)))
	gi := float32(math.Floor(float64(clamp01(g) * 255)))
	bi := float32(math.Floor(float64(clamp01(b) * 255)))
	return ri*65536 + gi*256 + bi
}

// PackAxis packs a unit axis vector into a single float by remapping each
// component from [-1,1] to an 8-bit channel and packing base-256.
func PackAxis(axis Vec3) float32 {
	return PackColor(axis.X*0.5+0.5, axis.Y*0.5+0.5, axis.Z*0.5+0.5)
}

// UnpackAxis reverses PackAxis. Quantized to 8 bits per component, so the
// result is approximate.
func UnpackAxis(packed float32) Vec3 {
	p := uint32(packed)
	r := float32(p>>16&0xff) / 255
	g := float32(p>>8&0xff) / 255
	b := float32(p&0xff) / 255
	return Vec3{r*2 - 1, g*2 - 1, b*2 - 1}
}

// lerp returns a + (b-a)*t.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// interpolateArray stretches or compresses src to exactly n entries by
// linear interpolation between its points. Used to normalize mismatched
// value/spread arrays for the lifetime-curve channels.
func interpolateArray(src []float32, n int) []float32 {
	out := make([]float32, n)
	if len(src) == 0 {
		return out
	}
	if len(src) == 1 || n == 1 {
		for i := range out {
			out[i] = src[0]
		}
		return out
	}
	for i := 0; i < n; i++ {
		t := float32(i) / float32(n-1) * float32(len(src)-1)
		lo := int(t)
		hi := lo + 1
		if hi >= len(src) {
			hi = len(src) - 1
		}
		out[i] = lerp(src[lo], src[hi], t-float32(lo))
	}
	return out
}

// interpolateVec3Array is interpolateArray for vector-valued curves.
func interpolateVec3Array(src []Vec3, n int) []Vec3 {
	out := make([]Vec3, n)
	if len(src) == 0 {
		return out
	}
	if len(src) == 1 || n == 1 {
		for i := range out {
			out[i] = src[0]
		}
		return out
	}
	for i := 0; i < n; i++ {
		t := float32(i) / float32(n-1) * float32(len(src)-1)
		lo := int(t)
		hi := lo + 1
		if hi >= len(src) {
			hi = len(src) - 1
		}
		f := t - float32(lo)
		out[i] = Vec3{
			lerp(src[lo].X, src[hi].X, f),
			lerp(src[lo].Y, src[hi].Y, f),
			lerp(src[lo].Z, src[hi].Z, f),
		}
	}
	return out
}
