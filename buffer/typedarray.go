// Package buffer provides the flat numeric storage behind the particle
// attribute buffers: a growable fixed-stride float32 array plus dirty-range
// bookkeeping so the renderer can re-upload only the spans that changed.
package buffer

import "log/slog"

// Diag receives non-fatal diagnostics (bounds violations, no-op resizes).
// Replace it to route warnings somewhere other than slog.
var Diag = func(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// TypedArray is a resizable float32 array holding Size logical elements of
// ItemSize components each. Storage length is always Size*ItemSize.
type TypedArray struct {
	Data     []float32
	Size     int // logical element count
	ItemSize int // components per element
}

// NewTypedArray creates a typed array of size elements with itemSize
// components per element.
func NewTypedArray(size, itemSize int) *TypedArray {
	return &TypedArray{
		Data:     make([]float32, size*itemSize),
		Size:     size,
		ItemSize: itemSize,
	}
}

// SetSize grows (zero-extending, preserving existing contents) or shrinks
// (truncating) the array to size elements. Unchanged sizes are a no-op.
func (t *TypedArray) SetSize(size int) {
	if size < 0 {
		Diag("typedarray: negative size rejected", "size", size)
		return
	}
	if size == t.Size {
		Diag("typedarray: resize to current size is a no-op", "size", size)
		return
	}
	data := make([]float32, size*t.ItemSize)
	copy(data, t.Data)
	t.Data = data
	t.Size = size
}

// ComponentCount returns the raw storage length in components.
func (t *TypedArray) ComponentCount() int {
	return len(t.Data)
}

func (t *TypedArray) checkIndex(i int) bool {
	if i < 0 || i >= t.Size {
		Diag("typedarray: element index out of range", "index", i, "size", t.Size)
		return false
	}
	return true
}

// SetVec3 writes the three components of element i. The element stride must
// be at least 3.
func (t *TypedArray) SetVec3(i int, x, y, z float32) {
	if !t.checkIndex(i) {
		return
	}
	at := i * t.ItemSize
	t.Data[at] = x
	t.Data[at+1] = y
	t.Data[at+2] = z
}

// SetVec4 writes the four components of element i. The element stride must
// be at least 4.
func (t *TypedArray) SetVec4(i int, x, y, z, w float32) {
	if !t.checkIndex(i) {
		return
	}
	at := i * t.ItemSize
	t.Data[at] = x
	t.Data[at+1] = y
	t.Data[at+2] = z
	t.Data[at+3] = w
}

// SetComponent writes a single component of element i.
func (t *TypedArray) SetComponent(i, comp int, v float32) {
	if !t.checkIndex(i) {
		return
	}
	if comp < 0 || comp >= t.ItemSize {
		Diag("typedarray: component out of range", "component", comp, "itemSize", t.ItemSize)
		return
	}
	t.Data[i*t.ItemSize+comp] = v
}

// At reads a single component of element i. Out-of-range reads return 0.
func (t *TypedArray) At(i, comp int) float32 {
	if i < 0 || i >= t.Size || comp < 0 || comp >= t.ItemSize {
		Diag("typedarray: read out of range", "index", i, "component", comp)
		return 0
	}
	return t.Data[i*t.ItemSize+comp]
}

// Splice removes elements in [start, end), compacting the remaining
// elements to the front and shrinking storage to the new total.
func (t *TypedArray) Splice(start, end int) {
	if start < 0 || end > t.Size || start > end {
		Diag("typedarray: splice range out of bounds", "start", start, "end", end, "size", t.Size)
		return
	}
	if start == end {
		return
	}
	is := t.ItemSize
	removed := end - start
	data := make([]float32, (t.Size-removed)*is)
	copy(data, t.Data[:start*is])
	copy(data[start*is:], t.Data[end*is:])
	t.Data = data
	t.Size -= removed
}
