package buffer

// Attribute wraps a TypedArray with per-tick dirty-range tracking. Writers
// widen the running [dirtyMin, dirtyMax] element range; once per tick the
// range is reset, and after all writes the renderer asks UploadRange for
// the component span it has to re-send to the device.
type Attribute struct {
	itemSize int
	array    *TypedArray

	dirtyMin int
	dirtyMax int
	full     bool
}

// NewAttribute creates an attribute buffer with the given item stride.
// Storage is created lazily by the first EnsureCapacity call.
func NewAttribute(itemSize int) *Attribute {
	a := &Attribute{itemSize: itemSize}
	a.ResetRange()
	return a
}

// ItemSize returns the components-per-element stride.
func (a *Attribute) ItemSize() int {
	return a.itemSize
}

// Array returns the backing typed array, or nil before the first
// EnsureCapacity call.
func (a *Attribute) Array() *TypedArray {
	return a.array
}

// Size returns the element capacity of the backing storage.
func (a *Attribute) Size() int {
	if a.array == nil {
		return 0
	}
	return a.array.Size
}

// EnsureCapacity guarantees the backing storage fits size elements,
// creating it on first call. Growth marks the whole buffer dirty since the
// storage identity changes.
func (a *Attribute) EnsureCapacity(size int) {
	if a.array == nil {
		a.array = NewTypedArray(size, a.itemSize)
		a.full = true
		return
	}
	if size <= a.array.Size {
		return
	}
	a.array.SetSize(size)
	a.full = true
}

// MarkRange widens the running dirty range to cover [min, max], in element
// units.
func (a *Attribute) MarkRange(min, max int) {
	if min < a.dirtyMin {
		a.dirtyMin = min
	}
	if max > a.dirtyMax {
		a.dirtyMax = max
	}
}

// MarkElement widens the running dirty range to cover a single element.
func (a *Attribute) MarkElement(i int) {
	a.MarkRange(i, i)
}

// ResetRange clears the running dirty range to empty. Called once per tick
// before any writes. The full-upload flag is cleared as well.
func (a *Attribute) ResetRange() {
	a.dirtyMin = int(^uint(0) >> 1) // max int
	a.dirtyMax = -1
	a.full = false
}

// ForceFull marks the entire backing storage dirty. Used after a resize or
// splice, when the storage identity may have changed.
func (a *Attribute) ForceFull() {
	a.full = true
}

// FullUpload reports whether the whole buffer was flagged for re-upload.
func (a *Attribute) FullUpload() bool {
	return a.full
}

// NeedsUpload reports whether any span must be re-uploaded this tick.
func (a *Attribute) NeedsUpload() bool {
	return a.full || a.dirtyMax >= a.dirtyMin
}

// UploadRange converts the elementwise dirty range into the stride-scaled
// component span the rendering backend re-uploads, clamped to the backing
// storage. ok is false when nothing changed since the last ResetRange.
func (a *Attribute) UploadRange() (offset, count int, ok bool) {
	if a.array == nil {
		return 0, 0, false
	}
	total := a.array.ComponentCount()
	if a.full {
		return 0, total, total > 0
	}
	if a.dirtyMax < a.dirtyMin {
		return 0, 0, false
	}
	offset = a.dirtyMin * a.itemSize
	count = (a.dirtyMax - a.dirtyMin + 1) * a.itemSize
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return 0, 0, false
	}
	if offset+count > total {
		count = total - offset
	}
	return offset, count, count > 0
}

// SetVec3 writes element i and widens the dirty range to cover it.
func (a *Attribute) SetVec3(i int, x, y, z float32) {
	a.array.SetVec3(i, x, y, z)
	a.MarkElement(i)
}

// SetVec4 writes element i and widens the dirty range to cover it.
func (a *Attribute) SetVec4(i int, x, y, z, w float32) {
	a.array.SetVec4(i, x, y, z, w)
	a.MarkElement(i)
}

// SetComponent writes one component of element i and widens the dirty
// range to cover the element.
func (a *Attribute) SetComponent(i, comp int, v float32) {
	a.array.SetComponent(i, comp, v)
	a.MarkElement(i)
}

// At reads one component of element i.
func (a *Attribute) At(i, comp int) float32 {
	if a.array == nil {
		return 0
	}
	return a.array.At(i, comp)
}

// Splice removes elements [start, end) from the backing storage and flags
// a full re-upload.
func (a *Attribute) Splice(start, end int) {
	if a.array == nil {
		return
	}
	a.array.Splice(start, end)
	a.ForceFull()
}
