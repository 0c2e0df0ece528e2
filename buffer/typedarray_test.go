package buffer

import "testing"

// silenceDiag swaps the diagnostic sink for one test and reports how often
// it fired.
func silenceDiag(t *testing.T) *int {
	t.Helper()
	count := 0
	old := Diag
	Diag = func(msg string, args ...any) { count++ }
	t.Cleanup(func() { Diag = old })
	return &count
}

func TestTypedArraySetVec3(t *testing.T) {
	ta := NewTypedArray(4, 3)
	ta.SetVec3(2, 1, 2, 3)

	if got := ta.At(2, 0); got != 1 {
		t.Errorf("expected x=1, got %f", got)
	}
	if got := ta.At(2, 2); got != 3 {
		t.Errorf("expected z=3, got %f", got)
	}
	// Neighbors untouched
	if got := ta.At(1, 0); got != 0 {
		t.Errorf("expected neighbor untouched, got %f", got)
	}
}

func TestTypedArrayGrowShrinkRoundTrip(t *testing.T) {
	ta := NewTypedArray(3, 4)
	for i := 0; i < 3; i++ {
		ta.SetVec4(i, float32(i), float32(i)+0.5, float32(i)*2, 1)
	}
	original := make([]float32, len(ta.Data))
	copy(original, ta.Data)

	ta.SetSize(10)
	if ta.Size != 10 || len(ta.Data) != 40 {
		t.Fatalf("expected size 10 / storage 40, got %d / %d", ta.Size, len(ta.Data))
	}
	// Growth zero-extends
	for c := 12; c < 40; c++ {
		if ta.Data[c] != 0 {
			t.Fatalf("expected zero extension at component %d, got %f", c, ta.Data[c])
		}
	}

	ta.SetSize(3)
	if ta.Size != 3 {
		t.Fatalf("expected size 3 after shrink, got %d", ta.Size)
	}
	for c := range original {
		if ta.Data[c] != original[c] {
			t.Errorf("component %d changed across grow/shrink: %f != %f", c, ta.Data[c], original[c])
		}
	}
}

func TestTypedArraySetSizeNoOp(t *testing.T) {
	count := silenceDiag(t)
	ta := NewTypedArray(5, 2)
	ta.SetSize(5)
	if *count != 1 {
		t.Errorf("expected one no-op diagnostic, got %d", *count)
	}
	if ta.Size != 5 {
		t.Errorf("size changed on no-op resize: %d", ta.Size)
	}
}

func TestTypedArrayBoundsCheckedWrites(t *testing.T) {
	count := silenceDiag(t)
	ta := NewTypedArray(2, 3)

	ta.SetVec3(-1, 1, 1, 1)
	ta.SetVec3(2, 1, 1, 1)
	ta.SetComponent(0, 3, 1)

	if *count != 3 {
		t.Errorf("expected 3 diagnostics for out-of-range writes, got %d", *count)
	}
	for c, v := range ta.Data {
		if v != 0 {
			t.Errorf("out-of-range write corrupted component %d: %f", c, v)
		}
	}
}

func TestTypedArraySplice(t *testing.T) {
	ta := NewTypedArray(5, 2)
	for i := 0; i < 5; i++ {
		ta.SetComponent(i, 0, float32(i))
		ta.SetComponent(i, 1, float32(i)+10)
	}

	ta.Splice(1, 3) // drop elements 1 and 2

	if ta.Size != 3 {
		t.Fatalf("expected 3 elements after splice, got %d", ta.Size)
	}
	want := []float32{0, 10, 3, 13, 4, 14}
	for c, w := range want {
		if ta.Data[c] != w {
			t.Errorf("component %d: expected %f, got %f", c, w, ta.Data[c])
		}
	}
}

func TestTypedArraySpliceBounds(t *testing.T) {
	count := silenceDiag(t)
	ta := NewTypedArray(3, 1)
	ta.Splice(2, 5)
	if *count != 1 {
		t.Errorf("expected diagnostic for out-of-bounds splice, got %d", *count)
	}
	if ta.Size != 3 {
		t.Errorf("out-of-bounds splice mutated the array: size %d", ta.Size)
	}
}
