package scroll

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEnsureLen_GrowsWithDefault(t *testing.T) {
	m := NewHeightModel(4.0)

	m.EnsureLen(3)

	if m.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", m.Len())
	}
	if !almostEqual(m.TotalHeight(), 12.0) {
		t.Errorf("total should be 3*4.0, got %f", m.TotalHeight())
	}

	// EnsureLen never shrinks.
	m.EnsureLen(1)
	if m.Len() != 3 {
		t.Errorf("EnsureLen must not shrink, got %d", m.Len())
	}
}

func TestRecordMeasuredHeight_UpdatesTotalExactly(t *testing.T) {
	m := NewHeightModel(4.0)
	m.EnsureLen(4)

	m.RecordMeasuredHeight(1, 10.5)
	m.RecordMeasuredHeight(1, 6.0) // re-measure replaces, not accumulates

	want := 4.0 + 6.0 + 4.0 + 4.0
	if !almostEqual(m.TotalHeight(), want) {
		t.Errorf("total = %f, want %f", m.TotalHeight(), want)
	}
}

func TestRecordMeasuredHeight_GrowsPastEnd(t *testing.T) {
	m := NewHeightModel(4.0)

	m.RecordMeasuredHeight(2, 7.0)

	if m.Len() != 3 {
		t.Fatalf("expected growth to 3 items, got %d", m.Len())
	}
	if !almostEqual(m.Height(0), 4.0) || !almostEqual(m.Height(2), 7.0) {
		t.Errorf("intermediate items should hold the default estimate")
	}
	if !almostEqual(m.TotalHeight(), 15.0) {
		t.Errorf("total = %f, want 15.0", m.TotalHeight())
	}
}

func TestRecordMeasuredHeight_IgnoresInvalid(t *testing.T) {
	m := NewHeightModel(4.0)
	m.EnsureLen(1)

	m.RecordMeasuredHeight(-1, 5.0)
	m.RecordMeasuredHeight(0, -2.0)

	if !almostEqual(m.TotalHeight(), 4.0) {
		t.Errorf("invalid input must not change the model, total = %f", m.TotalHeight())
	}
}

func TestVisibleRange_Empty(t *testing.T) {
	m := NewHeightModel(4.0)

	if start, end := m.VisibleRange(0, 100); start != 0 || end != 0 {
		t.Errorf("empty model should yield (0,0), got (%d,%d)", start, end)
	}
}

func TestVisibleRange_CoversViewportWithLookaround(t *testing.T) {
	m := NewHeightModel(4.0)
	m.EnsureLen(100) // 100 items of height 4, total 400

	// Viewport [100, 140): items 25..34 strictly visible.
	start, end := m.VisibleRange(100, 40)

	if start > 25 {
		t.Errorf("start %d must not exclude first visible item 25", start)
	}
	if end < 35 {
		t.Errorf("end %d must include last visible item 34", end)
	}
	// Lookaround buffer of 3 on each side.
	if start != 22 || end != 38 {
		t.Errorf("expected (22,38), got (%d,%d)", start, end)
	}
}

func TestVisibleRange_ClampsToBounds(t *testing.T) {
	m := NewHeightModel(4.0)
	m.EnsureLen(5)

	start, end := m.VisibleRange(0, 1000)
	if start != 0 || end != 5 {
		t.Errorf("range must clamp to [0,n], got (%d,%d)", start, end)
	}

	start, end = m.VisibleRange(9999, 10)
	if start != 5 || end != 5 {
		t.Errorf("offset past content should saturate to (n,n), got (%d,%d)", start, end)
	}
}

func TestVisibleRange_Invariant(t *testing.T) {
	m := NewHeightModel(4.0)
	m.EnsureLen(20)
	m.RecordMeasuredHeight(3, 12.0)
	m.RecordMeasuredHeight(11, 0.5)

	offsets := []float64{-5, 0, 3.9, 4.0, 17, 42, 80, 200}
	viewports := []float64{0, 1, 10, 33, 500}
	for _, off := range offsets {
		for _, vp := range viewports {
			start, end := m.VisibleRange(off, vp)
			if start < 0 || start > end || end > m.Len() {
				t.Errorf("invariant violated at offset=%f viewport=%f: (%d,%d)", off, vp, start, end)
			}
		}
	}
}

func TestBottomOffset(t *testing.T) {
	m := NewHeightModel(4.0)
	m.EnsureLen(10) // total 40

	if off := m.BottomOffset(15); !almostEqual(off, 25) {
		t.Errorf("bottom offset = %f, want 25", off)
	}
	if off := m.BottomOffset(100); off != 0 {
		t.Errorf("short content should floor at 0, got %f", off)
	}
}

func TestReset(t *testing.T) {
	m := NewHeightModel(4.0)
	m.EnsureLen(8)
	m.SetFollowBottom(false)

	m.Reset()

	if m.Len() != 0 || m.TotalHeight() != 0 {
		t.Errorf("reset should drop all estimates")
	}
	if !m.FollowBottom() {
		t.Errorf("reset should restore follow-bottom")
	}
}
