// Package scroll maintains per-item height estimates for a chat transcript
// so a frontend can render only the window of messages near the viewport.
package scroll

import "sync"

// DefaultEstimate seeds the height of an item before it has been measured.
const DefaultEstimate = 4.0

// lookaroundItems is the fixed buffer of extra items included on each side
// of the visible window so small scroll jitter does not churn the range.
const lookaroundItems = 3

// HeightModel tracks estimated and measured item heights. The estimate
// slice never shrinks below the highest index seen, and the total is
// always the exact sum of the current estimates.
type HeightModel struct {
	mu              sync.Mutex
	defaultEstimate float64
	heights         []float64
	total           float64
	followBottom    bool
}

// NewHeightModel creates a model seeding unmeasured items with
// defaultEstimate. A non-positive default falls back to DefaultEstimate.
func NewHeightModel(defaultEstimate float64) *HeightModel {
	if defaultEstimate <= 0 {
		defaultEstimate = DefaultEstimate
	}
	return &HeightModel{
		defaultEstimate: defaultEstimate,
		followBottom:    true,
	}
}

// EnsureLen grows the estimate slice to cover n items, filling new slots
// with the default estimate. It never shrinks.
func (m *HeightModel) EnsureLen(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.growLocked(n)
}

func (m *HeightModel) growLocked(n int) {
	for len(m.heights) < n {
		m.heights = append(m.heights, m.defaultEstimate)
	}
	m.recomputeLocked()
}

func (m *HeightModel) recomputeLocked() {
	total := 0.0
	for _, h := range m.heights {
		total += h
	}
	m.total = total
}

// RecordMeasuredHeight installs the true rendered height for an item,
// growing the slice (default-filled) if index is beyond it.
func (m *HeightModel) RecordMeasuredHeight(index int, height float64) {
	if index < 0 || height < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if index >= len(m.heights) {
		m.growLocked(index + 1)
	}
	m.heights[index] = height
	m.recomputeLocked()
}

// TotalHeight returns the sum of all current estimates.
func (m *HeightModel) TotalHeight() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Len returns the number of tracked items.
func (m *HeightModel) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.heights)
}

// Height returns the current estimate for an item.
func (m *HeightModel) Height(index int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.heights) {
		return 0
	}
	return m.heights[index]
}

// VisibleRange returns the half-open index window [start, end) covering
// the viewport plus the fixed lookaround buffer on each side. Ranges are
// clamped to [0, item count]; an offset past the content saturates to an
// empty window at the end.
func (m *HeightModel) VisibleRange(scrollOffset, viewportHeight float64) (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.heights)
	if n == 0 {
		return 0, 0
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}

	limit := scrollOffset + viewportHeight
	cum := 0.0
	start, end := n, n

	for i := 0; i < n; i++ {
		bottom := cum + m.heights[i]
		if start == n && bottom > scrollOffset {
			start = i
		}
		if bottom >= limit && start != n {
			end = i + 1
			break
		}
		cum = bottom
	}

	if start == n {
		return n, n
	}

	start -= lookaroundItems
	if start < 0 {
		start = 0
	}
	end += lookaroundItems
	if end > n {
		end = n
	}
	return start, end
}

// SetFollowBottom toggles stick-to-bottom scrolling.
func (m *HeightModel) SetFollowBottom(follow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followBottom = follow
}

// FollowBottom reports whether the view should stick to the newest message.
func (m *HeightModel) FollowBottom() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.followBottom
}

// BottomOffset returns the scroll offset that pins the viewport to the
// end of the content, floored at zero for short transcripts.
func (m *HeightModel) BottomOffset(viewportHeight float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	offset := m.total - viewportHeight
	if offset < 0 {
		return 0
	}
	return offset
}

// Reset drops all estimates.
func (m *HeightModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heights = nil
	m.total = 0
	m.followBottom = true
}
