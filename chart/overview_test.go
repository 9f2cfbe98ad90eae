package chart

import "testing"

func TestOverviewHitTest(t *testing.T) {
	// Selection from 100px to 200px with an 8px handle hit area.
	tests := []struct {
		name string
		x    float32
		want OverviewHit
	}{
		{"left of everything", 20, HitOutside},
		{"just outside left handle", 95, HitOutside},
		{"on left handle edge", 96, HitLeftHandle},
		{"on left handle center", 100, HitLeftHandle},
		{"inside selection", 150, HitInside},
		{"just inside right handle", 196.5, HitRightHandle},
		{"on right handle center", 200, HitRightHandle},
		{"just outside right handle", 205, HitOutside},
		{"right of everything", 300, HitOutside},
	}
	for _, tc := range tests {
		if got := OverviewHitTest(tc.x, 100, 200, 8); got != tc.want {
			t.Errorf("%s: hit at x=%v = %d, want %d", tc.name, tc.x, got, tc.want)
		}
	}
}

func TestCenterSelectionClamping(t *testing.T) {
	sel := Scale{Min: 2, Max: 4}
	tests := []struct {
		name   string
		center float64
		want   Scale
	}{
		{"centers in the open", 5, Scale{Min: 4, Max: 6}},
		{"clamps at the left edge", 0, Scale{Min: 0, Max: 2}},
		{"clamps at the right edge", 9, Scale{Min: 7, Max: 9}},
	}
	for _, tc := range tests {
		got := CenterSelection(sel, tc.center, 10)
		if got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
		if got.Span() != sel.Span() {
			t.Errorf("%s: span changed from %v to %v", tc.name, sel.Span(), got.Span())
		}
	}
}

func TestResizeSelectionMinimumSpan(t *testing.T) {
	sel := Scale{Min: 2, Max: 6}

	// A left edge dragged past the right edge stops at the minimum span.
	got := ResizeSelection(sel, 5.9, true, 2, 10)
	if got != (Scale{Min: 4, Max: 6}) {
		t.Errorf("left edge overdrag: got %+v, want {4 6}", got)
	}
	// Same for the right edge.
	got = ResizeSelection(sel, 2.1, false, 2, 10)
	if got != (Scale{Min: 2, Max: 4}) {
		t.Errorf("right edge overdrag: got %+v, want {2 4}", got)
	}
	// Edges never leave the data bounds.
	got = ResizeSelection(sel, -3, true, 2, 10)
	if got.Min != 0 {
		t.Errorf("left edge escaped the data bounds: got %+v", got)
	}
	got = ResizeSelection(sel, 42, false, 2, 10)
	if got.Max != 9 {
		t.Errorf("right edge escaped the data bounds: got %+v", got)
	}
	// A requested minimum below the global floor still enforces two
	// samples of span.
	got = ResizeSelection(sel, 5.99, true, 0, 10)
	if got.Span() < minVisibleSpan {
		t.Errorf("span %v collapsed below the two-sample floor", got.Span())
	}
}
