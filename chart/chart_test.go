package chart

import (
	"image"
	"testing"
	"time"

	"gioui.org/f32"
)

func toyConfig() Config {
	return Config{
		XLabels:     []string{"Mon", "Tue", "Wed"},
		ShowTooltip: true,
		Series: []Series{
			{ID: "temp", Name: "Temperature", Type: TypeLine, Data: []float64{0, 5, -2}},
		},
	}
}

func TestChartZoomCycleRestoresFullExtent(t *testing.T) {
	c := New(toyConfig(), Options{})
	if c.XScale() != (Scale{Min: 0, Max: 2}) {
		t.Fatalf("initial window = %+v, want {0 2}", c.XScale())
	}

	// Zoom in around the middle sample.
	s, ok := ZoomAt(c.XScale(), 1, 0.6, c.cfg.Len())
	if !ok {
		t.Fatal("zoom in rejected")
	}
	c.SetXScale(s)
	if c.XScale().Span() >= 2 {
		t.Fatalf("zoom in did not narrow the window: %+v", c.XScale())
	}

	// Wheel out repeatedly; the window must saturate at the full extent
	// and never overshoot it.
	for i := 0; i < 20; i++ {
		s, ok := ZoomAt(c.XScale(), 1, 1/0.8, c.cfg.Len())
		if !ok {
			break
		}
		c.SetXScale(s)
	}
	if c.XScale() != (Scale{Min: 0, Max: 2}) {
		t.Errorf("zoomed-out window = %+v, want {0 2}", c.XScale())
	}

	// A double click resets regardless of the current window.
	c.SetXScale(Scale{Min: 0.5, Max: 1.8})
	c.ResetZoom()
	if c.XScale() != (Scale{Min: 0, Max: 2}) {
		t.Errorf("reset window = %+v, want {0 2}", c.XScale())
	}
}

func TestChartTooltipAboveMiddleSample(t *testing.T) {
	c := New(toyConfig(), Options{})
	pl := &Plot{
		Rect: image.Rect(0, 0, 300, 100),
		X:    c.XScale(),
		Y:    [2]Scale{{Min: -2, Max: 5}, {Min: 0, Max: 1}},
	}

	// The cursor above the middle sample yields exactly one row, Tue = 5.
	c.overlay.CursorChanged(c, pl, Cursor{Pos: f32.Pt(150, 30), Inside: true})
	if c.overlay.lastIdx != 1 {
		t.Fatalf("snapped to index %d, want 1", c.overlay.lastIdx)
	}
	if len(c.overlay.rows) != 1 {
		t.Fatalf("got %d tooltip rows, want 1", len(c.overlay.rows))
	}
	if row := c.overlay.rows[0]; row.series.ID != "temp" || row.value != 5 {
		t.Errorf("tooltip row %s=%v, want temp=5", row.series.ID, row.value)
	}
}

func TestChartTooltipRebuildsOnParkedCursor(t *testing.T) {
	cfg := toyConfig()
	cfg.Series = append(cfg.Series, Series{
		ID: "snow", Name: "Snowfall", Type: TypeLine, Data: []float64{1, 2, 3},
	})
	c := New(cfg, Options{})
	pl := &Plot{
		Rect: image.Rect(0, 0, 300, 100),
		X:    c.XScale(),
		Y:    [2]Scale{{Min: -2, Max: 5}, {Min: 0, Max: 1}},
	}
	cur := Cursor{Pos: f32.Pt(150, 30), Inside: true}

	c.overlay.CursorChanged(c, pl, cur)
	if len(c.overlay.rows) != 2 {
		t.Fatalf("got %d tooltip rows, want 2", len(c.overlay.rows))
	}

	// Hiding a series while the cursor stays on the same sample must
	// drop its row on the next cursor dispatch.
	c.SetVisible("snow", false)
	c.overlay.CursorChanged(c, pl, cur)
	if len(c.overlay.rows) != 1 {
		t.Fatalf("hidden series still has a tooltip row: %d rows", len(c.overlay.rows))
	}
	if c.overlay.rows[0].series.ID != "temp" {
		t.Errorf("surviving row is %s, want temp", c.overlay.rows[0].series.ID)
	}

	// An in-place data update under the parked cursor must show the new
	// value, not the cached one.
	next := toyConfig()
	next.Series[0].Data = []float64{0, 9, -2}
	c.UpdateConfig(next)
	c.overlay.CursorChanged(c, pl, cur)
	if len(c.overlay.rows) != 1 || c.overlay.rows[0].value != 9 {
		t.Errorf("tooltip rows after update = %+v, want one temp row with value 9", c.overlay.rows)
	}
}

func TestChartVisibilityToggle(t *testing.T) {
	var fired []string
	cfg := toyConfig()
	c := New(cfg, Options{
		OnVisibilityToggle: func(id string, visible bool) {
			fired = append(fired, id)
		},
	})

	if !c.SeriesVisible("temp") {
		t.Fatal("series not visible by default")
	}
	c.ToggleVisible("temp")
	if c.SeriesVisible("temp") {
		t.Error("toggle did not hide the series")
	}
	// Setting the current state again must not fire the callback.
	c.SetVisible("temp", false)
	if len(fired) != 1 {
		t.Errorf("callback fired %d times, want 1", len(fired))
	}
}

func TestChartUpdateConfigKeepsWindow(t *testing.T) {
	c := New(toyConfig(), Options{})
	c.SetVisible("temp", false)
	c.SetXScale(Scale{Min: 1, Max: 2})

	cfg := toyConfig()
	cfg.Series[0].Data = []float64{7, 8, 9}
	c.UpdateConfig(cfg)

	if c.XScale() != (Scale{Min: 1, Max: 2}) {
		t.Errorf("window after update = %+v, want {1 2}", c.XScale())
	}
	if c.SeriesVisible("temp") {
		t.Error("update reset the visibility map")
	}
}

func TestChartUpdateFollowsGrowingData(t *testing.T) {
	c := New(toyConfig(), Options{})

	// At full extent the window tracks newly appended samples.
	cfg := toyConfig()
	cfg.XLabels = append(cfg.XLabels, "Thu", "Fri")
	cfg.Series[0].Data = append(cfg.Series[0].Data, 1, 2)
	c.UpdateConfig(cfg)
	if c.XScale() != (Scale{Min: 0, Max: 4}) {
		t.Errorf("full-extent window after growth = %+v, want {0 4}", c.XScale())
	}

	// A zoomed window stays put instead of jumping.
	c.SetXScale(Scale{Min: 1, Max: 3})
	cfg.XLabels = append(cfg.XLabels, "Sat")
	cfg.Series[0].Data = append(cfg.Series[0].Data, 3)
	c.UpdateConfig(cfg)
	if c.XScale() != (Scale{Min: 1, Max: 3}) {
		t.Errorf("zoomed window after growth = %+v, want {1 3}", c.XScale())
	}
}

func TestChartComputePlotFlatSeries(t *testing.T) {
	cfg := toyConfig()
	cfg.Series[0].Data = []float64{3, 3, 3}
	c := New(cfg, Options{})

	pl := c.computePlot(image.Rect(0, 0, 300, 100))
	if pl.Y[0].Span() < minSpread {
		t.Errorf("flat data produced a degenerate Y range: %+v", pl.Y[0])
	}
	if pl.Y[0].Min >= 3 || pl.Y[0].Max <= 3 {
		t.Errorf("flat data value outside the Y range %+v", pl.Y[0])
	}
}

func TestChartDestroyIdempotent(t *testing.T) {
	c := New(toyConfig(), Options{})
	c.Destroy()
	c.Destroy()
	if !c.destroyed {
		t.Error("chart not marked destroyed")
	}
}

func TestThrottle(t *testing.T) {
	th := throttle{min: 16 * time.Millisecond}
	t0 := time.Unix(1000, 0)
	if !th.allow(t0) {
		t.Fatal("first event blocked")
	}
	if th.allow(t0.Add(10 * time.Millisecond)) {
		t.Error("event inside the interval allowed")
	}
	if !th.allow(t0.Add(20 * time.Millisecond)) {
		t.Error("event after the interval blocked")
	}
}
