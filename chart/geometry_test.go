package chart

import (
	"math"
	"testing"
)

func null() float64 { return math.NaN() }

func TestSplitRunsGaps(t *testing.T) {
	cases := []struct {
		name string
		data []float64
		want []Run
	}{
		{"gap breaks segments", []float64{1, null(), 3}, []Run{{0, 0}, {2, 2}}},
		{"no gaps", []float64{1, 2, 3}, []Run{{0, 2}}},
		{"leading and trailing nulls", []float64{null(), 1, 2, null()}, []Run{{1, 2}}},
		{"all null", []float64{null(), null()}, nil},
		{"empty", nil, nil},
		{"two runs", []float64{1, 2, null(), null(), 5, 6, 7}, []Run{{0, 1}, {4, 6}}},
	}
	for _, tc := range cases {
		got := SplitRuns(tc.data)
		if len(got) != len(tc.want) {
			t.Errorf("%s: got %d runs %v, want %d runs %v", tc.name, len(got), got, len(tc.want), tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%s: run %d is %v, want %v", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestBandRunsClosure(t *testing.T) {
	upper := []float64{1, 2, null(), 4}
	lower := []float64{0, 1, null(), 2}
	got := BandRuns(upper, lower)
	want := []Run{{0, 1}, {3, 3}}
	if len(got) != len(want) {
		t.Fatalf("got %d fill paths %v, want %d: %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("path %d covers %v, want %v", i, got[i], want[i])
		}
	}
	// A null in only one bound still breaks the band.
	got = BandRuns([]float64{1, null(), 3}, []float64{0, 1, 2})
	if len(got) != 2 {
		t.Errorf("one-sided null produced %d runs, want 2", len(got))
	}
}

func TestBarSlots(t *testing.T) {
	series := []Series{
		{ID: "temp", Type: TypeLine},
		{ID: "snow", Type: TypeBar},
		{ID: "rain", Type: TypeBar},
		{ID: "sleet", Type: TypeBar},
	}
	all := func(string) bool { return true }
	slots := BarSlots(series, all)
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}
	// Slots follow series order among bar-typed series only.
	for i, id := range []string{"snow", "rain", "sleet"} {
		slot := slots[id]
		if slot.Index != i || slot.Count != 3 {
			t.Errorf("%s: got slot %+v, want index %d of 3", id, slot, i)
		}
	}
	// Hiding a bar series redistributes the group width.
	slots = BarSlots(series, func(id string) bool { return id != "rain" })
	if slots["sleet"].Index != 1 || slots["sleet"].Count != 2 {
		t.Errorf("after hiding rain, sleet got %+v, want index 1 of 2", slots["sleet"])
	}
	if _, ok := slots["rain"]; ok {
		t.Error("hidden series kept a slot")
	}
}

func TestBarGeometry(t *testing.T) {
	const spacing = 100.0
	slots := []BarSlot{{0, 2}, {1, 2}}
	totalWidth := float32(0)
	for _, slot := range slots {
		offset, width := BarGeometry(slot, spacing)
		totalWidth += width
		if offset < -spacing/2 || offset+width > spacing/2 {
			t.Errorf("slot %+v escapes its sample spacing: offset %v width %v", slot, offset, width)
		}
	}
	want := float32(spacing * barGroupFraction)
	if math.Abs(float64(totalWidth-want)) > 0.01 {
		t.Errorf("bars cover %v of the group, want %v", totalWidth, want)
	}
}

func TestDataRangeSkipsHiddenAndNull(t *testing.T) {
	cfg := Config{
		XLabels: []string{"a", "b", "c"},
		Series: []Series{
			{ID: "one", Type: TypeLine, Data: []float64{1, null(), 3}},
			{ID: "two", Type: TypeLine, Data: []float64{-50, 0, 50}},
		},
	}
	cfg.Normalize()
	lo, hi, ok := DataRange(&cfg, 0, FullExtent(3), func(id string) bool { return id == "one" })
	if !ok || lo != 1 || hi != 3 {
		t.Errorf("got [%v, %v] ok=%v, want [1, 3] from the visible series only", lo, hi, ok)
	}
	_, _, ok = DataRange(&cfg, 0, FullExtent(3), func(string) bool { return false })
	if ok {
		t.Error("all-hidden config reported a drawable range")
	}
}

func TestDataRangeBarIncludesBaseline(t *testing.T) {
	cfg := Config{
		XLabels: []string{"a", "b"},
		Series:  []Series{{ID: "snow", Type: TypeBar, Data: []float64{5, 9}}},
	}
	cfg.Normalize()
	lo, _, ok := DataRange(&cfg, 0, FullExtent(2), func(string) bool { return true })
	if !ok || lo > 0 {
		t.Errorf("bar range starts at %v, want the baseline included", lo)
	}
}

func TestNormalizePadsAndTruncates(t *testing.T) {
	cfg := Config{
		XLabels: []string{"a", "b", "c"},
		Series: []Series{
			{ID: "short", Data: []float64{1}},
			{ID: "long", Data: []float64{1, 2, 3, 4, 5}},
			{ID: "missing"},
		},
	}
	cfg.Normalize()
	for _, s := range cfg.Series {
		if len(s.Data) != 3 {
			t.Errorf("%s: normalized to %d samples, want 3", s.ID, len(s.Data))
		}
	}
	if !IsNull(cfg.Series[0].Data[1]) || !IsNull(cfg.Series[0].Data[2]) {
		t.Error("short series not padded with nulls")
	}
	if cfg.Series[1].Data[2] != 3 {
		t.Error("long series data corrupted by truncation")
	}
}

func TestDrawOrderStable(t *testing.T) {
	series := []Series{
		{ID: "a", Z: 1},
		{ID: "b", Z: 0},
		{ID: "c", Z: 1},
	}
	got := DrawOrder(series)
	want := []int{1, 0, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw order %v, want %v", got, want)
		}
	}
}
