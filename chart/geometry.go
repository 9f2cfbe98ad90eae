package chart

import "sort"

// Run is a contiguous range of drawable samples, [Start, End] inclusive.
// Null samples break runs: a series [1, null, 3] yields two runs and is
// drawn as two disjoint path segments, never a segment bridging the gap.
type Run struct {
	Start, End int
}

// SplitRuns splits a series into runs of consecutive non-null samples.
func SplitRuns(data []float64) []Run {
	var runs []Run
	start := -1
	for i, v := range data {
		if IsNull(v) {
			if start >= 0 {
				runs = append(runs, Run{Start: start, End: i - 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(data) - 1})
	}
	return runs
}

// BandRuns splits a band into runs where both bounds are present. Each
// run closes into its own fill path, so bands separated by nulls render
// as independent shapes.
func BandRuns(upper, lower []float64) []Run {
	n := len(upper)
	if len(lower) < n {
		n = len(lower)
	}
	var runs []Run
	start := -1
	for i := 0; i < n; i++ {
		if IsNull(upper[i]) || IsNull(lower[i]) {
			if start >= 0 {
				runs = append(runs, Run{Start: start, End: i - 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: n - 1})
	}
	return runs
}

// BarSlot is one bar series' position within the shared bar group at
// each sample.
type BarSlot struct {
	// Index is the slot position among concurrently visible bar series,
	// in series-array order counting bar-typed series only.
	Index int
	// Count is the number of visible bar series sharing the group.
	Count int
}

// barGroupFraction is the share of the per-sample spacing occupied by
// the whole bar group.
const barGroupFraction = 0.8

// BarSlots assigns group slots to every visible bar series. Hidden bar
// series give up their slot, so the remaining bars widen to fill the
// group.
func BarSlots(series []Series, visible func(id string) bool) map[string]BarSlot {
	slots := make(map[string]BarSlot)
	count := 0
	for i := range series {
		s := &series[i]
		if s.Type != TypeBar || !visible(s.ID) {
			continue
		}
		slots[s.ID] = BarSlot{Index: count}
		count++
	}
	for id, slot := range slots {
		slot.Count = count
		slots[id] = slot
	}
	return slots
}

// BarGeometry returns the left offset and width of one bar relative to
// its sample's center X, given the pixel spacing between samples.
func BarGeometry(slot BarSlot, pxPerIndex float32) (offset, width float32) {
	if slot.Count <= 0 {
		return 0, 0
	}
	group := pxPerIndex * barGroupFraction
	width = group / float32(slot.Count)
	offset = -group/2 + width*float32(slot.Index)
	return offset, width
}

// DataRange returns the raw extremes of all visible samples on the given
// axis within the X window. ok is false when nothing is drawable, in
// which case the caller should fall back to a default range.
func DataRange(cfg *Config, axisIndex int, win Scale, visible func(id string) bool) (lo, hi float64, ok bool) {
	iLo, iHi := VisibleIndices(win, cfg.Len())
	for si := range cfg.Series {
		s := &cfg.Series[si]
		if s.AxisIndex != axisIndex || !visible(s.ID) {
			continue
		}
		includeSample := func(v float64) {
			if IsNull(v) {
				return
			}
			if !ok {
				lo, hi = v, v
				ok = true
				return
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		switch s.Type {
		case TypeBand:
			for i := iLo; i <= iHi && i < len(s.Upper) && i < len(s.Lower); i++ {
				includeSample(s.Upper[i])
				includeSample(s.Lower[i])
			}
		default:
			for i := iLo; i <= iHi && i < len(s.Data); i++ {
				includeSample(s.Data[i])
			}
			// Bars and areas grow from the baseline, so the baseline is
			// always part of their range.
			if s.Type == TypeBar || s.Type == TypeArea {
				includeSample(0)
			}
		}
	}
	return lo, hi, ok
}

// DrawOrder returns series indices sorted by Z, stable within equal Z so
// the config order decides ties.
func DrawOrder(series []Series) []int {
	order := make([]int, len(series))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return series[order[a]].Z < series[order[b]].Z
	})
	return order
}
