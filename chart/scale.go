package chart

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	// padFraction is the padding added to each free side of an auto domain.
	padFraction = 0.05
	// minSpread is the smallest range an axis may show. Flat data expands
	// to this spread instead of producing a degenerate axis.
	minSpread = 1.0
	// minVisibleSpan is the smallest X window in index units: two samples.
	minVisibleSpan = 1.0
)

// Scale is a visible range. For the X axis it is in data-index space,
// for Y axes in value space. The X scale is the single source of truth
// for what is currently visible: every plugin reads it, only the
// zoom/pan controller and the overview strip write it.
type Scale struct {
	Min, Max float64
}

func (s Scale) Span() float64 { return s.Max - s.Min }

// FullExtent is the X scale covering all n samples.
func FullExtent(n int) Scale {
	if n < 2 {
		return Scale{Min: 0, Max: 1}
	}
	return Scale{Min: 0, Max: float64(n - 1)}
}

// PxOf maps a data index to a pixel offset within a plot of the given
// left edge and width.
func (s Scale) PxOf(idx float64, left, width float32) float32 {
	span := s.Span()
	if span <= 0 {
		return left
	}
	return left + float32((idx-s.Min)/span)*width
}

// IndexAt inverts PxOf.
func (s Scale) IndexAt(px, left, width float32) float64 {
	if width <= 0 {
		return s.Min
	}
	return s.Min + float64((px-left)/width)*s.Span()
}

// PadRange computes the displayed range of a Y axis from the raw data
// extremes. Fixed domain bounds are respected exactly; free sides get
// padFraction of the span, or a symmetric expansion to minSpread when
// the data is flat. Degenerate inputs (NaN extremes, inverted ranges)
// resolve to a usable range rather than propagating NaN into every
// pixel computation downstream.
func PadRange(dataMin, dataMax float64, dom Domain) Scale {
	if math.IsNaN(dataMin) || math.IsNaN(dataMax) || math.IsInf(dataMin, 0) || math.IsInf(dataMax, 0) || dataMax < dataMin {
		dataMin, dataMax = 0, 0
	}
	span := dataMax - dataMin
	lo := dataMin - span*padFraction
	hi := dataMax + span*padFraction
	if span < minSpread {
		center := (dataMin + dataMax) / 2
		lo = center - minSpread/2
		hi = center + minSpread/2
	}
	if dom.Min.Set {
		lo = dom.Min.Value
		if !dom.Max.Set && hi-lo < minSpread {
			hi = lo + minSpread
		}
	}
	if dom.Max.Set {
		hi = dom.Max.Value
		if !dom.Min.Set && hi-lo < minSpread {
			lo = hi - minSpread
		}
	}
	if hi <= lo {
		hi = lo + minSpread
	}
	return Scale{Min: lo, Max: hi}
}

// clampWindow constrains an X window to [0, n-1], sliding both bounds
// together when one clamps so the visible width stays constant.
func clampWindow(s Scale, n int) Scale {
	full := float64(n - 1)
	if full < minVisibleSpan {
		return FullExtent(n)
	}
	span := s.Span()
	if span > full || span <= 0 {
		return Scale{Min: 0, Max: full}
	}
	if s.Min < 0 {
		return Scale{Min: 0, Max: span}
	}
	if s.Max > full {
		return Scale{Min: full - span, Max: full}
	}
	return s
}

// ZoomAt scales the window by factor around the anchor data value,
// preserving the anchor's relative position. The result is clamped to
// [0, n-1]. Zooming past a two-sample span is rejected.
func ZoomAt(s Scale, anchor, factor float64, n int) (Scale, bool) {
	if n < 2 || factor <= 0 {
		return s, false
	}
	span := s.Span() * factor
	if span < minVisibleSpan {
		return s, false
	}
	full := float64(n - 1)
	if span > full {
		span = full
	}
	frac := 0.5
	if s.Span() > 0 {
		frac = (anchor - s.Min) / s.Span()
		frac = math.Max(0, math.Min(1, frac))
	}
	lo := anchor - frac*span
	return clampWindow(Scale{Min: lo, Max: lo + span}, n), true
}

// Pan translates the window by delta index units, pinning at the data
// boundaries without changing the visible width.
func Pan(s Scale, delta float64, n int) Scale {
	return clampWindow(Scale{Min: s.Min + delta, Max: s.Max + delta}, n)
}

// VisibleIndices returns the closed integer index range covered by the
// window, clamped to [0, n-1].
func VisibleIndices(s Scale, n int) (lo, hi int) {
	lo = int(math.Ceil(s.Min - 1e-9))
	hi = int(math.Floor(s.Max + 1e-9))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// NiceTicks returns up to maxTicks round values covering the scale,
// stepped by 1, 2, or 5 times a power of ten.
func NiceTicks(s Scale, maxTicks int) []float64 {
	span := s.Span()
	if span <= 0 || maxTicks < 2 {
		return nil
	}
	raw := span / float64(maxTicks-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	switch {
	case raw/mag > 5:
		step = mag * 10
	case raw/mag > 2:
		step = mag * 5
	case raw/mag > 1:
		step = mag * 2
	}
	var ticks []float64
	for v := math.Ceil(s.Min/step) * step; v <= s.Max+step*1e-6; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}
