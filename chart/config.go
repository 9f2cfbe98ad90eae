// Package chart renders interactive time-series charts onto a Gio
// immediate-mode canvas. A Config describes one chart; a Chart instance
// owns the live zoom, cursor, and visibility state layered on top of it
// by a pipeline of plugins.
package chart

import (
	"image/color"
	"math"
	"strconv"

	"gioui.org/layout"
	"gioui.org/unit"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// SeriesType selects how one series is drawn.
type SeriesType uint8

const (
	TypeLine SeriesType = iota
	TypeArea
	TypeBar
	TypeBand
)

// LineStyle selects the stroke pattern for line and area series.
type LineStyle uint8

const (
	StyleSolid LineStyle = iota
	StyleDashed
	StyleDotted
)

// Null marks a missing sample. Drawn paths break at null samples rather
// than interpolating across them.
func Null() float64 { return math.NaN() }

// IsNull reports whether a sample is missing.
func IsNull(v float64) bool { return math.IsNaN(v) }

// Bound is one side of an axis domain. The zero value means "auto":
// derive the bound from the data and pad it.
type Bound struct {
	Set   bool
	Value float64
}

// Fix returns a bound pinned to v. No padding is applied on a fixed side.
func Fix(v float64) Bound { return Bound{Set: true, Value: v} }

// Domain restricts the computed range of a Y axis.
type Domain struct {
	Min, Max Bound
}

// Axis describes one value axis.
type Axis struct {
	Domain Domain
	// Format renders a tick or tooltip value. Nil falls back to a compact
	// decimal form.
	Format func(float64) string
}

func (a Axis) FormatValue(v float64) string {
	if a.Format != nil {
		return a.Format(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Series is one data series. Data length is normalized to the X axis
// length; samples beyond the provided data are null.
type Series struct {
	ID    string
	Name  string
	Color color.NRGBA
	Type  SeriesType
	Data  []float64
	// Upper and Lower carry the bounds of a band series.
	Upper, Lower []float64
	// Width is the stroke width for line and area series. Zero means 1.5dp.
	Width unit.Dp
	// Opacity scales the stroke color, FillOpacity the fill color.
	// Zero means the defaults of 1 and 0.25.
	Opacity     float32
	FillOpacity float32
	Style       LineStyle
	Z           int
	// AxisIndex selects the primary (0) or secondary (1) Y axis.
	AxisIndex int
	// Labeled enables on-canvas value labels for this series.
	Labeled bool
}

// MarkLine is a horizontal reference line drawn across the plot.
type MarkLine struct {
	Value     float64
	Label     string
	AxisIndex int
	Color     color.NRGBA
}

// Theme carries the host-derived colors the chart draws with. The chart
// treats it as an opaque value; re-read it by updating the config.
type Theme struct {
	Background    color.NRGBA
	TextPrimary   color.NRGBA
	TextSecondary color.NRGBA
	Accent        color.NRGBA
	Border        color.NRGBA
	GridLine      color.NRGBA
	CardBg        color.NRGBA
}

// Config is the complete description of one chart. It is rebuilt by the
// caller whenever the underlying data changes and applied to a live
// instance with Registry.Update, which preserves zoom and plugin state.
type Config struct {
	Series []Series
	// XLabels is the shared category axis. Its length defines the logical
	// data length of every series.
	XLabels        []string
	YAxis          Axis
	YAxisSecondary *Axis
	MarkLines      []MarkLine
	ShowLegend     bool
	ShowTooltip    bool
	ShowOverview   bool
	ShowGrid       bool
	Height         unit.Dp
	Theme          Theme
}

// Len returns the logical data length N.
func (c *Config) Len() int { return len(c.XLabels) }

// Normalize pads or truncates every series to the X axis length and
// substitutes defaults for unset per-series fields. It never fails:
// malformed configs degrade to charts with missing samples instead.
func (c *Config) Normalize() {
	n := c.Len()
	for i := range c.Series {
		s := &c.Series[i]
		s.Data = fitLen(s.Data, n)
		if s.Type == TypeBand {
			s.Upper = fitLen(s.Upper, n)
			s.Lower = fitLen(s.Lower, n)
		}
		if s.AxisIndex < 0 || s.AxisIndex > 1 || (s.AxisIndex == 1 && c.YAxisSecondary == nil) {
			s.AxisIndex = 0
		}
		if s.Width == 0 {
			s.Width = 1.5
		}
		if s.Opacity == 0 {
			s.Opacity = 1
		}
		if s.FillOpacity == 0 {
			s.FillOpacity = 0.25
		}
	}
}

// fitLen returns data resized to n samples, padding with nulls.
func fitLen(data []float64, n int) []float64 {
	if len(data) == n {
		return data
	}
	if len(data) > n {
		return data[:n]
	}
	out := make([]float64, n)
	copy(out, data)
	for i := len(data); i < n; i++ {
		out[i] = math.NaN()
	}
	return out
}

// AxisFor returns the series' axis description.
func (c *Config) AxisFor(index int) Axis {
	if index == 1 && c.YAxisSecondary != nil {
		return *c.YAxisSecondary
	}
	return c.YAxis
}

func withAlpha(col color.NRGBA, opacity float32) color.NRGBA {
	if opacity >= 1 {
		return col
	}
	if opacity < 0 {
		opacity = 0
	}
	col.A = uint8(float32(col.A) * opacity)
	return col
}
