// Package export renders chart configurations headlessly to static
// images. It reuses the chart engine's scale and geometry math so a
// snapshot agrees with the interactive view of the same config.
package export

import (
	"fmt"
	"image/color"

	"github.com/snowsight/snowsight/chart"
)

const (
	marginTop    = 16.0
	marginBottom = 36.0
	marginSide   = 56.0
	marginNarrow = 16.0
	maxYTicks    = 6
	maxXLabels   = 10
	fontSize     = 12.0
)

// frame is the pixel geometry of one snapshot: the plot rectangle and
// the scales mapping data into it, computed exactly like the
// interactive chart does at full extent.
type frame struct {
	cfg           *chart.Config
	width, height float64
	left, top     float64
	right, bottom float64

	x            chart.Scale
	y            [2]chart.Scale
	hasSecondary bool
}

func allVisible(string) bool { return true }

func buildFrame(cfg *chart.Config, width, height int) (*frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid snapshot size %dx%d", width, height)
	}
	cfg.Normalize()
	if cfg.Len() == 0 {
		return nil, fmt.Errorf("cannot render a chart without X labels")
	}
	f := &frame{
		cfg:          cfg,
		width:        float64(width),
		height:       float64(height),
		hasSecondary: cfg.YAxisSecondary != nil,
		x:            chart.FullExtent(cfg.Len()),
	}
	f.left = marginSide
	f.top = marginTop
	f.right = f.width - marginNarrow
	if f.hasSecondary {
		f.right = f.width - marginSide
	}
	f.bottom = f.height - marginBottom
	if f.right <= f.left || f.bottom <= f.top {
		return nil, fmt.Errorf("snapshot size %dx%d leaves no plot area", width, height)
	}
	for axis := 0; axis < 2; axis++ {
		if axis == 1 && !f.hasSecondary {
			f.y[1] = f.y[0]
			break
		}
		lo, hi, ok := chart.DataRange(cfg, axis, f.x, allVisible)
		if !ok {
			lo, hi = 0, 0
		}
		f.y[axis] = chart.PadRange(lo, hi, cfg.AxisFor(axis).Domain)
	}
	return f, nil
}

func (f *frame) plotW() float64 { return f.right - f.left }
func (f *frame) plotH() float64 { return f.bottom - f.top }

func (f *frame) xPx(idx float64) float64 {
	return float64(f.x.PxOf(idx, float32(f.left), float32(f.plotW())))
}

func (f *frame) yPx(axis int, v float64) float64 {
	s := f.y[axis&1]
	span := s.Span()
	if span <= 0 {
		return f.bottom
	}
	return f.bottom - (v-s.Min)/span*f.plotH()
}

// baselineY is the zero line for bar and area fills, clamped into the
// plot like the interactive renderer clamps it.
func (f *frame) baselineY(axis int) float64 {
	y := f.yPx(axis, 0)
	if y < f.top {
		return f.top
	}
	if y > f.bottom {
		return f.bottom
	}
	return y
}

// xLabelIndices thins the category labels to at most maxXLabels,
// always keeping the first and last.
func (f *frame) xLabelIndices() []int {
	n := f.cfg.Len()
	if n == 0 {
		return nil
	}
	stride := (n + maxXLabels - 1) / maxXLabels
	if stride < 1 {
		stride = 1
	}
	var out []int
	for i := 0; i < n; i += stride {
		out = append(out, i)
	}
	if out[len(out)-1] != n-1 {
		out = append(out, n-1)
	}
	return out
}

func (f *frame) yTicks(axis int) []float64 {
	return chart.NiceTicks(f.y[axis&1], maxYTicks)
}

// barGeometry converts the engine's fractional slot into pixel offset
// and width for this frame.
func (f *frame) barGeometry(slot chart.BarSlot) (offset, width float64) {
	pxPerIndex := f.plotW()
	if span := f.x.Span(); span > 0 {
		pxPerIndex = f.plotW() / span
	}
	off, w := chart.BarGeometry(slot, float32(pxPerIndex))
	return float64(off), float64(w)
}

func cssColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// dashPattern mirrors the interactive renderer's dash synthesis.
func dashPattern(style chart.LineStyle, width float64) []float64 {
	switch style {
	case chart.StyleDashed:
		return []float64{6, 4}
	case chart.StyleDotted:
		return []float64{width, 3}
	default:
		return nil
	}
}

func alpha(c color.NRGBA, opacity float32) color.NRGBA {
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	c.A = uint8(float32(c.A) * opacity)
	return c
}
