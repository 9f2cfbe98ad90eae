package chart

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
)

// drawSeries draws one series' base geometry. It must never fail on
// malformed data: undrawable samples are skipped and the series degrades
// instead of blanking the chart.
func drawSeries(gtx C, pl *Plot, s *Series, visible func(id string) bool, cfg *Config) {
	switch s.Type {
	case TypeLine:
		drawLineSeries(gtx, pl, s, false)
	case TypeArea:
		drawLineSeries(gtx, pl, s, true)
	case TypeBar:
		slots := BarSlots(cfg.Series, visible)
		drawBarSeries(gtx, pl, s, slots[s.ID])
	case TypeBand:
		drawBandSeries(gtx, pl, s)
	}
}

// runPoints converts a run of samples to pixel positions.
func runPoints(pl *Plot, s *Series, run Run) []f32.Point {
	pts := make([]f32.Point, 0, run.End-run.Start+1)
	for i := run.Start; i <= run.End && i < len(s.Data); i++ {
		v := s.Data[i]
		if IsNull(v) {
			continue
		}
		pts = append(pts, f32.Pt(pl.XPx(float64(i)), pl.YPx(s.AxisIndex, v)))
	}
	return pts
}

func drawLineSeries(gtx C, pl *Plot, s *Series, filled bool) {
	strokeCol := withAlpha(s.Color, s.Opacity)
	fillCol := withAlpha(s.Color, s.FillOpacity)
	width := float32(gtx.Dp(s.Width))
	baseline := baselineY(pl, s.AxisIndex)
	for _, run := range SplitRuns(s.Data) {
		pts := runPoints(pl, s, run)
		if len(pts) == 0 {
			continue
		}
		if len(pts) == 1 {
			// An isolated sample still deserves a mark.
			fillCircle(gtx, pts[0], width, strokeCol)
			continue
		}
		if filled {
			var p clip.Path
			p.Begin(gtx.Ops)
			p.MoveTo(f32.Pt(pts[0].X, baseline))
			for _, pt := range pts {
				p.LineTo(pt)
			}
			p.LineTo(f32.Pt(pts[len(pts)-1].X, baseline))
			p.Close()
			fillOutline(gtx, &p, fillCol)
		}
		strokePolyline(gtx, pts, width, s.Style, strokeCol)
	}
}

func drawBarSeries(gtx C, pl *Plot, s *Series, slot BarSlot) {
	if slot.Count == 0 {
		return
	}
	col := withAlpha(s.Color, s.Opacity)
	offset, barW := BarGeometry(slot, pl.PxPerIndex())
	if barW < 1 {
		barW = 1
	}
	baseline := baselineY(pl, s.AxisIndex)
	iLo, iHi := VisibleIndices(pl.X, len(s.Data))
	for i := iLo; i <= iHi; i++ {
		v := s.Data[i]
		if IsNull(v) {
			continue
		}
		x := pl.XPx(float64(i)) + offset
		top := pl.YPx(s.AxisIndex, v)
		bottom := baseline
		if top > bottom {
			top, bottom = bottom, top
		}
		if int(bottom)-int(top) < 1 {
			bottom = top + 1
		}
		paint.FillShape(gtx.Ops, col, clip.Rect{
			Min: image.Pt(int(x), int(top)),
			Max: image.Pt(int(x+barW), int(bottom)),
		}.Op())
	}
}

// drawBandSeries fills the region between the band's bounds: the upper
// boundary left to right, then the lower boundary right to left, closing
// one path per contiguous run.
func drawBandSeries(gtx C, pl *Plot, s *Series) {
	col := withAlpha(s.Color, s.FillOpacity)
	for _, run := range BandRuns(s.Upper, s.Lower) {
		var p clip.Path
		p.Begin(gtx.Ops)
		for i := run.Start; i <= run.End; i++ {
			pt := f32.Pt(pl.XPx(float64(i)), pl.YPx(s.AxisIndex, s.Upper[i]))
			if i == run.Start {
				p.MoveTo(pt)
			} else {
				p.LineTo(pt)
			}
		}
		for i := run.End; i >= run.Start; i-- {
			p.LineTo(f32.Pt(pl.XPx(float64(i)), pl.YPx(s.AxisIndex, s.Lower[i])))
		}
		p.Close()
		fillOutline(gtx, &p, col)
	}
}

// baselineY is the zero line for bar and area series, clamped to the
// plot so degenerate ranges still anchor somewhere drawable.
func baselineY(pl *Plot, axisIndex int) float32 {
	y := pl.YPx(axisIndex, 0)
	if y < float32(pl.Rect.Min.Y) {
		y = float32(pl.Rect.Min.Y)
	}
	if y > float32(pl.Rect.Max.Y) {
		y = float32(pl.Rect.Max.Y)
	}
	return y
}

func fillOutline(gtx C, p *clip.Path, col color.NRGBA) {
	stack := clip.Outline{Path: p.End()}.Op().Push(gtx.Ops)
	paint.Fill(gtx.Ops, col)
	stack.Pop()
}

// strokePolyline strokes a polyline, synthesizing dash patterns by
// segmenting the path since the canvas only strokes continuous paths.
func strokePolyline(gtx C, pts []f32.Point, width float32, style LineStyle, col color.NRGBA) {
	if len(pts) < 2 {
		return
	}
	var p clip.Path
	p.Begin(gtx.Ops)
	switch style {
	case StyleSolid:
		p.MoveTo(pts[0])
		for _, pt := range pts[1:] {
			p.LineTo(pt)
		}
	case StyleDashed:
		dashPolyline(&p, pts, float32(gtx.Dp(6)), float32(gtx.Dp(4)))
	case StyleDotted:
		dashPolyline(&p, pts, float32(gtx.Dp(2)), float32(gtx.Dp(3)))
	}
	stack := clip.Stroke{Path: p.End(), Width: width}.Op().Push(gtx.Ops)
	paint.Fill(gtx.Ops, col)
	stack.Pop()
}

// dashPolyline walks the polyline emitting alternating on/off spans.
func dashPolyline(p *clip.Path, pts []f32.Point, on, off float32) {
	drawing := true
	remaining := on
	pos := pts[0]
	p.MoveTo(pos)
	for _, next := range pts[1:] {
		for {
			dx := float64(next.X - pos.X)
			dy := float64(next.Y - pos.Y)
			dist := float32(math.Hypot(dx, dy))
			if dist <= remaining {
				remaining -= dist
				if drawing {
					p.LineTo(next)
				} else {
					p.MoveTo(next)
				}
				pos = next
				break
			}
			t := remaining / dist
			mid := f32.Pt(pos.X+float32(dx)*t, pos.Y+float32(dy)*t)
			if drawing {
				p.LineTo(mid)
				remaining = off
			} else {
				p.MoveTo(mid)
				remaining = on
			}
			drawing = !drawing
			pos = mid
		}
	}
}

func fillCircle(gtx C, center f32.Point, radius float32, col color.NRGBA) {
	if radius < 1 {
		radius = 1
	}
	paint.FillShape(gtx.Ops, col, clip.Ellipse{
		Min: image.Pt(int(center.X-radius), int(center.Y-radius)),
		Max: image.Pt(int(center.X+radius), int(center.Y+radius)),
	}.Op(gtx.Ops))
}

// drawHDashes draws a dashed horizontal rule across the plot.
func drawHDashes(gtx C, pl *Plot, y float32, col color.NRGBA) {
	pts := []f32.Point{
		f32.Pt(float32(pl.Rect.Min.X), y),
		f32.Pt(float32(pl.Rect.Max.X), y),
	}
	strokePolyline(gtx, pts, float32(gtx.Dp(1)), StyleDashed, col)
}
