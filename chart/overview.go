package chart

import (
	"image"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
)

// OverviewHit classifies a press on the overview strip.
type OverviewHit uint8

const (
	HitNone OverviewHit = iota
	HitLeftHandle
	HitRightHandle
	HitInside
	HitOutside
)

// OverviewHitTest decides the drag mode for a press at x: within a
// handle's width of a selection edge resizes that edge, inside the
// selection pans it, anywhere else jumps the selection to the click.
func OverviewHitTest(x, selL, selR, handleW float32) OverviewHit {
	half := handleW / 2
	switch {
	case x >= selL-half && x <= selL+half:
		return HitLeftHandle
	case x >= selR-half && x <= selR+half:
		return HitRightHandle
	case x > selL && x < selR:
		return HitInside
	default:
		return HitOutside
	}
}

// CenterSelection moves a same-width selection so it centers on the
// given data position, clamped to the data bounds.
func CenterSelection(sel Scale, center float64, n int) Scale {
	span := sel.Span()
	return clampWindow(Scale{Min: center - span/2, Max: center + span/2}, n)
}

// ResizeSelection moves one selection edge to the given data position,
// enforcing the minimum span.
func ResizeSelection(sel Scale, edge float64, leftEdge bool, minSpan float64, n int) Scale {
	full := float64(n - 1)
	if minSpan < minVisibleSpan {
		minSpan = minVisibleSpan
	}
	if leftEdge {
		if edge < 0 {
			edge = 0
		}
		if edge > sel.Max-minSpan {
			edge = sel.Max - minSpan
		}
		sel.Min = edge
	} else {
		if edge > full {
			edge = full
		}
		if edge < sel.Min+minSpan {
			edge = sel.Min + minSpan
		}
		sel.Max = edge
	}
	return sel
}

// OverviewPlugin draws a miniature full-extent view of every visible
// series below the main chart, with a draggable selection window over
// it. It writes the same shared X scale the main chart's zoom does, so a
// change on either side redraws the other.
type OverviewPlugin struct {
	NopPlugin
	throttle throttle
	// stripSize is the strip geometry of the previous frame, used to
	// interpret this frame's pointer positions.
	stripSize image.Point
	dragMode  OverviewHit
	lastX     float32
}

const (
	overviewHeight  = unit.Dp(42)
	handleWidth     = unit.Dp(8)
	minSelectionPx  = 16
	stripMaxSamples = 2 // samples per pixel kept when thinning
)

func (o *OverviewPlugin) Input(c *Chart, gtx C, pl *Plot) {
	if !c.Config().ShowOverview || o.stripSize.X <= 0 {
		return
	}
	n := c.Config().Len()
	full := FullExtent(n)
	w := float32(o.stripSize.X)
	idxAt := func(x float32) float64 { return full.IndexAt(x, 0, w) }
	minSpan := float64(minSelectionPx) / float64(w) * full.Span()
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: o,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		sel := c.XScale()
		selL := full.PxOf(sel.Min, 0, w)
		selR := full.PxOf(sel.Max, 0, w)
		switch pe.Kind {
		case pointer.Press:
			if pe.Buttons != pointer.ButtonPrimary {
				continue
			}
			hit := OverviewHitTest(pe.Position.X, selL, selR, float32(gtx.Dp(handleWidth)))
			if hit == HitOutside {
				c.SetXScale(CenterSelection(sel, idxAt(pe.Position.X), n))
				hit = HitInside
			}
			o.dragMode = hit
			o.lastX = pe.Position.X
		case pointer.Drag:
			if o.dragMode == HitNone || !o.throttle.allow(gtx.Now) {
				continue
			}
			switch o.dragMode {
			case HitLeftHandle:
				c.SetXScale(ResizeSelection(sel, idxAt(pe.Position.X), true, minSpan, n))
			case HitRightHandle:
				c.SetXScale(ResizeSelection(sel, idxAt(pe.Position.X), false, minSpan, n))
			case HitInside:
				delta := idxAt(pe.Position.X) - idxAt(o.lastX)
				o.lastX = pe.Position.X
				c.SetXScale(Pan(sel, delta, n))
			}
		case pointer.Release, pointer.Cancel:
			o.dragMode = HitNone
		}
	}
}

// LayoutStrip draws the overview strip. Called by the chart's Layout in
// its own slot below the plot.
func (o *OverviewPlugin) LayoutStrip(c *Chart, gtx C) D {
	size := image.Pt(gtx.Constraints.Max.X, gtx.Dp(overviewHeight))
	o.stripSize = size
	rect := image.Rectangle{Max: size}
	defer clip.Rect(rect).Push(gtx.Ops).Pop()
	cfg := c.Config()
	theme := cfg.Theme

	paint.FillShape(gtx.Ops, theme.CardBg, clip.Rect(rect).Op())
	event.Op(gtx.Ops, o)

	pl := o.stripPlot(c, rect)
	for _, si := range DrawOrder(cfg.Series) {
		s := &cfg.Series[si]
		if !c.SeriesVisible(s.ID) {
			continue
		}
		o.drawMini(gtx, &pl, s)
	}

	// Dim everything outside the selection and mark its edges with
	// draggable handles.
	full := FullExtent(cfg.Len())
	w := float32(size.X)
	sel := c.XScale()
	selL := full.PxOf(sel.Min, 0, w)
	selR := full.PxOf(sel.Max, 0, w)
	dim := withAlpha(theme.Background, 0.65)
	paint.FillShape(gtx.Ops, dim, clip.Rect{Max: image.Pt(int(selL), size.Y)}.Op())
	paint.FillShape(gtx.Ops, dim, clip.Rect{
		Min: image.Pt(int(selR), 0),
		Max: size,
	}.Op())
	// The visible handle is narrower than its hit area.
	handleVis := gtx.Dp(4)
	for _, x := range []float32{selL, selR} {
		paint.FillShape(gtx.Ops, theme.Accent, clip.Rect{
			Min: image.Pt(int(x)-handleVis/2, 0),
			Max: image.Pt(int(x)+handleVis/2, size.Y),
		}.Op())
	}
	paint.FillShape(gtx.Ops, theme.Border, clip.Rect{Max: image.Pt(size.X, gtx.Dp(1))}.Op())
	return D{Size: size}
}

// stripPlot maps the full data extent into the strip.
func (o *OverviewPlugin) stripPlot(c *Chart, rect image.Rectangle) Plot {
	cfg := c.Config()
	pl := Plot{
		Rect:         rect,
		X:            FullExtent(cfg.Len()),
		HasSecondary: cfg.YAxisSecondary != nil,
	}
	for axis := 0; axis < 2; axis++ {
		if axis == 1 && !pl.HasSecondary {
			pl.Y[1] = pl.Y[0]
			break
		}
		lo, hi, ok := DataRange(cfg, axis, pl.X, c.SeriesVisible)
		if !ok {
			lo, hi = 0, 0
		}
		pl.Y[axis] = PadRange(lo, hi, cfg.AxisFor(axis).Domain)
	}
	return pl
}

// drawMini draws one series at reduced fidelity: samples are thinned so
// the strip never walks more than a couple of points per pixel.
func (o *OverviewPlugin) drawMini(gtx C, pl *Plot, s *Series) {
	data := s.Data
	if s.Type == TypeBand {
		data = s.Upper
	}
	n := len(data)
	if n == 0 {
		return
	}
	stride := 1
	if budget := pl.Rect.Dx() * stripMaxSamples; budget > 0 && n > budget {
		stride = n / budget
	}
	col := withAlpha(s.Color, 0.8)
	for _, run := range SplitRuns(data) {
		var pts []f32.Point
		for i := run.Start; i <= run.End; i += stride {
			pts = append(pts, f32.Pt(pl.XPx(float64(i)), pl.YPx(s.AxisIndex, data[i])))
		}
		if len(pts) < 2 {
			continue
		}
		strokePolyline(gtx, pts, float32(gtx.Dp(1)), StyleSolid, col)
	}
}

func (o *OverviewPlugin) Destroy(*Chart) {
	o.dragMode = HitNone
	o.stripSize = image.Point{}
}
