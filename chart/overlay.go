package chart

import (
	"image"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

const (
	// tooltipOffset separates the tooltip from the cursor.
	tooltipOffset = unit.Dp(14)
	// snapThreshold gates the highlight visuals. The snapped index itself
	// is always available regardless of distance.
	snapThreshold = unit.Dp(48)
	highlightR    = unit.Dp(4)
)

// SnapIndex returns the data index nearest the pixel X under the current
// window: of the floor and ceiling sample indices the one closer in
// pixels wins. An index is always returned, clamped into the visible
// integer range, even when the cursor is far from any sample.
func SnapIndex(pl *Plot, px float32) int {
	idx := pl.IndexAt(px)
	lo := int(floor(idx))
	hi := lo + 1
	iLo := int(ceil(pl.X.Min))
	iHi := int(floor(pl.X.Max))
	if iHi < iLo {
		iHi = iLo
	}
	clampIdx := func(i int) int {
		if i < iLo {
			return iLo
		}
		if i > iHi {
			return iHi
		}
		return i
	}
	lo, hi = clampIdx(lo), clampIdx(hi)
	if lo == hi {
		return lo
	}
	dLo := px - pl.XPx(float64(lo))
	if dLo < 0 {
		dLo = -dLo
	}
	dHi := pl.XPx(float64(hi)) - px
	if dHi < 0 {
		dHi = -dHi
	}
	if dHi < dLo {
		return hi
	}
	return lo
}

// tooltipOrigin places a tooltip of the given size near the cursor:
// right of it by the offset, flipped left when it would overflow the
// right edge, and clamped vertically into the bounds.
func tooltipOrigin(cursor f32.Point, offset int, size image.Point, bounds image.Rectangle) image.Point {
	pos := image.Pt(int(cursor.X)+offset, int(cursor.Y))
	if pos.X+size.X > bounds.Max.X {
		pos.X = int(cursor.X) - offset - size.X
		if pos.X < bounds.Min.X {
			pos.X = bounds.Min.X
		}
	}
	if pos.Y+size.Y > bounds.Max.Y {
		pos.Y = bounds.Max.Y - size.Y
	}
	if pos.Y < bounds.Min.Y {
		pos.Y = bounds.Min.Y
	}
	return pos
}

type tooltipRow struct {
	series    *Series
	value     float64
	formatted string
}

// buildTooltipRows collects one row per visible series with a value at
// the index. Band series carry no single value and contribute no row.
func buildTooltipRows(cfg *Config, visible func(id string) bool, idx int) []tooltipRow {
	var rows []tooltipRow
	if idx < 0 || idx >= cfg.Len() {
		return rows
	}
	for si := range cfg.Series {
		s := &cfg.Series[si]
		if s.Type == TypeBand || !visible(s.ID) {
			continue
		}
		if idx >= len(s.Data) || IsNull(s.Data[idx]) {
			continue
		}
		v := s.Data[idx]
		rows = append(rows, tooltipRow{
			series:    s,
			value:     v,
			formatted: cfg.AxisFor(s.AxisIndex).FormatValue(v),
		})
	}
	return rows
}

// OverlayPlugin tracks the cursor, snaps it to the nearest sample, and
// renders the shared tooltip plus per-series highlight markers.
type OverlayPlugin struct {
	NopPlugin
	// lastIdx caches the snapped index so repeated cursor updates over
	// the same sample skip the row rebuild entirely.
	lastIdx int
	rows    []tooltipRow
	active  bool
}

func (o *OverlayPlugin) Init(*Chart) {
	o.lastIdx = -1
}

func (o *OverlayPlugin) CursorChanged(c *Chart, pl *Plot, cur Cursor) {
	if !cur.Inside || !c.Config().ShowTooltip || pl.Rect.Dx() <= 0 {
		o.active = false
		o.lastIdx = -1
		o.rows = nil
		return
	}
	o.active = true
	idx := SnapIndex(pl, cur.Pos.X)
	if idx == o.lastIdx {
		return
	}
	o.lastIdx = idx
	o.rows = buildTooltipRows(c.Config(), c.SeriesVisible, idx)
}

func (o *OverlayPlugin) ScaleChanged(c *Chart, _ Scale) {
	// The same pixel now maps to a different sample; force a rebuild on
	// the next cursor update.
	o.lastIdx = -1
}

// invalidate drops the cached rows so the next cursor dispatch rebuilds
// them even when the snapped index is unchanged. The chart calls this
// when series visibility or the config mutates under a parked cursor.
func (o *OverlayPlugin) invalidate() {
	o.lastIdx = -1
	o.rows = nil
}

func (o *OverlayPlugin) DrawPlot(c *Chart, gtx C, pl *Plot) {
	if !o.active || o.lastIdx < 0 || len(o.rows) == 0 || c.th == nil {
		return
	}
	theme := c.Config().Theme
	snapX := pl.XPx(float64(o.lastIdx))

	// Crosshair at the snapped sample.
	paint.FillShape(gtx.Ops, withAlpha(theme.Border, 0.8), clip.Rect{
		Min: image.Pt(int(snapX), pl.Rect.Min.Y),
		Max: image.Pt(int(snapX)+gtx.Dp(1), pl.Rect.Max.Y),
	}.Op())

	// Highlight markers sit on top of every series, but only when the
	// cursor is actually near the snapped sample.
	dist := c.cursor.Pos.X - snapX
	if dist < 0 {
		dist = -dist
	}
	if dist <= float32(gtx.Dp(snapThreshold)) {
		r := float32(gtx.Dp(highlightR))
		for _, row := range o.rows {
			pt := f32.Pt(snapX, pl.YPx(row.series.AxisIndex, row.value))
			fillCircle(gtx, pt, r+float32(gtx.Dp(1.5)), theme.Background)
			fillCircle(gtx, pt, r, row.series.Color)
		}
	}

	o.drawTooltip(c, gtx, pl)
}

func (o *OverlayPlugin) drawTooltip(c *Chart, gtx C, pl *Plot) {
	th := c.th
	theme := c.Config().Theme
	title := ""
	if o.lastIdx < len(c.Config().XLabels) {
		title = c.Config().XLabels[o.lastIdx]
	}

	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Point{}
	dims, call := rec(gtx, func(gtx C) D {
		return layout.Background{}.Layout(gtx,
			func(gtx C) D {
				paint.FillShape(gtx.Ops, withAlpha(theme.CardBg, 0.95), clip.Rect{Max: gtx.Constraints.Min}.Op())
				paint.FillShape(gtx.Ops, theme.Border, clip.Stroke{
					Path:  clip.Rect{Max: gtx.Constraints.Min}.Path(),
					Width: float32(gtx.Dp(1)),
				}.Op())
				return D{Size: gtx.Constraints.Min}
			},
			func(gtx C) D {
				return layout.UniformInset(8).Layout(gtx, func(gtx C) D {
					children := make([]layout.FlexChild, 0, len(o.rows)+1)
					header := material.Body2(th, title)
					header.Color = theme.TextSecondary
					children = append(children, layout.Rigid(header.Layout))
					for i := range o.rows {
						row := o.rows[i]
						children = append(children, layout.Rigid(func(gtx C) D {
							return o.layoutRow(gtx, th, theme, row)
						}))
					}
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
				})
			},
		)
	})
	gtx.Constraints = origConstraints

	pos := tooltipOrigin(c.cursor.Pos, gtx.Dp(tooltipOffset), dims.Size, pl.Rect)
	stack := op.Offset(pos).Push(gtx.Ops)
	call.Add(gtx.Ops)
	stack.Pop()
}

func (o *OverlayPlugin) layoutRow(gtx C, th *material.Theme, theme Theme, row tooltipRow) D {
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			size := image.Pt(gtx.Dp(8), gtx.Dp(8))
			paint.FillShape(gtx.Ops, row.series.Color, clip.Ellipse{Max: size}.Op(gtx.Ops))
			return D{Size: size}
		}),
		layout.Rigid(layout.Spacer{Width: 6}.Layout),
		layout.Rigid(func(gtx C) D {
			l := material.Body2(th, row.series.Name)
			l.Color = theme.TextPrimary
			return l.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: 10}.Layout),
		layout.Rigid(func(gtx C) D {
			l := material.Body2(th, row.formatted)
			l.Color = theme.TextPrimary
			return l.Layout(gtx)
		}),
	)
}

func (o *OverlayPlugin) Destroy(*Chart) {
	o.rows = nil
	o.lastIdx = -1
	o.active = false
}
