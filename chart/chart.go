package chart

import (
	"image"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
)

// Plot is the per-frame pixel geometry of the plot area. It is derived
// from the chart's scales and the frame's constraints, never persisted:
// a resize recomputes it without touching the X window.
type Plot struct {
	// Rect is the plot area in plot-local pixels.
	Rect image.Rectangle
	// X is the visible window in data-index space.
	X Scale
	// Y holds the computed value ranges for the primary and secondary
	// axes.
	Y            [2]Scale
	HasSecondary bool
}

// XPx maps a data index to a plot-local pixel X.
func (p *Plot) XPx(idx float64) float32 {
	return p.X.PxOf(idx, float32(p.Rect.Min.X), float32(p.Rect.Dx()))
}

// IndexAt maps a plot-local pixel X back to a (fractional) data index.
func (p *Plot) IndexAt(px float32) float64 {
	return p.X.IndexAt(px, float32(p.Rect.Min.X), float32(p.Rect.Dx()))
}

// YPx maps a value on the given axis to a plot-local pixel Y.
func (p *Plot) YPx(axisIndex int, v float64) float32 {
	s := p.Y[0]
	if axisIndex == 1 {
		s = p.Y[1]
	}
	span := s.Span()
	if span <= 0 {
		return float32(p.Rect.Max.Y)
	}
	return float32(p.Rect.Max.Y) - float32((v-s.Min)/span)*float32(p.Rect.Dy())
}

// PxPerIndex is the pixel spacing between adjacent samples.
func (p *Plot) PxPerIndex() float32 {
	span := p.X.Span()
	if span <= 0 {
		return float32(p.Rect.Dx())
	}
	return float32(p.Rect.Dx()) / float32(span)
}

// Options configures a chart instance at construction.
type Options struct {
	// Sync and SyncKey enroll the chart in a cross-chart zoom group.
	Sync    *SyncContext
	SyncKey string
	// OnVisibilityToggle fires when the legend toggles a series, so the
	// host can persist the selection.
	OnVisibilityToggle func(id string, visible bool)
}

// Chart is one live chart instance. It owns the current config, the X
// window, the per-series visibility map, and all plugin state. Instances
// are created once per container by the Registry and mutated in place on
// data updates, so zoom and interaction state survive re-renders.
type Chart struct {
	cfg     Config
	xscale  Scale
	visible map[string]bool

	plugins  []Plugin
	zoom     *ZoomPlugin
	overview *OverviewPlugin
	labels   *LabelPlugin
	overlay  *OverlayPlugin
	legend   *LegendPlugin

	syncCtx *SyncContext
	syncKey string
	onVis   func(id string, visible bool)

	cursor         Cursor
	cursorThrottle throttle
	plot           Plot
	th             *material.Theme
	destroyed      bool
}

// New builds a chart instance for the given config. Hosts normally go
// through a Registry instead of calling New directly.
func New(cfg Config, opts Options) *Chart {
	cfg.Normalize()
	c := &Chart{
		cfg:     cfg,
		xscale:  FullExtent(cfg.Len()),
		visible: make(map[string]bool),
		syncCtx: opts.Sync,
		syncKey: opts.SyncKey,
		onVis:   opts.OnVisibilityToggle,
	}
	for _, s := range cfg.Series {
		c.visible[s.ID] = true
	}
	c.zoom = &ZoomPlugin{}
	c.overview = &OverviewPlugin{}
	c.labels = &LabelPlugin{}
	c.overlay = &OverlayPlugin{}
	c.legend = &LegendPlugin{}
	// Pipeline order fixes the plot-area draw order: series first (drawn
	// by the chart itself), then labels, then highlights and tooltip on
	// top of everything.
	c.plugins = []Plugin{c.zoom, c.overview, c.labels, c.overlay, c.legend}
	for _, p := range c.plugins {
		p.Init(c)
	}
	if c.syncCtx != nil {
		c.syncCtx.join(c.syncKey, c)
	}
	return c
}

// Config returns the chart's current configuration.
func (c *Chart) Config() *Config { return &c.cfg }

// XScale returns the visible X window.
func (c *Chart) XScale() Scale { return c.xscale }

// SetXScale installs a new X window, clamped to the data bounds, and
// notifies plugins and any sync group. A no-op when the window is
// unchanged.
func (c *Chart) SetXScale(s Scale) {
	next := clampWindow(s, c.cfg.Len())
	if next == c.xscale {
		return
	}
	c.xscale = next
	for _, p := range c.plugins {
		p.ScaleChanged(c, next)
	}
	if c.syncCtx != nil {
		c.syncCtx.publish(c, c.syncKey, next)
	}
}

// applySyncedScale installs a window pushed from another chart in the
// sync group without re-broadcasting it.
func (c *Chart) applySyncedScale(s Scale) {
	next := clampWindow(s, c.cfg.Len())
	if next == c.xscale {
		return
	}
	c.xscale = next
	for _, p := range c.plugins {
		p.ScaleChanged(c, next)
	}
}

// ResetZoom restores the full data extent.
func (c *Chart) ResetZoom() {
	c.SetXScale(FullExtent(c.cfg.Len()))
}

// SeriesVisible reports whether a series is currently shown. Series not
// present in the visibility map default to visible.
func (c *Chart) SeriesVisible(id string) bool {
	v, ok := c.visible[id]
	return !ok || v
}

// SetVisible shows or hides a series. Hidden series contribute nothing
// to range computation, bar slotting, labels, or tooltip rows.
func (c *Chart) SetVisible(id string, visible bool) {
	if c.SeriesVisible(id) == visible {
		return
	}
	c.visible[id] = visible
	c.overlay.invalidate()
	if c.onVis != nil {
		c.onVis(id, visible)
	}
}

// ToggleVisible flips a series' visibility.
func (c *Chart) ToggleVisible(id string) {
	c.SetVisible(id, !c.SeriesVisible(id))
}

// UpdateConfig replaces the chart's config in place. The zoom window
// survives: it re-clamps when the data shrank and tracks the full extent
// only when it was already fully zoomed out.
func (c *Chart) UpdateConfig(cfg Config) {
	cfg.Normalize()
	wasFull := c.xscale == FullExtent(c.cfg.Len())
	c.cfg = cfg
	c.overlay.invalidate()
	for _, s := range cfg.Series {
		if _, ok := c.visible[s.ID]; !ok {
			c.visible[s.ID] = true
		}
	}
	next := clampWindow(c.xscale, cfg.Len())
	if wasFull {
		next = FullExtent(cfg.Len())
	}
	if next != c.xscale {
		c.xscale = next
		for _, p := range c.plugins {
			p.ScaleChanged(c, next)
		}
	}
}

// Destroy tears down plugin state. Safe to call more than once.
func (c *Chart) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.syncCtx != nil {
		c.syncCtx.leave(c.syncKey, c)
	}
	for _, p := range c.plugins {
		p.Destroy(c)
	}
}

// computePlot derives the frame's pixel geometry from the current window
// and the visible data.
func (c *Chart) computePlot(rect image.Rectangle) Plot {
	pl := Plot{
		Rect:         rect,
		X:            c.xscale,
		HasSecondary: c.cfg.YAxisSecondary != nil,
	}
	for axis := 0; axis < 2; axis++ {
		if axis == 1 && !pl.HasSecondary {
			pl.Y[1] = pl.Y[0]
			break
		}
		lo, hi, ok := DataRange(&c.cfg, axis, c.xscale, c.SeriesVisible)
		if !ok {
			lo, hi = 0, 0
		}
		pl.Y[axis] = PadRange(lo, hi, c.cfg.AxisFor(axis).Domain)
	}
	return pl
}

// rec records a widget into a macro so it can be measured before being
// placed.
func rec(gtx C, w layout.Widget) (D, op.CallOp) {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	return dims, call
}

// update drains the chart's own pointer events (cursor tracking) and
// runs every plugin's input hook. All scale mutation for the frame
// happens here, before anything draws.
func (c *Chart) update(gtx C) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move | pointer.Cancel,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Enter:
			c.cursor = Cursor{Pos: pe.Position, Inside: true}
		case pointer.Leave, pointer.Cancel:
			c.cursor = Cursor{}
		case pointer.Move:
			c.cursor = Cursor{Pos: pe.Position, Inside: true}
		}
	}
	inputPlot := c.computePlot(c.plot.Rect)
	for _, p := range c.plugins {
		p.Input(c, gtx, &inputPlot)
	}
	// Cursor dispatch is throttled so fast pointer movement does not
	// rebuild tooltip content more often than the frame budget allows.
	if !c.cursor.Inside || c.cursorThrottle.allow(gtx.Now) {
		for _, p := range c.plugins {
			p.CursorChanged(c, &inputPlot, c.cursor)
		}
	}
}

// Layout draws the whole chart: Y axis labels, plot area, X axis labels,
// and the optional overview strip and legend.
func (c *Chart) Layout(gtx C, th *material.Theme) D {
	if c.destroyed || c.cfg.Len() == 0 || len(c.cfg.Series) == 0 {
		return D{Size: gtx.Constraints.Max}
	}
	if h := gtx.Dp(c.cfg.Height); h > 0 && h < gtx.Constraints.Max.Y {
		gtx.Constraints.Max.Y = h
	}
	c.th = th
	c.update(gtx)

	// The Y ranges only depend on the window and the data, so the tick
	// labels can be measured before the plot area is sized.
	pl := c.computePlot(image.Rectangle{})
	axisLabelW, ticks := c.measureYTicks(gtx, th, 0, pl.Y[0])
	secondaryW := 0
	var secondaryTicks []yTick
	if pl.HasSecondary {
		secondaryW, secondaryTicks = c.measureYTicks(gtx, th, 1, pl.Y[1])
	}
	xLabelH := c.xLabelHeight(gtx, th)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx C) D {
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(func(gtx C) D {
					gtx.Constraints = layout.Exact(image.Pt(axisLabelW, gtx.Constraints.Max.Y))
					return c.layoutYTicks(gtx, ticks, false)
				}),
				layout.Flexed(1, func(gtx C) D {
					return c.layoutPlot(gtx, th)
				}),
				layout.Rigid(func(gtx C) D {
					if !pl.HasSecondary {
						return D{}
					}
					gtx.Constraints = layout.Exact(image.Pt(secondaryW, gtx.Constraints.Max.Y))
					return c.layoutYTicks(gtx, secondaryTicks, true)
				}),
			)
		}),
		layout.Rigid(func(gtx C) D {
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(layout.Spacer{Width: gtx.Metric.PxToDp(axisLabelW)}.Layout),
				layout.Flexed(1, func(gtx C) D {
					gtx.Constraints.Max.Y = xLabelH
					return c.layoutXLabels(gtx, th)
				}),
			)
		}),
		layout.Rigid(func(gtx C) D {
			if !c.cfg.ShowOverview {
				return D{}
			}
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(layout.Spacer{Width: gtx.Metric.PxToDp(axisLabelW)}.Layout),
				layout.Flexed(1, func(gtx C) D {
					return c.overview.LayoutStrip(c, gtx)
				}),
			)
		}),
		layout.Rigid(func(gtx C) D {
			if !c.cfg.ShowLegend {
				return D{}
			}
			return c.legend.Layout(c, gtx, th)
		}),
	)
}

type yTick struct {
	frac  float64 // 0 at axis min, 1 at axis max
	label material.LabelStyle
}

// measureYTicks builds the tick labels for one Y axis and returns the
// column width they need.
func (c *Chart) measureYTicks(gtx C, th *material.Theme, axisIndex int, s Scale) (int, []yTick) {
	axis := c.cfg.AxisFor(axisIndex)
	span := s.Span()
	var ticks []yTick
	widest := 0
	for _, v := range NiceTicks(s, 6) {
		l := material.Body2(th, axis.FormatValue(v))
		l.Color = c.cfg.Theme.TextSecondary
		l.MaxLines = 1
		sub := gtx
		sub.Constraints.Min = image.Point{}
		dims, _ := rec(sub, l.Layout)
		if dims.Size.X > widest {
			widest = dims.Size.X
		}
		ticks = append(ticks, yTick{frac: (v - s.Min) / span, label: l})
	}
	return widest + gtx.Dp(6), ticks
}

// layoutYTicks draws tick labels along the plot's vertical extent.
func (c *Chart) layoutYTicks(gtx C, ticks []yTick, secondary bool) D {
	size := gtx.Constraints.Max
	for _, t := range ticks {
		sub := gtx
		sub.Constraints.Min = image.Point{}
		dims, call := rec(sub, t.label.Layout)
		y := size.Y - int(t.frac*float64(size.Y)) - dims.Size.Y/2
		if y < 0 || y+dims.Size.Y > size.Y {
			continue
		}
		x := size.X - dims.Size.X - gtx.Dp(4)
		if secondary {
			x = gtx.Dp(4)
		}
		stack := op.Offset(image.Pt(x, y)).Push(gtx.Ops)
		call.Add(gtx.Ops)
		stack.Pop()
	}
	return D{Size: size}
}

func (c *Chart) xLabelHeight(gtx C, th *material.Theme) int {
	l := material.Body2(th, "0")
	sub := gtx
	sub.Constraints.Min = image.Point{}
	dims, _ := rec(sub, l.Layout)
	return dims.Size.Y + gtx.Dp(2)
}

// layoutXLabels draws category labels under the plot, thinned so
// neighbors never collide.
func (c *Chart) layoutXLabels(gtx C, th *material.Theme) D {
	size := gtx.Constraints.Max
	pl := c.plot
	pl.Rect = image.Rectangle{Max: image.Pt(size.X, size.Y)}
	iLo, iHi := VisibleIndices(c.xscale, c.cfg.Len())
	if iHi < iLo {
		return D{Size: size}
	}
	// Probe a representative label to derive a collision-free stride.
	probe := material.Body2(th, c.cfg.XLabels[iLo])
	probe.Color = c.cfg.Theme.TextSecondary
	sub := gtx
	sub.Constraints.Min = image.Point{}
	probeDims, _ := rec(sub, probe.Layout)
	gap := gtx.Dp(8)
	stride := 1
	if px := pl.PxPerIndex(); px > 0 {
		stride = int(ceil(float32(probeDims.Size.X+gap) / px))
		if stride < 1 {
			stride = 1
		}
	}
	lastRight := -1 << 30
	for i := iLo; i <= iHi; i += stride {
		l := material.Body2(th, c.cfg.XLabels[i])
		l.Color = c.cfg.Theme.TextSecondary
		l.MaxLines = 1
		dims, call := rec(sub, l.Layout)
		x := int(pl.XPx(float64(i))) - dims.Size.X/2
		if x < 0 {
			x = 0
		}
		if x+dims.Size.X > size.X {
			x = size.X - dims.Size.X
		}
		if x <= lastRight {
			continue
		}
		stack := op.Offset(image.Pt(x, 0)).Push(gtx.Ops)
		call.Add(gtx.Ops)
		stack.Pop()
		lastRight = x + dims.Size.X + gap
	}
	return D{Size: size}
}

// layoutPlot draws the plot area: background, grid, series, and every
// plugin's plot layer, clipped to the plot bounds.
func (c *Chart) layoutPlot(gtx C, th *material.Theme) D {
	size := gtx.Constraints.Max
	rect := image.Rectangle{Max: size}
	pl := c.computePlot(rect)
	c.plot = pl

	defer clip.Rect(rect).Push(gtx.Ops).Pop()
	paint.FillShape(gtx.Ops, c.cfg.Theme.Background, clip.Rect(rect).Op())
	// Cursor tracking target for the next frame.
	event.Op(gtx.Ops, c)

	if c.cfg.ShowGrid {
		c.drawGrid(gtx, &pl)
	}
	order := DrawOrder(c.cfg.Series)
	for _, si := range order {
		s := &c.cfg.Series[si]
		if !c.SeriesVisible(s.ID) {
			continue
		}
		drawSeries(gtx, &pl, s, c.SeriesVisible, &c.cfg)
	}
	c.drawMarkLines(gtx, th, &pl)
	for _, p := range c.plugins {
		p.DrawPlot(c, gtx, &pl)
	}
	return D{Size: size}
}

// drawGrid draws horizontal grid lines at the primary axis ticks.
func (c *Chart) drawGrid(gtx C, pl *Plot) {
	onePx := gtx.Dp(1)
	for _, v := range NiceTicks(pl.Y[0], 6) {
		y := int(pl.YPx(0, v))
		if y < pl.Rect.Min.Y || y >= pl.Rect.Max.Y {
			continue
		}
		paint.FillShape(gtx.Ops, c.cfg.Theme.GridLine, clip.Rect{
			Min: image.Pt(pl.Rect.Min.X, y),
			Max: image.Pt(pl.Rect.Max.X, y+onePx),
		}.Op())
	}
}

func (c *Chart) drawMarkLines(gtx C, th *material.Theme, pl *Plot) {
	for _, m := range c.cfg.MarkLines {
		y := pl.YPx(m.AxisIndex, m.Value)
		if y < float32(pl.Rect.Min.Y) || y > float32(pl.Rect.Max.Y) {
			continue
		}
		col := m.Color
		if col.A == 0 {
			col = c.cfg.Theme.Accent
		}
		drawHDashes(gtx, pl, y, col)
		if m.Label == "" {
			continue
		}
		l := material.Body2(th, m.Label)
		l.Color = col
		l.MaxLines = 1
		sub := gtx
		sub.Constraints.Min = image.Point{}
		dims, call := rec(sub, l.Layout)
		x := pl.Rect.Max.X - dims.Size.X - gtx.Dp(4)
		yPos := int(y) - dims.Size.Y - gtx.Dp(2)
		if yPos < pl.Rect.Min.Y {
			yPos = int(y) + gtx.Dp(2)
		}
		stack := op.Offset(image.Pt(x, yPos)).Push(gtx.Ops)
		call.Add(gtx.Ops)
		stack.Pop()
	}
}
