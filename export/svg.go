package export

import (
	"bufio"
	"io"

	"github.com/midbel/svg"

	"github.com/snowsight/snowsight/chart"
)

// SVG renders the config at the given pixel size as a standalone SVG
// document sharing the PNG exporter's frame geometry.
func SVG(w io.Writer, cfg chart.Config, width, height int) error {
	f, err := buildFrame(&cfg, width, height)
	if err != nil {
		return err
	}
	el := svg.NewSVG()
	el.Dim = svg.NewDim(f.width, f.height)

	var bg svg.Path
	bg.Fill = svg.NewFill(cssColor(cfg.Theme.Background))
	bg.AbsMoveTo(svg.NewPos(0, 0))
	bg.AbsLineTo(svg.NewPos(f.width, 0))
	bg.AbsLineTo(svg.NewPos(f.width, f.height))
	bg.AbsLineTo(svg.NewPos(0, f.height))
	bg.ClosePath()
	el.Append(bg.AsElement())

	el.Append(svgGrid(f))
	for _, si := range chart.DrawOrder(cfg.Series) {
		el.Append(svgSeries(f, &cfg.Series[si]))
	}
	el.Append(svgMarkLines(f))
	el.Append(svgAxes(f))

	bw := bufio.NewWriter(w)
	defer bw.Flush()
	el.Render(bw)
	return nil
}

func svgGrid(f *frame) svg.Element {
	var g svg.Group
	if !f.cfg.ShowGrid {
		return g.AsElement()
	}
	stroke := svg.NewStroke(cssColor(f.cfg.Theme.GridLine), 1)
	for _, v := range f.yTicks(0) {
		y := f.yPx(0, v)
		li := svg.NewLine(svg.NewPos(f.left, y), svg.NewPos(f.right, y))
		li.Stroke = stroke
		g.Append(li.AsElement())
	}
	return g.AsElement()
}

func svgSeries(f *frame, s *chart.Series) svg.Element {
	switch s.Type {
	case chart.TypeBar:
		return svgBars(f, s)
	case chart.TypeBand:
		return svgBand(f, s)
	case chart.TypeArea:
		return svgLine(f, s, true)
	default:
		return svgLine(f, s, false)
	}
}

func seriesStroke(s *chart.Series) svg.Stroke {
	sk := svg.NewStroke(cssColor(s.Color), float64(s.Width))
	sk.Opacity = float64(s.Opacity)
	switch s.Style {
	case chart.StyleDashed:
		sk.DashArray = append(sk.DashArray, 6, 4)
	case chart.StyleDotted:
		sk.DashArray = append(sk.DashArray, int(s.Width), 3)
	}
	return sk
}

func svgLine(f *frame, s *chart.Series, filled bool) svg.Element {
	var g svg.Group
	for _, run := range chart.SplitRuns(s.Data) {
		if filled {
			var fill svg.Path
			fill.Fill = svg.NewFill(cssColor(s.Color))
			fill.Fill.Opacity = float64(s.FillOpacity * s.Opacity)
			base := f.baselineY(s.AxisIndex)
			fill.AbsMoveTo(svg.NewPos(f.xPx(float64(run.Start)), base))
			for i := run.Start; i <= run.End; i++ {
				fill.AbsLineTo(svg.NewPos(f.xPx(float64(i)), f.yPx(s.AxisIndex, s.Data[i])))
			}
			fill.AbsLineTo(svg.NewPos(f.xPx(float64(run.End)), base))
			fill.ClosePath()
			g.Append(fill.AsElement())
		}
		if run.Start == run.End {
			// An isolated sample gets a small diamond marker.
			x := f.xPx(float64(run.Start))
			y := f.yPx(s.AxisIndex, s.Data[run.Start])
			r := float64(s.Width) + 1.5
			var dot svg.Path
			dot.Fill = svg.NewFill(cssColor(s.Color))
			dot.AbsMoveTo(svg.NewPos(x, y-r))
			dot.AbsLineTo(svg.NewPos(x+r, y))
			dot.AbsLineTo(svg.NewPos(x, y+r))
			dot.AbsLineTo(svg.NewPos(x-r, y))
			dot.ClosePath()
			g.Append(dot.AsElement())
			continue
		}
		var pat svg.Path
		pat.Fill = svg.NewFill("none")
		pat.Stroke = seriesStroke(s)
		for i := run.Start; i <= run.End; i++ {
			pos := svg.NewPos(f.xPx(float64(i)), f.yPx(s.AxisIndex, s.Data[i]))
			if i == run.Start {
				pat.AbsMoveTo(pos)
			} else {
				pat.AbsLineTo(pos)
			}
		}
		g.Append(pat.AsElement())
	}
	return g.AsElement()
}

func svgBars(f *frame, s *chart.Series) svg.Element {
	var g svg.Group
	slots := chart.BarSlots(f.cfg.Series, allVisible)
	slot, ok := slots[s.ID]
	if !ok {
		return g.AsElement()
	}
	offset, width := f.barGeometry(slot)
	base := f.baselineY(s.AxisIndex)
	fill := svg.NewFill(cssColor(s.Color))
	fill.Opacity = float64(s.Opacity)
	for i, v := range s.Data {
		if chart.IsNull(v) {
			continue
		}
		x := f.xPx(float64(i)) + offset
		top, bot := f.yPx(s.AxisIndex, v), base
		if bot < top {
			top, bot = bot, top
		}
		if bot-top < 1 {
			bot = top + 1
		}
		var bar svg.Path
		bar.Fill = fill
		bar.AbsMoveTo(svg.NewPos(x, top))
		bar.AbsLineTo(svg.NewPos(x+width, top))
		bar.AbsLineTo(svg.NewPos(x+width, bot))
		bar.AbsLineTo(svg.NewPos(x, bot))
		bar.ClosePath()
		g.Append(bar.AsElement())
	}
	return g.AsElement()
}

func svgBand(f *frame, s *chart.Series) svg.Element {
	var g svg.Group
	for _, run := range chart.BandRuns(s.Upper, s.Lower) {
		var pat svg.Path
		pat.Fill = svg.NewFill(cssColor(s.Color))
		pat.Fill.Opacity = float64(s.FillOpacity * s.Opacity)
		for i := run.Start; i <= run.End; i++ {
			pos := svg.NewPos(f.xPx(float64(i)), f.yPx(s.AxisIndex, s.Upper[i]))
			if i == run.Start {
				pat.AbsMoveTo(pos)
			} else {
				pat.AbsLineTo(pos)
			}
		}
		for i := run.End; i >= run.Start; i-- {
			pat.AbsLineTo(svg.NewPos(f.xPx(float64(i)), f.yPx(s.AxisIndex, s.Lower[i])))
		}
		pat.ClosePath()
		g.Append(pat.AsElement())
	}
	return g.AsElement()
}

func svgMarkLines(f *frame) svg.Element {
	var g svg.Group
	font := svg.NewFont(fontSize)
	for _, ml := range f.cfg.MarkLines {
		y := f.yPx(ml.AxisIndex, ml.Value)
		if y < f.top || y > f.bottom {
			continue
		}
		li := svg.NewLine(svg.NewPos(f.left, y), svg.NewPos(f.right, y))
		li.Stroke = svg.NewStroke(cssColor(ml.Color), 1)
		li.Stroke.DashArray = append(li.Stroke.DashArray, 4, 4)
		g.Append(li.AsElement())
		if ml.Label != "" {
			tx := svg.NewText(ml.Label)
			tx.Pos = svg.NewPos(f.right-4, y-4)
			tx.Font = font
			tx.Anchor = "end"
			g.Append(tx.AsElement())
		}
	}
	return g.AsElement()
}

func svgAxes(f *frame) svg.Element {
	var g svg.Group
	theme := f.cfg.Theme
	font := svg.NewFont(fontSize)

	for _, v := range f.yTicks(0) {
		tx := svg.NewText(f.cfg.AxisFor(0).FormatValue(v))
		tx.Pos = svg.NewPos(f.left-6, f.yPx(0, v))
		tx.Font = font
		tx.Anchor = "end"
		tx.Baseline = "middle"
		g.Append(tx.AsElement())
	}
	if f.hasSecondary {
		for _, v := range f.yTicks(1) {
			tx := svg.NewText(f.cfg.AxisFor(1).FormatValue(v))
			tx.Pos = svg.NewPos(f.right+6, f.yPx(1, v))
			tx.Font = font
			tx.Anchor = "start"
			tx.Baseline = "middle"
			g.Append(tx.AsElement())
		}
	}
	for _, i := range f.xLabelIndices() {
		tx := svg.NewText(f.cfg.XLabels[i])
		tx.Pos = svg.NewPos(f.xPx(float64(i)), f.bottom+6)
		tx.Font = font
		tx.Anchor = "middle"
		tx.Baseline = "hanging"
		g.Append(tx.AsElement())
	}

	axis := svg.NewLine(svg.NewPos(f.left, f.bottom), svg.NewPos(f.right, f.bottom))
	axis.Stroke = svg.NewStroke(cssColor(theme.Border), 1)
	g.Append(axis.AsElement())
	return g.AsElement()
}
