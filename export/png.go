package export

import (
	"io"

	"github.com/fogleman/gg"

	"github.com/snowsight/snowsight/chart"
)

// PNG renders the config at the given pixel size and writes an encoded
// PNG. The whole data range is shown at full extent.
func PNG(w io.Writer, cfg chart.Config, width, height int) error {
	f, err := buildFrame(&cfg, width, height)
	if err != nil {
		return err
	}
	dc := gg.NewContext(width, height)
	dc.SetColor(cfg.Theme.Background)
	dc.Clear()

	drawPNGGrid(dc, f)
	for _, si := range chart.DrawOrder(cfg.Series) {
		drawPNGSeries(dc, f, &cfg.Series[si])
	}
	drawPNGMarkLines(dc, f)
	drawPNGAxes(dc, f)

	return dc.EncodePNG(w)
}

func drawPNGGrid(dc *gg.Context, f *frame) {
	if !f.cfg.ShowGrid {
		return
	}
	dc.SetColor(f.cfg.Theme.GridLine)
	dc.SetLineWidth(1)
	for _, v := range f.yTicks(0) {
		y := f.yPx(0, v)
		dc.DrawLine(f.left, y, f.right, y)
		dc.Stroke()
	}
}

func drawPNGSeries(dc *gg.Context, f *frame, s *chart.Series) {
	switch s.Type {
	case chart.TypeBar:
		drawPNGBars(dc, f, s)
	case chart.TypeBand:
		drawPNGBand(dc, f, s)
	case chart.TypeArea:
		drawPNGLine(dc, f, s, true)
	default:
		drawPNGLine(dc, f, s, false)
	}
}

func drawPNGLine(dc *gg.Context, f *frame, s *chart.Series, filled bool) {
	for _, run := range chart.SplitRuns(s.Data) {
		if filled {
			base := f.baselineY(s.AxisIndex)
			dc.MoveTo(f.xPx(float64(run.Start)), base)
			for i := run.Start; i <= run.End; i++ {
				dc.LineTo(f.xPx(float64(i)), f.yPx(s.AxisIndex, s.Data[i]))
			}
			dc.LineTo(f.xPx(float64(run.End)), base)
			dc.ClosePath()
			dc.SetColor(alpha(s.Color, s.FillOpacity*s.Opacity))
			dc.Fill()
		}
		if run.Start == run.End {
			dc.SetColor(alpha(s.Color, s.Opacity))
			dc.DrawCircle(f.xPx(float64(run.Start)), f.yPx(s.AxisIndex, s.Data[run.Start]), float64(s.Width))
			dc.Fill()
			continue
		}
		for i := run.Start; i <= run.End; i++ {
			x, y := f.xPx(float64(i)), f.yPx(s.AxisIndex, s.Data[i])
			if i == run.Start {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.SetColor(alpha(s.Color, s.Opacity))
		dc.SetLineWidth(float64(s.Width))
		if dash := dashPattern(s.Style, float64(s.Width)); dash != nil {
			dc.SetDash(dash...)
		}
		dc.Stroke()
		dc.SetDash()
	}
}

func drawPNGBars(dc *gg.Context, f *frame, s *chart.Series) {
	slots := chart.BarSlots(f.cfg.Series, allVisible)
	slot, ok := slots[s.ID]
	if !ok {
		return
	}
	offset, width := f.barGeometry(slot)
	base := f.baselineY(s.AxisIndex)
	dc.SetColor(alpha(s.Color, s.Opacity))
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
		dc.DrawRectangle(x, top, width, bot-top)
		dc.Fill()
	}
}

func drawPNGBand(dc *gg.Context, f *frame, s *chart.Series) {
	dc.SetColor(alpha(s.Color, s.FillOpacity*s.Opacity))
	for _, run := range chart.BandRuns(s.Upper, s.Lower) {
		for i := run.Start; i <= run.End; i++ {
			x, y := f.xPx(float64(i)), f.yPx(s.AxisIndex, s.Upper[i])
			if i == run.Start {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		for i := run.End; i >= run.Start; i-- {
			dc.LineTo(f.xPx(float64(i)), f.yPx(s.AxisIndex, s.Lower[i]))
		}
		dc.ClosePath()
		dc.Fill()
	}
}

func drawPNGMarkLines(dc *gg.Context, f *frame) {
	for _, ml := range f.cfg.MarkLines {
		y := f.yPx(ml.AxisIndex, ml.Value)
		if y < f.top || y > f.bottom {
			continue
		}
		dc.SetColor(ml.Color)
		dc.SetLineWidth(1)
		dc.SetDash(4, 4)
		dc.DrawLine(f.left, y, f.right, y)
		dc.Stroke()
		dc.SetDash()
		if ml.Label != "" {
			dc.DrawStringAnchored(ml.Label, f.right-4, y-4, 1, 0)
		}
	}
}

func drawPNGAxes(dc *gg.Context, f *frame) {
	theme := f.cfg.Theme
	dc.SetColor(theme.TextSecondary)
	for _, v := range f.yTicks(0) {
		label := f.cfg.AxisFor(0).FormatValue(v)
		dc.DrawStringAnchored(label, f.left-6, f.yPx(0, v), 1, 0.35)
	}
	if f.hasSecondary {
		for _, v := range f.yTicks(1) {
			label := f.cfg.AxisFor(1).FormatValue(v)
			dc.DrawStringAnchored(label, f.right+6, f.yPx(1, v), 0, 0.35)
		}
	}
	for _, i := range f.xLabelIndices() {
		dc.DrawStringAnchored(f.cfg.XLabels[i], f.xPx(float64(i)), f.bottom+6, 0.5, 1)
	}
	dc.SetColor(theme.Border)
	dc.SetLineWidth(1)
	dc.DrawLine(f.left, f.bottom, f.right, f.bottom)
	dc.Stroke()
}
