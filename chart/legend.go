package chart

import (
	"image"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// LegendPlugin renders one clickable row per series, in config order.
// It owns no visibility state of its own: it is purely a view over the
// chart's visibility map, so host code toggling a series elsewhere shows
// up the next time the legend draws.
type LegendPlugin struct {
	NopPlugin
	clicks []widget.Clickable
	list   layout.List
}

const legendDimAlpha = 0.35

// Layout draws the legend below the chart and applies any clicks to the
// chart's visibility map.
func (l *LegendPlugin) Layout(c *Chart, gtx C, th *material.Theme) D {
	cfg := c.Config()
	for len(l.clicks) < len(cfg.Series) {
		l.clicks = append(l.clicks, widget.Clickable{})
	}
	for i := range cfg.Series {
		if l.clicks[i].Clicked(gtx) {
			c.ToggleVisible(cfg.Series[i].ID)
		}
	}
	l.list.Axis = layout.Horizontal
	l.list.Alignment = layout.Middle
	return layout.Inset{Top: 4}.Layout(gtx, func(gtx C) D {
		return l.list.Layout(gtx, len(cfg.Series), func(gtx C, i int) D {
			s := &cfg.Series[i]
			enabled := c.SeriesVisible(s.ID)
			return material.Clickable(gtx, &l.clicks[i], func(gtx C) D {
				return layout.UniformInset(4).Layout(gtx, func(gtx C) D {
					return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
						layout.Rigid(func(gtx C) D {
							side := gtx.Dp(10)
							sz := image.Pt(side, side)
							col := s.Color
							if !enabled {
								col = withAlpha(col, legendDimAlpha)
							}
							paint.FillShape(gtx.Ops, col, clip.Rect{Max: sz}.Op())
							return D{Size: sz}
						}),
						layout.Rigid(layout.Spacer{Width: 6}.Layout),
						layout.Rigid(func(gtx C) D {
							label := material.Body2(th, s.Name)
							label.Color = cfg.Theme.TextPrimary
							if !enabled {
								label.Color = withAlpha(label.Color, legendDimAlpha)
							}
							label.MaxLines = 1
							return label.Layout(gtx)
						}),
					)
				})
			})
		})
	})
}

func (l *LegendPlugin) Destroy(*Chart) {
	l.clicks = nil
}
