package main

import (
	"fmt"
	"image"
	"log"
	"math"
	"strconv"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"gioui.org/x/explorer"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/snowsight/snowsight/chart"
	"github.com/snowsight/snowsight/export"
	"github.com/snowsight/snowsight/forecast"
)

// syncKey groups every dashboard card on one shared time window.
const syncKey = "time"

const (
	exportWidth  = 1280
	exportHeight = 720
)

var zoomOutIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ActionZoomOut)
	return icon
}()

// card is the per-variable dashboard slot. The chart instance itself
// lives in the registry; the card carries the container tag and the
// widget state around it.
type card struct {
	key       string
	enabled   widget.Bool
	container chart.Container
	exportPNG widget.Clickable
	exportSVG widget.Clickable
	resetZoom widget.Clickable
	statsGrid component.GridState
	// hidden persists run visibility across chart rebuilds.
	hidden map[string]bool
	gen    uint64
	seen   bool
}

// Dashboard lays out one chart card per forecast variable, all zooming
// together through a shared sync context.
type Dashboard struct {
	expl *explorer.Explorer

	doc     forecast.Document
	haveDoc bool
	// gen counts document and theme changes so cards know when their
	// chart config is stale.
	gen uint64

	dark     widget.Bool
	sync     *chart.SyncContext
	registry *chart.Registry

	cards    map[string]*card
	order    []string
	picker   layout.List
	cardList layout.List
}

func NewDashboard(expl *explorer.Explorer) *Dashboard {
	return &Dashboard{
		expl:     expl,
		sync:     chart.NewSyncContext(),
		registry: chart.NewRegistry(0),
		cards:    make(map[string]*card),
		cardList: layout.List{Axis: layout.Vertical},
	}
}

// SetDocument replaces the displayed forecast. Existing cards keep
// their zoom and visibility state; the charts re-clamp as needed.
func (d *Dashboard) SetDocument(doc forecast.Document) {
	d.doc = doc
	d.haveDoc = true
	d.gen++
	d.order = d.order[:0]
	for i := range doc.Variables {
		v := &doc.Variables[i]
		if d.foldedIntoWind(v.Key) {
			continue
		}
		d.order = append(d.order, v.Key)
		if _, ok := d.cards[v.Key]; !ok {
			d.cards[v.Key] = &card{
				key:     v.Key,
				enabled: widget.Bool{Value: true},
				hidden:  make(map[string]bool),
			}
		}
	}
}

// foldedIntoWind reports whether the variable rides the wind speed
// card's secondary axis instead of getting its own card.
func (d *Dashboard) foldedIntoWind(key string) bool {
	if key != "wind_gusts" {
		return false
	}
	_, ok := d.doc.Variable("wind_speed")
	return ok
}

func (d *Dashboard) theme() chart.Theme {
	if d.dark.Value {
		return darkTheme()
	}
	return lightTheme()
}

// buildConfig maps one forecast variable to a chart description: bars
// for accumulations, lines per model run otherwise, an uncertainty band
// when a run carries bounds, a freezing mark line on temperature, and
// wind gusts on the wind card's secondary axis.
func (d *Dashboard) buildConfig(v *forecast.Variable) chart.Config {
	theme := d.theme()
	cfg := chart.Config{
		XLabels:      d.doc.Times,
		ShowLegend:   true,
		ShowTooltip:  true,
		ShowGrid:     true,
		ShowOverview: true,
		Theme:        theme,
		YAxis:        chart.Axis{Format: unitFormatter(v.Unit)},
	}
	for ri := range v.Runs {
		run := &v.Runs[ri]
		col := seriesColor(ri)
		if run.HasBounds() {
			cfg.Series = append(cfg.Series, chart.Series{
				ID:    v.Key + "/" + run.Model + "/bounds",
				Name:  run.Model + " range",
				Color: col,
				Type:  chart.TypeBand,
				Upper: run.Upper,
				Lower: run.Lower,
			})
		}
		s := chart.Series{
			ID:      v.Key + "/" + run.Model,
			Name:    run.Model,
			Color:   col,
			Data:    run.Samples,
			Labeled: ri == 0,
		}
		if v.Kind == forecast.KindAccumulation {
			s.Type = chart.TypeBar
		}
		cfg.Series = append(cfg.Series, s)
	}
	if v.Key == "temperature_2m" {
		cfg.MarkLines = append(cfg.MarkLines, chart.MarkLine{
			Value: 0,
			Label: "freezing",
			Color: theme.Accent,
		})
	}
	if v.Key == "wind_speed" {
		if gusts, ok := d.doc.Variable("wind_gusts"); ok {
			cfg.YAxisSecondary = &chart.Axis{Format: unitFormatter(gusts.Unit)}
			for ri := range gusts.Runs {
				run := &gusts.Runs[ri]
				cfg.Series = append(cfg.Series, chart.Series{
					ID:        gusts.Key + "/" + run.Model,
					Name:      run.Model + " gusts",
					Color:     seriesColor(len(v.Runs) + ri),
					Data:      run.Samples,
					Style:     chart.StyleDashed,
					AxisIndex: 1,
				})
			}
		}
	}
	return cfg
}

func unitFormatter(unit string) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64) + unit
	}
}

func (d *Dashboard) update(gtx C) {
	d.dark.Update(gtx)
	for _, key := range d.order {
		c := d.cards[key]
		c.enabled.Update(gtx)
		if c.exportPNG.Clicked(gtx) {
			d.exportCard(c, "png")
		}
		if c.exportSVG.Clicked(gtx) {
			d.exportCard(c, "svg")
		}
		if c.resetZoom.Clicked(gtx) {
			if ch, ok := d.registry.Get(&c.container); ok {
				ch.ResetZoom()
			}
		}
	}
}

func (d *Dashboard) exportCard(c *card, format string) {
	v, ok := d.doc.Variable(c.key)
	if !ok {
		return
	}
	file, err := d.expl.CreateFile(c.key + "." + format)
	if err != nil {
		log.Printf("failed creating export file: %v", err)
		return
	}
	defer file.Close()
	cfg := d.buildConfig(v)
	if format == "svg" {
		err = export.SVG(file, cfg, exportWidth, exportHeight)
	} else {
		err = export.PNG(file, cfg, exportWidth, exportHeight)
	}
	if err != nil {
		log.Printf("failed exporting %s: %v", c.key, err)
	}
}

// Layout draws the dashboard and runs the registry's frame lifecycle:
// cards seen this frame stay acquired, vanished ones are released and
// swept after the grace period.
func (d *Dashboard) Layout(gtx C, th *material.Theme) D {
	d.update(gtx)
	for _, c := range d.cards {
		c.seen = false
	}
	dims := layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return d.layoutPicker(gtx, th)
		}),
		layout.Flexed(1, func(gtx C) D {
			visible := d.visibleKeys()
			return d.cardList.Layout(gtx, len(visible), func(gtx C, i int) D {
				return layout.UniformInset(8).Layout(gtx, func(gtx C) D {
					return d.layoutCard(gtx, th, visible[i])
				})
			})
		}),
	)
	for _, c := range d.cards {
		if !c.seen {
			d.registry.Release(&c.container, gtx.Now)
		}
	}
	d.registry.Sweep(gtx.Now)
	return dims
}

func (d *Dashboard) visibleKeys() []string {
	out := make([]string, 0, len(d.order))
	for _, key := range d.order {
		if d.cards[key].enabled.Value {
			out = append(out, key)
		}
	}
	return out
}

func (d *Dashboard) layoutPicker(gtx C, th *material.Theme) D {
	return layout.UniformInset(8).Layout(gtx, func(gtx C) D {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, func(gtx C) D {
				return d.picker.Layout(gtx, len(d.order), func(gtx C, i int) D {
					c := d.cards[d.order[i]]
					name := d.order[i]
					if v, ok := d.doc.Variable(name); ok {
						name = v.Name
					}
					return layout.Inset{Right: 12}.Layout(gtx,
						material.CheckBox(th, &c.enabled, name).Layout)
				})
			}),
			layout.Rigid(material.Switch(th, &d.dark, "dark theme").Layout),
		)
	})
}

func (d *Dashboard) layoutCard(gtx C, th *material.Theme, key string) D {
	c := d.cards[key]
	v, ok := d.doc.Variable(key)
	if !ok {
		return D{}
	}
	c.seen = true

	cfg := d.buildConfig(v)
	fresh := !c.container.Tagged()
	if !fresh {
		if _, ok := d.registry.Get(&c.container); !ok {
			fresh = true
		}
	}
	ch := d.registry.Acquire(&c.container, cfg, chart.Options{
		Sync:    d.sync,
		SyncKey: syncKey,
		OnVisibilityToggle: func(id string, visible bool) {
			c.hidden[id] = !visible
		},
	})
	if fresh {
		for id, hidden := range c.hidden {
			ch.SetVisible(id, !hidden)
		}
		c.gen = d.gen
	} else if c.gen != d.gen {
		ch.UpdateConfig(cfg)
		c.gen = d.gen
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return d.layoutCardHeader(gtx, th, v, c)
		}),
		layout.Rigid(func(gtx C) D {
			return ch.Layout(gtx, th)
		}),
		layout.Rigid(func(gtx C) D {
			return d.layoutStats(gtx, th, v, c)
		}),
	)
}

func (d *Dashboard) layoutCardHeader(gtx C, th *material.Theme, v *forecast.Variable, c *card) D {
	title := v.Name
	if v.Unit != "" {
		title += " (" + v.Unit + ")"
	}
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, material.H6(th, title).Layout),
		layout.Rigid(func(gtx C) D {
			sz := gtx.Dp(24)
			gtx.Constraints = layout.Exact(image.Pt(sz, sz))
			return material.Clickable(gtx, &c.resetZoom, func(gtx C) D {
				return zoomOutIcon.Layout(gtx, th.Fg)
			})
		}),
		layout.Rigid(layout.Spacer{Width: 6}.Layout),
		layout.Rigid(material.Button(th, &c.exportPNG, "PNG").Layout),
		layout.Rigid(layout.Spacer{Width: 6}.Layout),
		layout.Rigid(material.Button(th, &c.exportSVG, "SVG").Layout),
	)
}

// runStats summarizes one model run for the stats table.
type runStats struct {
	model string
	min   float64
	max   float64
	mean  float64
	ok    bool
}

func summarize(v *forecast.Variable) []runStats {
	out := make([]runStats, 0, len(v.Runs))
	for i := range v.Runs {
		run := &v.Runs[i]
		st := runStats{model: run.Model}
		st.min, st.max, st.ok = run.Samples.Range()
		sum, n := 0.0, 0
		for _, s := range run.Samples {
			if !math.IsNaN(s) {
				sum += s
				n++
			}
		}
		if n > 0 {
			st.mean = sum / float64(n)
		}
		out = append(out, st)
	}
	return out
}

func (d *Dashboard) layoutStats(gtx C, th *material.Theme, v *forecast.Variable, c *card) D {
	stats := summarize(v)
	if len(stats) == 0 {
		return D{}
	}
	table := component.Table(th, &c.statsGrid)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	valueColWidth := gtx.Dp(90)
	modelColWidth := gtx.Constraints.Max.X - 3*valueColWidth - gtx.Dp(table.VScrollbarStyle.Width())
	rowHeight := gtx.Sp(20)
	const (
		modelCol = iota
		minCol
		maxCol
		meanCol
		numCols
	)
	gtx.Constraints.Min.Y = 0
	gtx.Constraints.Max.Y = rowHeight * (len(stats) + 1)
	return table.Layout(gtx, len(stats), numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}
			if index == modelCol {
				return min(modelColWidth, constraint)
			}
			return min(valueColWidth, constraint)
		},
		func(gtx C, index int) D {
			var l material.LabelStyle
			switch index {
			case modelCol:
				l = material.Body2(th, "Model")
			case minCol:
				l = material.Body2(th, "Min")
			case maxCol:
				l = material.Body2(th, "Max")
			case meanCol:
				l = material.Body2(th, "Mean")
			}
			l.Color = th.ContrastFg
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Min}.Op())
					return D{Size: gtx.Constraints.Min}
				},
				l.Layout,
			)
		},
		func(gtx C, row, col int) D {
			st := stats[row]
			var text string
			switch col {
			case modelCol:
				text = st.model
			case minCol:
				text = formatStat(st.min, st.ok)
			case maxCol:
				text = formatStat(st.max, st.ok)
			case meanCol:
				text = formatStat(st.mean, st.ok)
			}
			l := material.Body2(th, text)
			l.MaxLines = 1
			return l.Layout(gtx)
		},
	)
}

func formatStat(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}
