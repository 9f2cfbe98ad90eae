package main

import (
	"image"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"

	"github.com/snowsight/snowsight/forecast"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// UI holds the state of and draws the top-level window.
type UI struct {
	ws   forecast.WindowState
	expl *explorer.Explorer
	dash *Dashboard
	th   *material.Theme

	openBtn   widget.Clickable
	launchBtn widget.Clickable
	launching bool
	loadErr   string

	snapshotStream *stream.Stream[forecast.Snapshot]
	snapshot       forecast.Snapshot

	fetchOutput string
}

func NewUI(ws forecast.WindowState, expl *explorer.Explorer, fetchOutput string) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	return &UI{
		ws:             ws,
		expl:           expl,
		th:             th,
		dash:           NewDashboard(expl),
		snapshotStream: stream.New(ws.Controller, ws.Bundle.Source.Latest),
		fetchOutput:    fetchOutput,
	}
}

// Update reads fresh forecast snapshots into the dashboard and handles
// the start screen's buttons.
func (ui *UI) Update(gtx C) {
	if snap, isNew := ui.snapshotStream.ReadNew(gtx); isNew {
		ui.snapshot = snap
		if snap.Err != nil {
			ui.loadErr = snap.Err.Error()
		} else {
			ui.loadErr = ""
			ui.dash.SetDocument(snap.Doc)
		}
	}
	if ui.openBtn.Clicked(gtx) {
		if _, err := ui.ws.Bundle.Source.LoadFromFile(ui.expl); err != nil {
			ui.loadErr = err.Error()
		}
	}
	if !ui.launching && ui.launchBtn.Clicked(gtx) {
		ui.launching = true
		if _, err := ui.ws.Bundle.Source.LaunchFetch(ui.fetchOutput); err != nil {
			ui.launching = false
			ui.loadErr = err.Error()
		}
	}
}

func (ui *UI) layoutStartScreen(gtx C) D {
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body1(ui.th, "No forecast loaded.").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Button(ui.th, &ui.openBtn, "Open Forecast File").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			if ui.launching {
				gtx = gtx.Disabled()
			}
			return material.Button(ui.th, &ui.launchBtn, "Launch Fetcher").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body2(ui.th, ui.loadErr).Layout(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	if ui.dash.haveDoc {
		return ui.dash.Layout(gtx, ui.th)
	}
	return ui.layoutStartScreen(gtx)
}
