package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"

	"github.com/snowsight/snowsight/forecast"
)

func main() {
	file := flag.String("file", "", "forecast JSON file to open at startup")
	fetchOut := flag.String("fetch-output", "snowsight-forecast.json", "file the launched fetcher writes and the dashboard watches")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The timeout keeps shared mutations (file watches) alive briefly
	// after their last consumer unsubscribes.
	mutator := stream.NewMutator(ctx, time.Second*5)
	bundle := forecast.NewBundle(ctx, mutator)
	if *file != "" {
		bundle.Source.Open(*file)
	}

	go func() {
		w := app.NewWindow(app.Title("snowsight"), app.Size(unit.Dp(1100), unit.Dp(800)))
		if err := loop(ctx, w, bundle, *fetchOut); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(ctx context.Context, w *app.Window, bundle forecast.Bundle, fetchOut string) error {
	expl := explorer.NewExplorer(w)
	ws := forecast.NewWindowState(ctx, bundle, w)
	ui := NewUI(ws, expl, fetchOut)
	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case system.DestroyEvent:
			return ev.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
