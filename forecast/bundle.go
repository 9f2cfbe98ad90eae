package forecast

import (
	"context"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
)

// WindowState collects the per-window stream plumbing.
type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Bundle collects the application-lifetime services shared by windows.
type Bundle struct {
	Source *Source
}

func NewBundle(ctx context.Context, mutator *stream.Mutator) Bundle {
	return Bundle{
		Source: NewSource(ctx, mutator),
	}
}
