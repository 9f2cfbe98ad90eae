package chart

import (
	"image"
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/gesture"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
)

const (
	// wheelNotchPx is the scroll distance treated as one wheel notch.
	wheelNotchPx = 120
	// wheelStep is the zoom factor applied per notch: scrolling up
	// shrinks the window to 0.8x, scrolling down grows it to 1.25x.
	wheelStep = 0.8
	// doubleClickWindow bounds the gap between two presses treated as a
	// double-click.
	doubleClickWindow = 400 * time.Millisecond
)

// throttle drops updates arriving within a minimum interval of the last
// accepted one. Unlike a debounce it never delays anything: the first
// update in each interval applies immediately.
type throttle struct {
	last time.Time
	min  time.Duration
}

func (t *throttle) allow(now time.Time) bool {
	minInterval := t.min
	if minInterval == 0 {
		minInterval = 16 * time.Millisecond
	}
	if now.Sub(t.last) < minInterval {
		return false
	}
	t.last = now
	return true
}

// ZoomPlugin owns the main plot's wheel zoom, drag pan, and double-click
// reset. It is the only writer of the chart's X scale besides the
// overview strip.
type ZoomPlugin struct {
	NopPlugin
	scroll   gesture.Scroll
	throttle throttle

	panning   bool
	lastX     float32
	lastPress time.Duration
	pressPos  f32.Point
}

func (z *ZoomPlugin) Input(c *Chart, gtx C, pl *Plot) {
	dist := z.scroll.Update(gtx.Metric, gtx.Source, gtx.Now, gesture.Vertical, image.Rect(0, -1e6, 0, 1e6))
	if dist != 0 && z.throttle.allow(gtx.Now) {
		anchor := pl.IndexAt(c.cursor.Pos.X)
		factor := math.Pow(wheelStep, -float64(dist)/wheelNotchPx)
		if next, ok := ZoomAt(c.XScale(), anchor, factor, c.Config().Len()); ok {
			c.SetXScale(next)
		}
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: z,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			if pe.Buttons != pointer.ButtonPrimary {
				continue
			}
			if z.isDoubleClick(pe) {
				c.ResetZoom()
				z.panning = false
				continue
			}
			z.panning = true
			z.lastX = pe.Position.X
		case pointer.Drag:
			if !z.panning || !z.throttle.allow(gtx.Now) {
				continue
			}
			px := pl.PxPerIndex()
			if px <= 0 {
				continue
			}
			delta := float64(z.lastX-pe.Position.X) / float64(px)
			z.lastX = pe.Position.X
			c.SetXScale(Pan(c.XScale(), delta, c.Config().Len()))
		case pointer.Release, pointer.Cancel:
			z.panning = false
		}
	}
}

// isDoubleClick tracks press timing; pointer event times are relative to
// an arbitrary epoch, so only their differences matter.
func (z *ZoomPlugin) isDoubleClick(pe pointer.Event) bool {
	defer func() {
		z.lastPress = pe.Time
		z.pressPos = pe.Position
	}()
	if z.lastPress == 0 {
		return false
	}
	if pe.Time-z.lastPress > doubleClickWindow {
		return false
	}
	dx := pe.Position.X - z.pressPos.X
	dy := pe.Position.Y - z.pressPos.Y
	return dx*dx+dy*dy < 64
}

func (z *ZoomPlugin) DrawPlot(c *Chart, gtx C, pl *Plot) {
	z.scroll.Add(gtx.Ops)
	event.Op(gtx.Ops, z)
}

func (z *ZoomPlugin) Destroy(*Chart) {
	z.panning = false
}
