package chart

import (
	"gioui.org/f32"
)

// Cursor is the pointer position over the plot area.
type Cursor struct {
	Pos    f32.Point
	Inside bool
}

// Plugin is one interactive capability layered onto a chart. Plugins run
// in a fixed pipeline order each frame: Input for every plugin, then the
// draw pass. Scale mutations from Input are therefore always visible to
// every DrawPlot call of the same frame. Plugins never share state with
// each other directly; they communicate through the chart's X scale and
// visibility map.
type Plugin interface {
	Init(c *Chart)
	// Input processes the plugin's pointer and gesture events. pl maps
	// pixels using the pre-input scale.
	Input(c *Chart, gtx C, pl *Plot)
	CursorChanged(c *Chart, pl *Plot, cur Cursor)
	ScaleChanged(c *Chart, s Scale)
	// DrawPlot draws the plugin's plot-area layer and registers its input
	// tags for the next frame.
	DrawPlot(c *Chart, gtx C, pl *Plot)
	Destroy(c *Chart)
}

// NopPlugin provides no-op defaults for plugins that only need a subset
// of the pipeline hooks.
type NopPlugin struct{}

func (NopPlugin) Init(*Chart)                         {}
func (NopPlugin) Input(*Chart, C, *Plot)              {}
func (NopPlugin) CursorChanged(*Chart, *Plot, Cursor) {}
func (NopPlugin) ScaleChanged(*Chart, Scale)          {}
func (NopPlugin) DrawPlot(*Chart, C, *Plot)           {}
func (NopPlugin) Destroy(*Chart)                      {}
