package main

import (
	"image/color"
	"math"

	"github.com/snowsight/snowsight/chart"
)

// seriesColors spreads hues around the wheel by the golden ratio so
// neighboring series stay distinguishable at any count.
var seriesColors = func() []color.NRGBA {
	const target = 20
	out := []color.NRGBA{}
	for i := 0; i < target; i++ {
		h := float32(math.Mod(float64(i+1)*math.Phi, 1)) * 360
		out = append(out, hsl(h, 0.65, 0.45))
	}
	return out
}()

func seriesColor(i int) color.NRGBA {
	return seriesColors[i%len(seriesColors)]
}

// hsl converts hue [0,360), saturation, and lightness to NRGBA.
func hsl(h, s, l float32) color.NRGBA {
	c := (1 - abs32(2*l-1)) * s
	hp := h / 60
	x := c * (1 - abs32(float32(math.Mod(float64(hp), 2))-1))
	var r, g, b float32
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return color.NRGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func lightTheme() chart.Theme {
	return chart.Theme{
		Background:    color.NRGBA{R: 0xfc, G: 0xfc, B: 0xfd, A: 0xff},
		TextPrimary:   color.NRGBA{R: 0x1a, G: 0x1d, B: 0x21, A: 0xff},
		TextSecondary: color.NRGBA{R: 0x5f, G: 0x66, B: 0x6d, A: 0xff},
		Accent:        color.NRGBA{R: 0x2f, G: 0x6f, B: 0xed, A: 0xff},
		Border:        color.NRGBA{R: 0xd4, G: 0xd9, B: 0xde, A: 0xff},
		GridLine:      color.NRGBA{R: 0xe9, G: 0xec, B: 0xef, A: 0xff},
		CardBg:        color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

func darkTheme() chart.Theme {
	return chart.Theme{
		Background:    color.NRGBA{R: 0x14, G: 0x16, B: 0x19, A: 0xff},
		TextPrimary:   color.NRGBA{R: 0xe8, G: 0xea, B: 0xed, A: 0xff},
		TextSecondary: color.NRGBA{R: 0x9a, G: 0xa2, B: 0xab, A: 0xff},
		Accent:        color.NRGBA{R: 0x5b, G: 0x93, B: 0xf5, A: 0xff},
		Border:        color.NRGBA{R: 0x34, G: 0x3a, B: 0x41, A: 0xff},
		GridLine:      color.NRGBA{R: 0x24, G: 0x28, B: 0x2e, A: 0xff},
		CardBg:        color.NRGBA{R: 0x1c, G: 0x1f, B: 0x24, A: 0xff},
	}
}
