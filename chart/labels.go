package chart

import (
	"image"
	"sort"

	"gioui.org/op"
	"gioui.org/widget/material"
)

const (
	// maxLabelsPerSeries bounds per-frame label work on dense data.
	maxLabelsPerSeries = 12
	// labelPadPx pads the collision box around each label.
	labelPadPx = 3
	// labelGapPx separates a label from its data point.
	labelGapPx = 4
	// labelSpacingSlots is the target number of evenly spaced bonus
	// positions across the visible range.
	labelSpacingSlots = 8
)

// Importance scores for label candidates. Endpoints of the visible range
// anchor the reading of a series, peaks matter more than valleys, and
// both beat interior points.
const (
	scoreEndpoint = 100.0
	scorePeak     = 60.0
	scoreValley   = 40.0
	scoreInterior = 20.0
	scoreSpacing  = 10.0
)

type labelCandidate struct {
	idx   int
	score float64
}

// labelCandidates scores every drawable sample in the visible window.
func labelCandidates(data []float64, win Scale) []labelCandidate {
	iLo, iHi := VisibleIndices(win, len(data))
	if iHi < iLo {
		return nil
	}
	firstDrawn, lastDrawn := -1, -1
	for i := iLo; i <= iHi; i++ {
		if IsNull(data[i]) {
			continue
		}
		if firstDrawn < 0 {
			firstDrawn = i
		}
		lastDrawn = i
	}
	if firstDrawn < 0 {
		return nil
	}
	stride := (iHi - iLo) / labelSpacingSlots
	if stride < 1 {
		stride = 1
	}
	var cands []labelCandidate
	for i := iLo; i <= iHi; i++ {
		v := data[i]
		if IsNull(v) {
			continue
		}
		score := scoreInterior
		switch {
		case i == firstDrawn || i == lastDrawn:
			score = scoreEndpoint
		case isLocalPeak(data, i):
			score = scorePeak
		case isLocalValley(data, i):
			score = scoreValley
		}
		if (i-iLo)%stride == 0 {
			score += scoreSpacing
		}
		cands = append(cands, labelCandidate{idx: i, score: score})
	}
	sort.SliceStable(cands, func(a, b int) bool {
		return cands[a].score > cands[b].score
	})
	return cands
}

func isLocalPeak(data []float64, i int) bool {
	if i <= 0 || i >= len(data)-1 || IsNull(data[i-1]) || IsNull(data[i+1]) {
		return false
	}
	return data[i] >= data[i-1] && data[i] >= data[i+1]
}

func isLocalValley(data []float64, i int) bool {
	if i <= 0 || i >= len(data)-1 || IsNull(data[i-1]) || IsNull(data[i+1]) {
		return false
	}
	return data[i] <= data[i-1] && data[i] <= data[i+1]
}

// acceptLabel reports whether box, padded, clears every already accepted
// label. Acceptance is greedy in importance order.
func acceptLabel(box image.Rectangle, accepted []image.Rectangle, pad int) bool {
	padded := image.Rectangle{
		Min: image.Pt(box.Min.X-pad, box.Min.Y-pad),
		Max: image.Pt(box.Max.X+pad, box.Max.Y+pad),
	}
	for _, other := range accepted {
		if padded.Overlaps(other) {
			return false
		}
	}
	return true
}

// LabelPlugin annotates labeled series' points with their values,
// importance-scored and greedily placed so no two labels overlap —
// across all labeled series, not just within one.
type LabelPlugin struct {
	NopPlugin
	// accepted holds this frame's placed boxes, shared across series.
	accepted []image.Rectangle
}

func (l *LabelPlugin) DrawPlot(c *Chart, gtx C, pl *Plot) {
	if c.th == nil {
		return
	}
	l.accepted = l.accepted[:0]
	cfg := c.Config()
	for si := range cfg.Series {
		s := &cfg.Series[si]
		if !s.Labeled || s.Type == TypeBand || !c.SeriesVisible(s.ID) {
			continue
		}
		l.drawSeriesLabels(c, gtx, pl, s)
	}
}

func (l *LabelPlugin) drawSeriesLabels(c *Chart, gtx C, pl *Plot, s *Series) {
	cfg := c.Config()
	axis := cfg.AxisFor(s.AxisIndex)
	placed := 0
	pad := gtx.Dp(labelPadPx)
	gap := gtx.Dp(labelGapPx)
	sub := gtx
	sub.Constraints.Min = image.Point{}
	for _, cand := range labelCandidates(s.Data, pl.X) {
		if placed >= maxLabelsPerSeries {
			break
		}
		v := s.Data[cand.idx]
		label := material.Body2(c.th, axis.FormatValue(v))
		label.Color = cfg.Theme.TextPrimary
		label.MaxLines = 1
		dims, call := rec(sub, label.Layout)

		px := int(pl.XPx(float64(cand.idx)))
		py := int(pl.YPx(s.AxisIndex, v))
		box := image.Rectangle{
			Min: image.Pt(px-dims.Size.X/2, py-gap-dims.Size.Y),
			Max: image.Pt(px+dims.Size.X/2, py-gap),
		}
		// Escaping the top edge flips the label below its point.
		if box.Min.Y < pl.Rect.Min.Y {
			box = image.Rectangle{
				Min: image.Pt(box.Min.X, py+gap),
				Max: image.Pt(box.Max.X, py+gap+dims.Size.Y),
			}
		}
		// Labels outside the plot are never candidates.
		if box.Min.X < pl.Rect.Min.X || box.Max.X > pl.Rect.Max.X || box.Max.Y > pl.Rect.Max.Y {
			continue
		}
		if !acceptLabel(box, l.accepted, pad) {
			continue
		}
		l.accepted = append(l.accepted, image.Rectangle{
			Min: image.Pt(box.Min.X-pad, box.Min.Y-pad),
			Max: image.Pt(box.Max.X+pad, box.Max.Y+pad),
		})
		stack := op.Offset(box.Min).Push(gtx.Ops)
		call.Add(gtx.Ops)
		stack.Pop()
		placed++
	}
}

func (l *LabelPlugin) Destroy(*Chart) {
	l.accepted = nil
}
