package main

import (
	"math"
	"testing"

	"github.com/snowsight/snowsight/forecast"
)

func TestPlotSamplesBackfillsEdges(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		in   forecast.Samples
		want []float64
	}{
		{
			name: "leading and trailing gaps take the nearest value",
			in:   forecast.Samples{nan, nan, 3, 4, nan},
			want: []float64{3, 3, 3, 4, 4},
		},
		{
			name: "interior gap stays",
			in:   forecast.Samples{1, nan, 3},
			want: []float64{1, nan, 3},
		},
		{
			name: "no gaps pass through",
			in:   forecast.Samples{1, 2, 3},
			want: []float64{1, 2, 3},
		},
	}
	for _, tc := range tests {
		got := plotSamples(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("%s: got %d samples, want %d", tc.name, len(got), len(tc.want))
			continue
		}
		for i := range got {
			if math.IsNaN(tc.want[i]) != math.IsNaN(got[i]) ||
				(!math.IsNaN(tc.want[i]) && got[i] != tc.want[i]) {
				t.Errorf("%s: sample %d = %v, want %v", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestPlotSamplesAllNull(t *testing.T) {
	nan := math.NaN()
	if got := plotSamples(forecast.Samples{nan, nan}); got != nil {
		t.Errorf("all-null run plotted as %v, want nil", got)
	}
}

func TestVariableSelection(t *testing.T) {
	doc := forecast.Document{
		Times: []string{"a", "b"},
		Variables: []forecast.Variable{
			{Key: "temperature_2m", Name: "Temperature"},
			{Key: "snowfall", Name: "Snowfall"},
		},
	}
	v, ok := doc.Variable("snowfall")
	if !ok || v.Name != "Snowfall" {
		t.Fatalf("snowfall lookup = %+v, %v", v, ok)
	}
	if _, ok := doc.Variable("humidity"); ok {
		t.Error("unknown key resolved to a variable")
	}
}
