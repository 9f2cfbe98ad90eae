package forecast

import (
	"math"
	"strings"
	"testing"
)

func TestSamplesNullRoundTrip(t *testing.T) {
	doc := Document{
		Location: "Alta",
		Times:    []string{"00", "01", "02", "03"},
		Variables: []Variable{{
			Key:  "temperature_2m",
			Name: "Temperature",
			Unit: "°C",
			Kind: KindContinuous,
			Runs: []Run{{
				Model:   "gfs",
				Samples: Samples{-1.5, math.NaN(), 0, 2.25},
			}},
		}},
	}
	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.Contains(string(data), "null") {
		t.Error("missing sample did not encode as null")
	}
	if strings.Contains(string(data), "NaN") {
		t.Error("NaN leaked into the JSON output")
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	samples := got.Variables[0].Runs[0].Samples
	want := []float64{-1.5, math.NaN(), 0, 2.25}
	for i, w := range want {
		if math.IsNaN(w) != math.IsNaN(samples[i]) || (!math.IsNaN(w) && samples[i] != w) {
			t.Errorf("sample %d = %v, want %v", i, samples[i], w)
		}
	}
}

func TestDecodeNullSamples(t *testing.T) {
	const raw = `{
		"location": "Alta",
		"times": ["00", "01", "02"],
		"variables": [{
			"key": "snowfall",
			"kind": "accumulation",
			"runs": [{"model": "gfs", "samples": [0.5, null, 1]}]
		}]
	}`
	doc, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	samples := doc.Variables[0].Runs[0].Samples
	if !math.IsNaN(samples[1]) {
		t.Errorf("null sample decoded to %v, want NaN", samples[1])
	}
	if samples[0] != 0.5 || samples[2] != 1 {
		t.Errorf("samples = %v", samples)
	}
}

func TestDecodeRejectsEmptyAxis(t *testing.T) {
	if _, err := Decode([]byte(`{"location": "Alta"}`)); err == nil {
		t.Error("decode accepted a document without a time axis")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("decode accepted malformed input")
	}
}

func TestNormalizeFitsRunsToAxis(t *testing.T) {
	doc := Document{
		Times: []string{"00", "01", "02", "03"},
		Variables: []Variable{{
			Key: "wind",
			Runs: []Run{{
				Model:   "icon",
				Samples: Samples{1, 2},
				Upper:   Samples{2, 3, 4, 5, 6},
				Lower:   Samples{0},
			}},
		}},
	}
	doc.Normalize()
	r := doc.Variables[0].Runs[0]
	if len(r.Samples) != 4 || len(r.Upper) != 4 || len(r.Lower) != 4 {
		t.Fatalf("lengths after normalize: %d/%d/%d, want 4/4/4",
			len(r.Samples), len(r.Upper), len(r.Lower))
	}
	if !math.IsNaN(r.Samples[2]) || !math.IsNaN(r.Samples[3]) {
		t.Error("short run not padded with NaN")
	}
	if r.Upper[3] != 5 {
		t.Errorf("long run not truncated: %v", r.Upper)
	}
}

func TestVariableRangeSpansRunsAndBounds(t *testing.T) {
	v := Variable{
		Runs: []Run{
			{Samples: Samples{1, 2, math.NaN()}},
			{Samples: Samples{0, 5}, Upper: Samples{7}, Lower: Samples{-3}},
		},
	}
	lo, hi, ok := v.Range()
	if !ok {
		t.Fatal("range reported no drawable samples")
	}
	if lo != -3 || hi != 7 {
		t.Errorf("range = [%v, %v], want [-3, 7]", lo, hi)
	}

	empty := Variable{Runs: []Run{{Samples: Samples{math.NaN()}}}}
	if _, _, ok := empty.Range(); ok {
		t.Error("all-null variable reported a range")
	}
}

func TestDocumentVariableLookup(t *testing.T) {
	doc := Document{
		Times:     []string{"00"},
		Variables: []Variable{{Key: "snowfall"}, {Key: "wind"}},
	}
	if v, ok := doc.Variable("wind"); !ok || v.Key != "wind" {
		t.Error("lookup missed an existing variable")
	}
	if _, ok := doc.Variable("pressure"); ok {
		t.Error("lookup invented a variable")
	}
}
