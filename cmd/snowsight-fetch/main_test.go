package main

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snowsight/snowsight/forecast"
)

const fixtureResponse = `{
	"hourly_units": {
		"temperature_2m": "°C",
		"snowfall": "cm",
		"wind_speed_10m": "km/h",
		"wind_gusts_10m": "km/h"
	},
	"hourly": {
		"time": ["2026-08-30T00:00", "2026-08-30T01:00", "2026-08-30T02:00"],
		"temperature_2m": [-1.5, null, 0.5],
		"snowfall": [0, 2.5, 1],
		"wind_speed_10m": [10, 12, 14],
		"wind_gusts_10m": [20, 25]
	}
}`

func TestFetchNormalizesResponse(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(fixtureResponse))
	}))
	defer srv.Close()

	f := newFetcher(srv.URL, "Alta", 40.5883, -111.6358, []string{"best_match"})
	doc, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if doc.Len() != 3 {
		t.Fatalf("time axis has %d samples, want 3", doc.Len())
	}
	if doc.Times[1] != "30 01:00" {
		t.Errorf("time label = %q, want compacted \"30 01:00\"", doc.Times[1])
	}
	if doc.Location != "Alta" || doc.Latitude != 40.5883 {
		t.Errorf("location metadata not carried: %q (%v, %v)", doc.Location, doc.Latitude, doc.Longitude)
	}

	temp, ok := doc.Variable("temperature_2m")
	if !ok {
		t.Fatal("temperature variable missing")
	}
	if temp.Unit != "°C" {
		t.Errorf("temperature unit = %q, want °C", temp.Unit)
	}
	if len(temp.Runs) != 1 || temp.Runs[0].Model != "best_match" {
		t.Fatalf("temperature runs = %+v, want one best_match run", temp.Runs)
	}
	// The JSON null decodes to a NaN gap, not a zero.
	if !math.IsNaN(temp.Runs[0].Samples[1]) {
		t.Errorf("null sample decoded to %v, want NaN", temp.Runs[0].Samples[1])
	}

	// The short gusts run pads to the axis length.
	gusts, ok := doc.Variable("wind_gusts")
	if !ok {
		t.Fatal("wind gusts variable missing")
	}
	if got := len(gusts.Runs[0].Samples); got != 3 {
		t.Fatalf("gusts run has %d samples after normalize, want 3", got)
	}
	if !math.IsNaN(gusts.Runs[0].Samples[2]) {
		t.Errorf("padded sample = %v, want NaN", gusts.Runs[0].Samples[2])
	}

	snow, _ := doc.Variable("snowfall")
	if snow.Kind != forecast.KindAccumulation {
		t.Errorf("snowfall kind = %q, want accumulation", snow.Kind)
	}

	// best_match must not be sent as an explicit model selector.
	if gotQuery == "" {
		t.Fatal("server saw no query")
	}
	for _, part := range []string{"latitude=40.5883", "hourly=temperature_2m"} {
		if !strings.Contains(gotQuery, part) {
			t.Errorf("query %q missing %q", gotQuery, part)
		}
	}
	if strings.Contains(gotQuery, "models=") {
		t.Errorf("query %q selects a model for best_match", gotQuery)
	}
}

func TestWriteAtomicReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forecast.json")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := forecast.Document{
		Location: "Alta",
		Times:    []string{"a", "b"},
		Variables: []forecast.Variable{{
			Key: "temperature_2m", Name: "Temperature", Kind: forecast.KindContinuous,
			Runs: []forecast.Run{{Model: "x", Samples: forecast.Samples{1, math.NaN()}}},
		}},
	}
	if err := writeAtomic(path, doc); err != nil {
		t.Fatalf("atomic write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := forecast.Decode(data)
	if err != nil {
		t.Fatalf("written file does not decode: %v", err)
	}
	if got.Len() != 2 || got.Location != "Alta" {
		t.Errorf("round-tripped document = %+v", got)
	}
	// No temp file left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries after write, want 1", len(entries))
	}
}
