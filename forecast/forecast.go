// Package forecast holds the data model for one location's weather
// forecast and a file-backed source that streams fresh snapshots into
// the UI as the file changes.
package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Kind classifies how a variable's samples behave, which decides how
// the dashboard charts it.
type Kind string

const (
	// KindContinuous is a smoothly varying quantity: temperature, wind.
	KindContinuous Kind = "continuous"
	// KindAccumulation is a per-interval amount: snowfall, rain.
	KindAccumulation Kind = "accumulation"
)

// Samples is a slice of measurements using NaN as the missing-value
// marker in memory and null on the wire.
type Samples []float64

func (s Samples) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(s))
	for i := range s {
		if !math.IsNaN(s[i]) {
			v := s[i]
			out[i] = &v
		}
	}
	return json.Marshal(out)
}

func (s *Samples) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = make(Samples, len(raw))
	for i, v := range raw {
		if v == nil {
			(*s)[i] = math.NaN()
		} else {
			(*s)[i] = *v
		}
	}
	return nil
}

// Range returns the finite extremes of the samples. ok is false when no
// sample is drawable.
func (s Samples) Range() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// fit pads or truncates the samples to n, padding with NaN.
func (s Samples) fit(n int) Samples {
	if len(s) == n {
		return s
	}
	if len(s) > n {
		return s[:n]
	}
	out := make(Samples, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = math.NaN()
	}
	return out
}

// Run is one forecast model's prediction for a variable. Upper and
// Lower, when present, bound the prediction's uncertainty.
type Run struct {
	Model   string  `json:"model"`
	Samples Samples `json:"samples"`
	Upper   Samples `json:"upper,omitempty"`
	Lower   Samples `json:"lower,omitempty"`
}

// HasBounds reports whether the run carries an uncertainty band.
func (r *Run) HasBounds() bool {
	return len(r.Upper) > 0 && len(r.Lower) > 0
}

// Variable is one forecast quantity with a prediction per model run.
type Variable struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Unit string `json:"unit"`
	Kind Kind   `json:"kind"`
	Runs []Run  `json:"runs"`
}

// Range returns the finite extremes across every run, including
// uncertainty bounds.
func (v *Variable) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range v.Runs {
		for _, s := range []Samples{r.Samples, r.Upper, r.Lower} {
			if mn, mx, sok := s.Range(); sok {
				lo = math.Min(lo, mn)
				hi = math.Max(hi, mx)
				ok = true
			}
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Document is the forecast for one location: a shared hourly time axis
// and the variables predicted along it.
type Document struct {
	Location  string     `json:"location"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Generated time.Time  `json:"generated"`
	Times     []string   `json:"times"`
	Variables []Variable `json:"variables"`
}

// Len is the number of samples on the shared time axis.
func (d *Document) Len() int { return len(d.Times) }

// Variable returns the variable with the given key.
func (d *Document) Variable(key string) (*Variable, bool) {
	for i := range d.Variables {
		if d.Variables[i].Key == key {
			return &d.Variables[i], true
		}
	}
	return nil, false
}

// Normalize fits every run's slices to the time axis length so
// downstream code can index any sample without bounds checks.
func (d *Document) Normalize() {
	n := d.Len()
	for vi := range d.Variables {
		v := &d.Variables[vi]
		for ri := range v.Runs {
			r := &v.Runs[ri]
			r.Samples = r.Samples.fit(n)
			if len(r.Upper) > 0 {
				r.Upper = r.Upper.fit(n)
			}
			if len(r.Lower) > 0 {
				r.Lower = r.Lower.fit(n)
			}
		}
	}
}

// Decode parses a forecast document and normalizes it.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed decoding forecast: %w", err)
	}
	if doc.Len() == 0 {
		return Document{}, fmt.Errorf("forecast has an empty time axis")
	}
	doc.Normalize()
	return doc, nil
}

// Encode serializes a forecast document.
func Encode(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed encoding forecast: %w", err)
	}
	return data, nil
}
