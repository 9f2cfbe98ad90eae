// Command snowsight-fetch downloads an hourly forecast from an
// open-meteo compatible API and writes it as a snowsight forecast
// document. With -interval it keeps refetching on a schedule,
// rewriting the output file atomically so a watching dashboard always
// reads a complete document.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"

	"github.com/snowsight/snowsight/forecast"
)

// hourlyFields is the fixed set of quantities requested per model.
const hourlyFields = "temperature_2m,snowfall,wind_speed_10m,wind_gusts_10m"

type backoffConfig struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

type fetcher struct {
	baseURL  string
	client   *http.Client
	backoff  backoffConfig
	circuit  *gobreaker.CircuitBreaker
	lat, lon float64
	location string
	models   []string
}

func newFetcher(baseURL, location string, lat, lon float64, models []string) *fetcher {
	return &fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		backoff: backoffConfig{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openmeteo",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		lat:      lat,
		lon:      lon,
		location: location,
		models:   models,
	}
}

// doRequestWithResilience executes the request with retries,
// exponential backoff, and a circuit breaker.
func (f *fetcher) doRequestWithResilience(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	var attempt int
	var lastErr error
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := f.circuit.Execute(func() (interface{}, error) {
			resp, execErr := f.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})
		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= f.backoff.maxRetries {
			return nil, lastErr
		}
		delay := f.backoff.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > f.backoff.maxInterval {
			delay = f.backoff.maxInterval
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

// hourlyPayload is the relevant slice of an open-meteo response. Null
// samples decode straight to NaN.
type hourlyPayload struct {
	Hourly struct {
		Time        []string         `json:"time"`
		Temperature forecast.Samples `json:"temperature_2m"`
		Snowfall    forecast.Samples `json:"snowfall"`
		WindSpeed   forecast.Samples `json:"wind_speed_10m"`
		WindGusts   forecast.Samples `json:"wind_gusts_10m"`
	} `json:"hourly"`
	HourlyUnits struct {
		Temperature string `json:"temperature_2m"`
		Snowfall    string `json:"snowfall"`
		WindSpeed   string `json:"wind_speed_10m"`
		WindGusts   string `json:"wind_gusts_10m"`
	} `json:"hourly_units"`
}

func (f *fetcher) fetchModel(ctx context.Context, model string) (hourlyPayload, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(f.lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(f.lon, 'f', -1, 64))
		values.Set("hourly", hourlyFields)
		values.Set("timezone", "UTC")
		if model != "" && model != "best_match" {
			values.Set("models", model)
		}
		return http.NewRequest(http.MethodGet, f.baseURL+"?"+values.Encode(), nil)
	}
	resp, err := f.doRequestWithResilience(ctx, buildRequest)
	if err != nil {
		return hourlyPayload{}, fmt.Errorf("fetching model %q: %w", model, err)
	}
	defer resp.Body.Close()

	var payload hourlyPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return hourlyPayload{}, fmt.Errorf("decoding model %q: %w", model, err)
	}
	if len(payload.Hourly.Time) == 0 {
		return hourlyPayload{}, fmt.Errorf("model %q returned no hourly data", model)
	}
	return payload, nil
}

// Fetch builds one forecast document from one request per model. All
// models share the first model's time axis; shorter runs pad with NaN.
func (f *fetcher) Fetch(ctx context.Context) (forecast.Document, error) {
	doc := forecast.Document{
		Location:  f.location,
		Latitude:  f.lat,
		Longitude: f.lon,
		Generated: time.Now().UTC(),
	}
	vars := []forecast.Variable{
		{Key: "temperature_2m", Name: "Temperature", Kind: forecast.KindContinuous},
		{Key: "snowfall", Name: "Snowfall", Kind: forecast.KindAccumulation},
		{Key: "wind_speed", Name: "Wind Speed", Kind: forecast.KindContinuous},
		{Key: "wind_gusts", Name: "Wind Gusts", Kind: forecast.KindContinuous},
	}
	for _, model := range f.models {
		payload, err := f.fetchModel(ctx, model)
		if err != nil {
			return forecast.Document{}, err
		}
		if doc.Len() == 0 {
			doc.Times = compactTimes(payload.Hourly.Time)
			vars[0].Unit = payload.HourlyUnits.Temperature
			vars[1].Unit = payload.HourlyUnits.Snowfall
			vars[2].Unit = payload.HourlyUnits.WindSpeed
			vars[3].Unit = payload.HourlyUnits.WindGusts
		}
		vars[0].Runs = append(vars[0].Runs, forecast.Run{Model: model, Samples: payload.Hourly.Temperature})
		vars[1].Runs = append(vars[1].Runs, forecast.Run{Model: model, Samples: payload.Hourly.Snowfall})
		vars[2].Runs = append(vars[2].Runs, forecast.Run{Model: model, Samples: payload.Hourly.WindSpeed})
		vars[3].Runs = append(vars[3].Runs, forecast.Run{Model: model, Samples: payload.Hourly.WindGusts})
	}
	doc.Variables = vars
	doc.Normalize()
	return doc, nil
}

// compactTimes shortens ISO hour stamps to "02 15:00" style labels.
func compactTimes(stamps []string) []string {
	out := make([]string, len(stamps))
	for i, s := range stamps {
		if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
			out[i] = t.Format("02 15:04")
		} else {
			out[i] = s
		}
	}
	return out
}

// writeAtomic writes the document next to the target and renames it
// into place, so watchers never observe a half-written file.
func writeAtomic(path string, doc forecast.Document) error {
	data, err := forecast.Encode(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snowsight-*.json")
	if err != nil {
		return fmt.Errorf("failed creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed writing forecast: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed replacing %q: %w", path, err)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	var (
		lat      = flag.Float64("lat", getenvFloat("SNOWSIGHT_LAT", 40.5883), "forecast latitude")
		lon      = flag.Float64("lon", getenvFloat("SNOWSIGHT_LON", -111.6358), "forecast longitude")
		location = flag.String("location", getenvDefault("SNOWSIGHT_LOCATION", "Alta"), "location name stored in the document")
		out      = flag.String("out", getenvDefault("SNOWSIGHT_OUT", "snowsight-forecast.json"), "output file path")
		apiURL   = flag.String("api", getenvDefault("SNOWSIGHT_API_URL", "https://api.open-meteo.com/v1/forecast"), "forecast API endpoint")
		models   = flag.String("models", getenvDefault("SNOWSIGHT_MODELS", "best_match"), "comma-separated forecast models, one run each")
		interval = flag.Duration("interval", 0, "refetch interval; 0 fetches once and exits")
	)
	flag.Parse()

	modelList := strings.Split(*models, ",")
	for i := range modelList {
		modelList[i] = strings.TrimSpace(modelList[i])
	}
	f := newFetcher(*apiURL, *location, *lat, *lon, modelList)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job := func() {
		jobCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		doc, err := f.Fetch(jobCtx)
		if err != nil {
			log.Printf("fetch failed: %v", err)
			return
		}
		if err := writeAtomic(*out, doc); err != nil {
			log.Printf("write failed: %v", err)
			return
		}
		log.Printf("wrote %d hours x %d variables to %s", doc.Len(), len(doc.Variables), *out)
	}

	job()
	if *interval <= 0 {
		return
	}

	minutes := int(interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}
	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Every(minutes).Minutes().Do(job); err != nil {
		log.Fatalf("failed scheduling refetch: %v", err)
	}
	s.StartAsync()
	<-ctx.Done()
	s.Stop()
}
