// Package analytics holds the in-memory analytics engine: a bounded window of
// recent readings, summary statistics over it and threshold alerts on the
// latest reading.
package analytics

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"sensor_analytics/internal/models"
)

// DefaultCapacity is the number of readings retained by default.
const DefaultCapacity = 100

// Engine is safe for concurrent use. One instance is meant to live for the
// whole process.
type Engine struct {
	mu         sync.RWMutex
	buf        *ring
	thresholds models.Thresholds
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithCapacity overrides the window size. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.buf = newRing(n)
		}
	}
}

// WithThresholds overrides the default alert thresholds.
func WithThresholds(t models.Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// NewEngine returns an engine with an empty window.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		buf:        newRing(DefaultCapacity),
		thresholds: models.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest stores r, evicting the oldest reading when the window is full, and
// returns the number of readings retained.
func (e *Engine) Ingest(r models.Reading) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.push(r)
	return e.buf.len()
}

// Statistics summarizes the window. The bool is false when no readings are retained.
func (e *Engine) Statistics() (models.Stats, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.statsLocked()
}

// CheckAlerts evaluates the most recent reading against the thresholds.
// The result is never nil.
func (e *Engine) CheckAlerts() []models.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alertsLocked()
}

// Analyze ingests r and evaluates the resulting window in one step, so the
// returned stats and alerts describe exactly the state r produced.
func (e *Engine) Analyze(r models.Reading) models.Analysis {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.push(r)

	out := models.Analysis{
		Reading:       r,
		TotalReadings: e.buf.len(),
		Alerts:        e.alertsLocked(),
	}
	if st, ok := e.statsLocked(); ok {
		out.Stats = &st
	}
	return out
}

// Snapshot returns statistics and alerts read under the same lock, so both
// describe the same window.
func (e *Engine) Snapshot() (models.Stats, bool, []models.Alert) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st, ok := e.statsLocked()
	return st, ok, e.alertsLocked()
}

// Len returns the number of readings retained.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.len()
}

// Readings returns a copy of the window, oldest first.
func (e *Engine) Readings() []models.Reading {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.snapshot()
}

// Thresholds returns the configured thresholds.
func (e *Engine) Thresholds() models.Thresholds {
	return e.thresholds
}

func (e *Engine) statsLocked() (models.Stats, bool) {
	n := e.buf.len()
	if n == 0 {
		return models.Stats{}, false
	}

	var (
		sumTemp, sumHum float64
		first           = true
		st              models.Stats
	)
	e.buf.each(func(r models.Reading) {
		sumTemp += r.Temperature
		sumHum += r.Humidity
		if first {
			st.MinTemperature, st.MaxTemperature = r.Temperature, r.Temperature
			st.MinHumidity, st.MaxHumidity = r.Humidity, r.Humidity
			first = false
			return
		}
		st.MinTemperature = math.Min(st.MinTemperature, r.Temperature)
		st.MaxTemperature = math.Max(st.MaxTemperature, r.Temperature)
		st.MinHumidity = math.Min(st.MinHumidity, r.Humidity)
		st.MaxHumidity = math.Max(st.MaxHumidity, r.Humidity)
	})

	st.AverageTemperature = round2(sumTemp / float64(n))
	st.AverageHumidity = round2(sumHum / float64(n))
	st.TotalReadings = n
	return st, true
}

func (e *Engine) alertsLocked() []models.Alert {
	alerts := make([]models.Alert, 0, len(models.AlertKinds))
	latest, ok := e.buf.last()
	if !ok {
		return alerts
	}

	t := e.thresholds
	if latest.Temperature > t.TempHigh {
		alerts = append(alerts, newAlert(models.AlertHighTemperature, latest, latest.Temperature, t.TempHigh,
			"Temperature %s°C exceeds threshold %s°C"))
	}
	if latest.Temperature < t.TempLow {
		alerts = append(alerts, newAlert(models.AlertLowTemperature, latest, latest.Temperature, t.TempLow,
			"Temperature %s°C below threshold %s°C"))
	}
	if latest.Humidity > t.HumidityHigh {
		alerts = append(alerts, newAlert(models.AlertHighHumidity, latest, latest.Humidity, t.HumidityHigh,
			"Humidity %s%% exceeds threshold %s%%"))
	}
	if latest.Humidity < t.HumidityLow {
		alerts = append(alerts, newAlert(models.AlertLowHumidity, latest, latest.Humidity, t.HumidityLow,
			"Humidity %s%% below threshold %s%%"))
	}
	return alerts
}

func newAlert(kind models.AlertKind, r models.Reading, value, threshold float64, format string) models.Alert {
	return models.Alert{
		Kind:      kind,
		Message:   fmt.Sprintf(format, formatValue(value), formatValue(threshold)),
		SensorID:  r.SensorID,
		Value:     value,
		Threshold: threshold,
	}
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
