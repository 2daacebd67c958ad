package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"sensor_analytics/internal/models"
)

// ----------- Simulation constants -----------
const (
	StartTempC     = 20.0 // initial temperature °C
	StartHumidity  = 50.0 // initial relative humidity %
	MinTempC       = 15.0
	MaxTempC       = 30.0
	MinHumidity    = 30.0
	MaxHumidity    = 80.0
	MaxStepPerTick = 0.5 // largest change of either value per tick
)

// SimulatorService emulates a single sensor doing a bounded random walk.
type SimulatorService struct {
	analytics Analytics
	sensorID  string

	mu       sync.Mutex
	rng      *rand.Rand
	temp     float64
	humidity float64
}

// NewSimulatorService returns a simulator starting at 20 °C / 50 %.
func NewSimulatorService(an Analytics, sensorID string, seed int64) *SimulatorService {
	if sensorID == "" {
		sensorID = "SENSOR-1"
	}
	return &SimulatorService{
		analytics: an,
		sensorID:  sensorID,
		rng:       rand.New(rand.NewSource(seed)),
		temp:      StartTempC,
		humidity:  StartHumidity,
	}
}

// Run ingests one simulated reading per tick until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	ctx = WithSource(ctx, SourceSimulator)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.analytics.Ingest(ctx, s.next())
		}
	}
}

// next advances the walk by one step.
func (s *SimulatorService) next() models.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.temp = clamp(s.temp+s.step(), MinTempC, MaxTempC)
	s.humidity = clamp(s.humidity+s.step(), MinHumidity, MaxHumidity)
	return models.Reading{
		Temperature: s.temp,
		Humidity:    s.humidity,
		SensorID:    s.sensorID,
	}
}

// step returns a value in [-MaxStepPerTick, MaxStepPerTick).
func (s *SimulatorService) step() float64 {
	return (s.rng.Float64()*2 - 1) * MaxStepPerTick
}

// helpers
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
