package service

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"sensor_analytics/internal/models"
)

// ---- Test doubles ----

// simAnalyticsStub records ingested readings.
type simAnalyticsStub struct {
	mu      sync.Mutex
	ingests []models.Reading
	sources []string
}

func (s *simAnalyticsStub) Ingest(ctx context.Context, r models.Reading) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingests = append(s.ingests, r)
	s.sources = append(s.sources, sourceFrom(ctx))
	return len(s.ingests)
}
func (s *simAnalyticsStub) Stats(ctx context.Context) (models.Stats, bool) { return models.Stats{}, false }
func (s *simAnalyticsStub) Alerts(ctx context.Context) []models.Alert { return nil }
func (s *simAnalyticsStub) Snapshot(ctx context.Context) (models.Stats, bool, []models.Alert) {
	return models.Stats{}, false, nil
}
func (s *simAnalyticsStub) Thresholds(ctx context.Context) models.Thresholds {
	return models.DefaultThresholds()
}
func (s *simAnalyticsStub) Analyze(ctx context.Context, r models.Reading) models.Analysis {
	return models.Analysis{Reading: r, TotalReadings: s.Ingest(ctx, r)}
}

func (s *simAnalyticsStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ingests)
}

// ---- Tests ----

func TestSimulatorNext_StaysInBoundsWithBoundedSteps(t *testing.T) {
	svc := NewSimulatorService(&simAnalyticsStub{}, "", 42)

	prevT, prevH := StartTempC, StartHumidity
	for i := 0; i < 5000; i++ {
		r := svc.next()
		if r.SensorID != "SENSOR-1" {
			t.Fatalf("default sensor id: got %q", r.SensorID)
		}
		if r.Temperature < MinTempC || r.Temperature > MaxTempC {
			t.Fatalf("temperature out of range: %v", r.Temperature)
		}
		if r.Humidity < MinHumidity || r.Humidity > MaxHumidity {
			t.Fatalf("humidity out of range: %v", r.Humidity)
		}
		if math.Abs(r.Temperature-prevT) > MaxStepPerTick || math.Abs(r.Humidity-prevH) > MaxStepPerTick {
			t.Fatalf("step too large at %d: (%v,%v) -> (%v,%v)", i, prevT, prevH, r.Temperature, r.Humidity)
		}
		prevT, prevH = r.Temperature, r.Humidity
	}
}

func TestSimulatorNext_DeterministicForSeed(t *testing.T) {
	a := NewSimulatorService(&simAnalyticsStub{}, "s", 7)
	b := NewSimulatorService(&simAnalyticsStub{}, "s", 7)
	for i := 0; i < 10; i++ {
		if ra, rb := a.next(), b.next(); ra != rb {
			t.Fatalf("step %d differs: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, want float64 }{
		{10, 15}, {15, 15}, {20, 20}, {30, 30}, {31, 30},
	}
	for _, c := range cases {
		if got := clamp(c.v, 15, 30); got != c.want {
			t.Fatalf("clamp(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestSimulatorRun_IngestsUntilCanceled(t *testing.T) {
	stub := &simAnalyticsStub{}
	svc := NewSimulatorService(stub, "SIM", 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for stub.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("simulator produced %d readings in time", stub.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	for i, src := range stub.sources {
		if src != SourceSimulator {
			t.Fatalf("reading %d tagged %q", i, src)
		}
		if stub.ingests[i].SensorID != "SIM" {
			t.Fatalf("reading %d sensor id %q", i, stub.ingests[i].SensorID)
		}
	}
}
