package service

import (
	"context"
	"time"

	"sensor_analytics/internal/analytics"
	"sensor_analytics/internal/logger"
	"sensor_analytics/internal/metrics"
	"sensor_analytics/internal/models"
	"sensor_analytics/internal/repository"
)

// Analytics exposes the analytics engine to transports (HTTP, Kafka, simulator).
type Analytics interface {
	Ingest(ctx context.Context, r models.Reading) int
	Stats(ctx context.Context) (models.Stats, bool)
	Alerts(ctx context.Context) []models.Alert
	Analyze(ctx context.Context, r models.Reading) models.Analysis
	// Snapshot returns stats and alerts of one consistent window.
	Snapshot(ctx context.Context) (models.Stats, bool, []models.Alert)
	Thresholds(ctx context.Context) models.Thresholds
}

// AlertHistory exposes alerts recorded by past ingests, with filtering.
type AlertHistory interface {
	List(ctx context.Context, f HistoryFilter) ([]models.AlertEvent, error)
}

// Simulator runs a built-in sensor feeding readings into Analytics.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Analytics
	AlertHistory
	Simulator
}

// Deps are the collaborators NewService wires together. Metrics and Log may be nil.
type Deps struct {
	Engine    *analytics.Engine
	Repos     *repository.Repository
	Metrics   *metrics.Metrics
	Log       *logger.Logger
	SensorID  string
	Simulated bool
}

// NewService wires the engine and repository layer into concrete services.
func NewService(d Deps) *Service {
	var alertRepo repository.AlertRepo
	if d.Repos != nil {
		alertRepo = d.Repos.AlertRepo
	}

	an := NewAnalyticsService(d.Engine, alertRepo, d.Metrics, d.Log)
	s := &Service{
		Analytics:    an,
		AlertHistory: NewAlertHistoryService(alertRepo),
	}
	if d.Simulated {
		s.Simulator = NewSimulatorService(an, d.SensorID, time.Now().UnixNano())
	}
	return s
}
