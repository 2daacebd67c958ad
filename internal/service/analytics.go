package service

import (
	"context"
	"time"

	"sensor_analytics/internal/analytics"
	"sensor_analytics/internal/logger"
	"sensor_analytics/internal/metrics"
	"sensor_analytics/internal/models"
	"sensor_analytics/internal/repository"

	"github.com/google/uuid"
)

// Ingest sources reported to metrics.
const (
	SourceHTTP      = "http"
	SourceKafka     = "kafka"
	SourceSimulator = "simulator"
)

type sourceKey struct{}

// WithSource tags ctx with the transport a reading arrived through.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func sourceFrom(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey{}).(string); ok && s != "" {
		return s
	}
	return SourceHTTP
}

// AnalyticsService wraps the engine with alert history, metrics and logging.
type AnalyticsService struct {
	engine    *analytics.Engine
	alertRepo repository.AlertRepo
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func NewAnalyticsService(engine *analytics.Engine, alertRepo repository.AlertRepo, m *metrics.Metrics, log *logger.Logger) *AnalyticsService {
	if engine == nil {
		engine = analytics.NewEngine()
	}
	return &AnalyticsService{engine: engine, alertRepo: alertRepo, metrics: m, log: log}
}

// Ingest stores r and returns the number of readings retained.
func (s *AnalyticsService) Ingest(ctx context.Context, r models.Reading) int {
	return s.Analyze(ctx, r).TotalReadings
}

// Analyze stores r and returns the window evaluated right after it.
// Alerts fired by r are appended to the history; history failures are logged
// and never fail the ingest.
func (s *AnalyticsService) Analyze(ctx context.Context, r models.Reading) models.Analysis {
	res := s.engine.Analyze(r)

	s.metrics.ObserveIngest(sourceFrom(ctx), res.TotalReadings, res.Alerts)
	if s.log != nil {
		s.log.Debugw("analytics_ingest",
			"sensor_id", r.SensorID,
			"temperature", r.Temperature,
			"humidity", r.Humidity,
			"total_readings", res.TotalReadings,
			"alerts", len(res.Alerts),
		)
	}
	s.recordAlerts(ctx, res.Alerts)
	return res
}

// Stats summarizes the current window; false when it is empty.
func (s *AnalyticsService) Stats(_ context.Context) (models.Stats, bool) {
	return s.engine.Statistics()
}

// Alerts evaluates the latest reading.
func (s *AnalyticsService) Alerts(_ context.Context) []models.Alert {
	return s.engine.CheckAlerts()
}

// Snapshot reads stats and alerts of the same window.
func (s *AnalyticsService) Snapshot(_ context.Context) (models.Stats, bool, []models.Alert) {
	return s.engine.Snapshot()
}

// Thresholds returns the limits alerts are evaluated against.
func (s *AnalyticsService) Thresholds(_ context.Context) models.Thresholds {
	return s.engine.Thresholds()
}

func (s *AnalyticsService) recordAlerts(ctx context.Context, alerts []models.Alert) {
	if len(alerts) == 0 {
		return
	}
	now := time.Now().UTC()
	for _, a := range alerts {
		if s.log != nil {
			s.log.Warnw("threshold_alert", "type", a.Kind, "sensor_id", a.SensorID, "message", a.Message)
		}
		if s.alertRepo == nil {
			continue
		}
		err := s.alertRepo.Append(ctx, models.AlertEvent{
			EventID:    uuid.NewString(),
			OccurredAt: now,
			Kind:       a.Kind,
			Message:    a.Message,
			SensorID:   a.SensorID,
			Value:      a.Value,
			Threshold:  a.Threshold,
		})
		if err != nil {
			s.metrics.ObserveHistoryFailure()
			if s.log != nil {
				s.log.Errorw("alert_history_append_failed", "err", err, "type", a.Kind)
			}
		}
	}
}
