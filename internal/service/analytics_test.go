package service

import (
	"context"
	"errors"
	"testing"

	"sensor_analytics/internal/analytics"
	"sensor_analytics/internal/metrics"
	"sensor_analytics/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAnalyticsService_IngestRecordsAlerts(t *testing.T) {
	t.Parallel()

	repo := &fakeAlertRepo{}
	m := metrics.New()
	svc := NewAnalyticsService(analytics.NewEngine(), repo, m, nil)
	ctx := context.Background()

	if n := svc.Ingest(ctx, models.Reading{Temperature: 20, Humidity: 50, SensorID: "ok"}); n != 1 {
		t.Fatalf("total after first ingest: %d", n)
	}
	if len(repo.appended) != 0 {
		t.Fatalf("no alerts expected, got %+v", repo.appended)
	}

	if n := svc.Ingest(WithSource(ctx, SourceKafka), models.Reading{Temperature: 35, Humidity: 10, SensorID: "s1"}); n != 2 {
		t.Fatalf("total after second ingest: %d", n)
	}
	if len(repo.appended) != 2 {
		t.Fatalf("want 2 recorded alerts, got %d", len(repo.appended))
	}
	first := repo.appended[0]
	if first.Kind != models.AlertHighTemperature || first.SensorID != "s1" || first.Value != 35 || first.Threshold != 30 {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if first.EventID == "" || first.OccurredAt.IsZero() {
		t.Fatalf("event id/time must be set: %+v", first)
	}
	if repo.appended[1].Kind != models.AlertLowHumidity {
		t.Fatalf("unexpected second kind: %v", repo.appended[1].Kind)
	}

	if got := testutil.ToFloat64(m.ReadingsTotal.WithLabelValues(SourceHTTP)); got != 1 {
		t.Fatalf("http readings metric: %v", got)
	}
	if got := testutil.ToFloat64(m.ReadingsTotal.WithLabelValues(SourceKafka)); got != 1 {
		t.Fatalf("kafka readings metric: %v", got)
	}
	if got := testutil.ToFloat64(m.AlertsTotal.WithLabelValues("HIGH_TEMPERATURE")); got != 1 {
		t.Fatalf("alerts metric: %v", got)
	}
}

func TestAnalyticsService_HistoryFailureDoesNotFailIngest(t *testing.T) {
	t.Parallel()

	repo := &fakeAlertRepo{appendErr: errors.New("disk full")}
	m := metrics.New()
	svc := NewAnalyticsService(nil, repo, m, nil)

	res := svc.Analyze(context.Background(), models.Reading{Temperature: 50, Humidity: 50, SensorID: "s"})
	if res.TotalReadings != 1 || len(res.Alerts) != 1 {
		t.Fatalf("unexpected analysis: %+v", res)
	}
	if got := testutil.ToFloat64(m.HistoryFailures); got != 1 {
		t.Fatalf("history failure metric: %v", got)
	}
}

func TestAnalyticsService_ReadsDelegateToEngine(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(analytics.NewEngine(), nil, nil, nil)
	ctx := context.Background()

	if _, ok := svc.Stats(ctx); ok {
		t.Fatalf("stats must be absent on empty window")
	}
	if alerts := svc.Alerts(ctx); alerts == nil || len(alerts) != 0 {
		t.Fatalf("expected empty non-nil alerts, got %#v", alerts)
	}

	svc.Ingest(ctx, models.Reading{Temperature: 10, Humidity: 50})
	res := svc.Analyze(ctx, models.Reading{Temperature: 30, Humidity: 70})
	if res.Stats == nil || res.Stats.AverageTemperature != 20 || res.Stats.AverageHumidity != 60 {
		t.Fatalf("unexpected stats: %+v", res.Stats)
	}

	st, ok := svc.Stats(ctx)
	if !ok || st != *res.Stats {
		t.Fatalf("Stats() = %+v, %v; want %+v", st, ok, *res.Stats)
	}
	if len(svc.Alerts(ctx)) != 0 {
		t.Fatalf("boundary reading must not alert")
	}
}

func TestNewService_Wiring(t *testing.T) {
	t.Parallel()

	s := NewService(Deps{Engine: analytics.NewEngine()})
	if s.Analytics == nil || s.AlertHistory == nil {
		t.Fatalf("analytics and history must be wired: %+v", s)
	}
	if s.Simulator != nil {
		t.Fatalf("simulator must be nil unless enabled")
	}

	s = NewService(Deps{Engine: analytics.NewEngine(), Simulated: true, SensorID: "X"})
	if s.Simulator == nil {
		t.Fatalf("simulator must be wired when enabled")
	}
}
