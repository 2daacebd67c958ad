package handlers

import (
	"context"
	"sync"
	"time"

	"sensor_analytics/internal/models"
	"sensor_analytics/internal/ratelimit"
	"sensor_analytics/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAnalytics struct {
	mu sync.Mutex

	stats    models.Stats
	hasStats bool
	alerts   []models.Alert
	panicMsg string

	ingested  []models.Reading
	snapshots int
}

func (m *mockAnalytics) Ingest(ctx context.Context, r models.Reading) int {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested = append(m.ingested, r)
	return len(m.ingested)
}
func (m *mockAnalytics) Stats(ctx context.Context) (models.Stats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats, m.hasStats
}
func (m *mockAnalytics) Alerts(ctx context.Context) []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alerts
}
func (m *mockAnalytics) Snapshot(ctx context.Context) (models.Stats, bool, []models.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots++
	return m.stats, m.hasStats, m.alerts
}
func (m *mockAnalytics) Thresholds(ctx context.Context) models.Thresholds {
	return models.DefaultThresholds()
}
func (m *mockAnalytics) Analyze(ctx context.Context, r models.Reading) models.Analysis {
	total := m.Ingest(ctx, r)
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.stats
	return models.Analysis{Reading: r, TotalReadings: total, Stats: &st, Alerts: m.alerts}
}

func (m *mockAnalytics) lastIngested() (models.Reading, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ingested) == 0 {
		return models.Reading{}, 0
	}
	return m.ingested[len(m.ingested)-1], len(m.ingested)
}

type mockHistory struct {
	resp     []models.AlertEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	calls    int
}

func (m *mockHistory) List(ctx context.Context, f service.HistoryFilter) ([]models.AlertEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockLimiter struct {
	decision ratelimit.Decision
	err      error
	lastKey  string
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	m.lastKey = key
	return m.decision, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	h := NewHandler(s, nil, opts...)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
