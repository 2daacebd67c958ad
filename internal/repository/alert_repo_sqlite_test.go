package repository

import (
	"path/filepath"
	"testing"
	"time"

	"sensor_analytics/internal/models"
	"sensor_analytics/internal/repository/db"
)

func TestList_SameSecondKeepsInsertionOrder(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	repo := NewAlertSQLite(conn)
	at := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	// ids deliberately out of lexical order
	ids := []string{"c-third-id", "a-first-id", "b-second-id"}
	for i, id := range ids {
		ev := models.AlertEvent{
			EventID:    id,
			OccurredAt: at.Add(time.Duration(i) * time.Millisecond),
			Kind:       models.AlertHighTemperature,
			Message:    "hot",
			SensorID:   "s1",
			Value:      31,
			Threshold:  30,
		}
		if err := repo.Append(ctx(t), ev); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	got, err := repo.List(ctx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("got %d events, want %d", len(got), len(ids))
	}
	for i, id := range ids {
		if got[i].EventID != id {
			t.Fatalf("position %d: got %q, want %q (order %v)", i, got[i].EventID, id, got)
		}
	}
}
