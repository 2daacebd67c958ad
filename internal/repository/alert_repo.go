package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"sensor_analytics/internal/models"

	"github.com/google/uuid"
)

// sqliteTimestampLayout matches SQLite's TIMESTAMP text format.
const sqliteTimestampLayout = "2006-01-02 15:04:05"

const (
	insertAlertSQL = `
		INSERT INTO alert_events (id, occurred_at, kind, message, sensor_id, value, threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectAlertsSQL = `SELECT id, occurred_at, kind, message, sensor_id, value, threshold FROM alert_events`
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite { return &AlertSQLite{db: db} }

// Append inserts a new alert event. Empty EventID and zero OccurredAt are filled in.
func (r *AlertSQLite) Append(ctx context.Context, e models.AlertEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertAlertSQL,
		e.EventID,
		e.OccurredAt.Format(sqliteTimestampLayout),
		normalizeKind(string(e.Kind)),
		e.Message,
		e.SensorID,
		e.Value,
		e.Threshold,
	)
	return err
}

// List returns alert events filtered by [from, to] (inclusive) and/or kind, oldest first.
func (r *AlertSQLite) List(ctx context.Context, from, to time.Time, kind string) ([]models.AlertEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestampLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestampLayout))
	}
	if kind = normalizeKind(kind); kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, kind)
	}

	q := selectAlertsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	// occurred_at has second precision; rowid keeps insertion order within a second.
	q += " ORDER BY occurred_at ASC, rowid ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AlertEvent, 0, 64)
	for rows.Next() {
		var (
			ev   models.AlertEvent
			kind string
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &kind, &ev.Message, &ev.SensorID, &ev.Value, &ev.Threshold); err != nil {
			return nil, err
		}
		ev.Kind = models.AlertKind(kind)
		ev.OccurredAt = ev.OccurredAt.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeKind(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
