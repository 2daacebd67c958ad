package repository

import (
	"context"
	"database/sql"
	"time"

	"sensor_analytics/internal/models"
)

// AlertRepo persists alerts fired by incoming readings.
type AlertRepo interface {
	Append(ctx context.Context, e models.AlertEvent) error
	List(ctx context.Context, from, to time.Time, kind string) ([]models.AlertEvent, error)
}

type Repository struct {
	AlertRepo AlertRepo
}

// NewRepository wires SQLite-backed repositories. A nil db yields a Repository
// without persistence; callers treat a nil AlertRepo as "history disabled".
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return &Repository{}
	}
	return &Repository{
		AlertRepo: NewAlertSQLite(db),
	}
}
