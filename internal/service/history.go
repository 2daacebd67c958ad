package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sensor_analytics/internal/models"
	"sensor_analytics/internal/repository"
)

type AlertHistoryService struct {
	alertRepo repository.AlertRepo
}

func NewAlertHistoryService(alertRepo repository.AlertRepo) *AlertHistoryService {
	return &AlertHistoryService{alertRepo: alertRepo}
}

var (
	// ErrInvalidTimeRange is returned when From is after To.
	ErrInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	// ErrInvalidAlertType is returned for a type filter that names no alert kind.
	ErrInvalidAlertType = errors.New("invalid alert type")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAlertType trims spaces and uppercases the type filter.
func normalizeAlertType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates them.
func normalizeAndValidateFilter(f HistoryFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", ErrInvalidTimeRange
	}

	typ := normalizeAlertType(f.Type)
	if typ != "" && !models.AlertKind(typ).Valid() {
		return time.Time{}, time.Time{}, "", ErrInvalidAlertType
	}
	return from, to, typ, nil
}

// List returns recorded alerts oldest first. Without a history store it
// returns an empty list.
func (s *AlertHistoryService) List(ctx context.Context, f HistoryFilter) ([]models.AlertEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	if s.alertRepo == nil {
		return []models.AlertEvent{}, nil
	}
	return s.alertRepo.List(ctx, from, to, typ)
}
