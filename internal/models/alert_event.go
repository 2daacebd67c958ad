package models

import "time"

// AlertEvent is a persisted alert history entry.
type AlertEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Kind       AlertKind `json:"type"`    // HIGH_TEMPERATURE | LOW_TEMPERATURE | HIGH_HUMIDITY | LOW_HUMIDITY
	Message    string    `json:"message"` // human-readable
	SensorID   string    `json:"sensor_id"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
}
