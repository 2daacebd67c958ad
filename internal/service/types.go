package service

import "time"

// HistoryFilter supports alert history filtering by time range and type.
type HistoryFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "HIGH_TEMPERATURE", "LOW_TEMPERATURE", "HIGH_HUMIDITY", "LOW_HUMIDITY"
}
