package models

// Thresholds are the fixed bounds a reading is classified against.
type Thresholds struct {
	TempHigh     float64 `json:"temp_high" mapstructure:"temp_high"`
	TempLow      float64 `json:"temp_low" mapstructure:"temp_low"`
	HumidityHigh float64 `json:"humidity_high" mapstructure:"humidity_high"`
	HumidityLow  float64 `json:"humidity_low" mapstructure:"humidity_low"`
}

// DefaultThresholds returns 30/10 °C and 80/20 % RH.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempHigh:     30,
		TempLow:      10,
		HumidityHigh: 80,
		HumidityLow:  20,
	}
}

// Stats summarizes the readings currently retained.
type Stats struct {
	AverageTemperature float64 `json:"average_temperature"`
	MinTemperature     float64 `json:"min_temperature"`
	MaxTemperature     float64 `json:"max_temperature"`
	AverageHumidity    float64 `json:"average_humidity"`
	MinHumidity        float64 `json:"min_humidity"`
	MaxHumidity        float64 `json:"max_humidity"`
	TotalReadings      int     `json:"total_readings"`
}

// AlertKind enumerates the threshold crossings.
type AlertKind string

const (
	AlertHighTemperature AlertKind = "HIGH_TEMPERATURE"
	AlertLowTemperature  AlertKind = "LOW_TEMPERATURE"
	AlertHighHumidity    AlertKind = "HIGH_HUMIDITY"
	AlertLowHumidity     AlertKind = "LOW_HUMIDITY"
)

// AlertKinds lists every kind in evaluation order.
var AlertKinds = []AlertKind{
	AlertHighTemperature,
	AlertLowTemperature,
	AlertHighHumidity,
	AlertLowHumidity,
}

// Valid reports whether k is one of the known kinds.
func (k AlertKind) Valid() bool {
	for _, known := range AlertKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Alert reports that the latest reading crossed a threshold.
type Alert struct {
	Kind      AlertKind `json:"type"`
	Message   string    `json:"message"`
	SensorID  string    `json:"sensor_id"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

// Analysis is the outcome of ingesting one reading and re-evaluating the window.
type Analysis struct {
	Reading       Reading `json:"data"`
	TotalReadings int     `json:"total_readings"`
	Stats         *Stats  `json:"stats"`
	Alerts        []Alert `json:"alerts"`
}
