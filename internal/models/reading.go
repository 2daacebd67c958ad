package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// UnknownSensorID is used when a reading arrives without a sensor_id.
const UnknownSensorID = "unknown"

// ErrInvalidReading is returned when a reading field cannot be used as a number.
var ErrInvalidReading = errors.New("invalid reading")

// Reading is a single sensor observation.
type Reading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // % RH
	SensorID    string  `json:"sensor_id"`
}

// ReadingFromMap builds a Reading from a loosely structured payload.
// Missing or null temperature/humidity default to 0, a missing sensor_id to "unknown".
// Numeric strings and booleans are coerced; other values and NaN/Inf are rejected.
func ReadingFromMap(data map[string]any) (Reading, error) {
	temp, err := numericField(data, "temperature")
	if err != nil {
		return Reading{}, err
	}
	hum, err := numericField(data, "humidity")
	if err != nil {
		return Reading{}, err
	}

	sensorID := UnknownSensorID
	if v, ok := data["sensor_id"]; ok && v != nil {
		s, err := cast.ToStringE(v)
		if err != nil {
			return Reading{}, fmt.Errorf("%w: sensor_id: %v", ErrInvalidReading, err)
		}
		sensorID = s
	}

	return Reading{Temperature: temp, Humidity: hum, SensorID: sensorID}, nil
}

func numericField(data map[string]any, key string) (float64, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidReading, key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrInvalidReading, key)
	}
	return f, nil
}
