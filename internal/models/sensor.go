package models

// SensorType identifies the physical quantity a sensor measures.
type SensorType string

const (
	SensorTypeTemperature SensorType = "temperature"
	SensorTypeHumidity    SensorType = "humidity"
	SensorTypePressure    SensorType = "pressure"
	SensorTypeCO2         SensorType = "co2"
	SensorTypeLight       SensorType = "light"
	SensorTypeMotion      SensorType = "motion"
	SensorTypePower       SensorType = "power"
)

// Bounds is an inclusive [Min, Max] operating range.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds maps each sensor type to its factory operating range.
// Used when a sensor is registered without explicit bounds.
var DefaultBounds = map[SensorType]Bounds{
	SensorTypeTemperature: {-40, 85},
	SensorTypeHumidity:    {0, 100},
	SensorTypePressure:    {870, 1084},
	SensorTypeCO2:         {400, 5000},
	SensorTypeLight:       {0, 100000},
	SensorTypeMotion:      {0, 1},
	SensorTypePower:       {0, 10000},
}

// ParseSensorType validates a raw string against the closed set of sensor
// types. Raw strings are only parsed at construction boundaries; internally
// the typed value circulates.
func ParseSensorType(s string) (SensorType, error) {
	t := SensorType(s)
	if _, ok := DefaultBounds[t]; !ok {
		return "", &ValidationError{Field: "type", Msg: "unknown sensor type: " + s}
	}
	return t, nil
}

type Sensor struct {
	ID                string `gorm:"primaryKey"`
	DeviceID          string `gorm:"index"`
	Type              SensorType
	Unit              string
	MinValue          float64
	MaxValue          float64
	CalibrationOffset float64
	Name              *string
	Location          *string

	Readings []Reading `gorm:"foreignKey:SensorID"`
	Alerts   []Alert   `gorm:"foreignKey:SensorID"`
}

// Label returns the sensor's display name, falling back to an id prefix.
func (s *Sensor) Label() string {
	if s.Name != nil && *s.Name != "" {
		return *s.Name
	}
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}
