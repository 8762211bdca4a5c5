package models

import "time"

// ReadingQuality tags how trustworthy a reading is.
type ReadingQuality string

const (
	QualityGood     ReadingQuality = "good"
	QualityDegraded ReadingQuality = "degraded"
	QualityError    ReadingQuality = "error"
)

func ParseReadingQuality(s string) (ReadingQuality, error) {
	switch q := ReadingQuality(s); q {
	case QualityGood, QualityDegraded, QualityError:
		return q, nil
	default:
		return "", &ValidationError{Field: "quality", Msg: "unknown reading quality: " + s}
	}
}

// Reading is a single calibrated measurement. CalibratedValue is frozen at
// ingestion time; changing the sensor's offset later never rewrites history.
type Reading struct {
	ID              string `gorm:"primaryKey"`
	SensorID        string `gorm:"index:idx_readings_sensor_timestamp"`
	RawValue        float64
	CalibratedValue float64
	Timestamp       time.Time `gorm:"index:idx_readings_sensor_timestamp"`
	Quality         ReadingQuality
}
