package anomaly

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/blackroad/sensor-dashboard/internal/alerting"
	"github.com/blackroad/sensor-dashboard/internal/config"
	"github.com/blackroad/sensor-dashboard/internal/models"
)

const (
	// minSampleSize is the smallest window population that yields a
	// statistically usable spread estimate.
	minSampleSize = 5

	DefaultWindowMinutes = 60
	DefaultZThreshold    = 2.5
)

// Detector flags readings that deviate sharply from the recent norm using a
// rolling-window Z-score over calibrated values.
type Detector struct {
	db     *gorm.DB
	alerts *alerting.Manager
}

func New(db *gorm.DB, alerts *alerting.Manager) *Detector {
	return &Detector{db: db, alerts: alerts}
}

// DetectWithDefaults runs Detect with the configured window and threshold,
// falling back to the built-in defaults when no configuration is loaded.
func (d *Detector) DetectWithDefaults(sensorID string) (*models.Alert, error) {
	windowMinutes := config.AppConfig.Anomaly.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = DefaultWindowMinutes
	}

	zThreshold := config.AppConfig.Anomaly.ZThreshold
	if zThreshold <= 0 {
		zThreshold = DefaultZThreshold
	}

	return d.Detect(sensorID, windowMinutes, zThreshold)
}

// Detect examines the sensor's non-error readings in the trailing window.
// The latest reading's Z-score against the window's mean and sample standard
// deviation decides the outcome: above 1.5x the threshold a critical alert
// is raised, above the threshold a warning, otherwise nothing. The latest
// reading is part of the reference population, not held out. A window with
// fewer than five readings or zero spread never alerts.
func (d *Detector) Detect(sensorID string, windowMinutes int, zThreshold float64) (*models.Alert, error) {
	since := time.Now().UTC().Add(-time.Duration(windowMinutes) * time.Minute)

	var values []float64
	err := d.db.
		Model(&models.Reading{}).
		Where("sensor_id = ? AND timestamp >= ? AND quality <> ?", sensorID, since, models.QualityError).
		Order("timestamp ASC").
		Pluck("calibrated_value", &values).Error
	if err != nil {
		return nil, &models.StorageError{Op: "fetch window readings", Err: err}
	}

	if len(values) < minSampleSize {
		return nil, nil
	}

	mean, stddev := meanAndStdDev(values)
	if stddev == 0 {
		return nil, nil
	}

	latest := values[len(values)-1]
	z := math.Abs(latest-mean) / stddev

	if z <= zThreshold {
		return nil, nil
	}

	severity := models.SeverityWarning
	if z > zThreshold*1.5 {
		severity = models.SeverityCritical
	}

	message := fmt.Sprintf("Anomaly: value=%.3f z=%.2f (mean=%.3f std=%.3f)", latest, z, mean, stddev)
	return d.alerts.Create(sensorID, models.AlertTypeAnomaly, severity, message)
}

// meanAndStdDev returns the mean and sample standard deviation (N-1
// denominator) of values.
func meanAndStdDev(values []float64) (float64, float64) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}

	return mean, math.Sqrt(sumSquares / float64(len(values)-1))
}
