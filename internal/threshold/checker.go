package threshold

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/blackroad/sensor-dashboard/internal/alerting"
	"github.com/blackroad/sensor-dashboard/internal/models"
	"github.com/blackroad/sensor-dashboard/internal/registry"
)

// Checker compares a sensor's latest calibrated reading against its static
// [min, max] bounds.
type Checker struct {
	db      *gorm.DB
	sensors *registry.Registry
	alerts  *alerting.Manager
}

func New(db *gorm.DB, sensors *registry.Registry, alerts *alerting.Manager) *Checker {
	return &Checker{db: db, sensors: sensors, alerts: alerts}
}

// Check raises a critical threshold alert when the sensor's most recent
// calibrated value lies strictly outside its bounds. Values equal to a bound
// are in range. Returns (nil, nil) when there is no reading or no breach.
// Each breaching reading raises its own alert; sustained breaches are not
// de-duplicated across calls.
func (c *Checker) Check(sensorID string) (*models.Alert, error) {
	sensor, err := c.sensors.Get(sensorID)
	if err != nil {
		return nil, err
	}

	var reading models.Reading
	err = c.db.
		Where("sensor_id = ?", sensor.ID).
		Order("timestamp DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.StorageError{Op: "fetch latest reading", Err: err}
	}

	value := reading.CalibratedValue

	if value < sensor.MinValue {
		message := fmt.Sprintf("Sensor %s: value %.3f below minimum %g", sensor.Label(), value, sensor.MinValue)
		return c.alerts.Create(sensor.ID, models.AlertTypeThreshold, models.SeverityCritical, message)
	}

	if value > sensor.MaxValue {
		message := fmt.Sprintf("Sensor %s: value %.3f above maximum %g", sensor.Label(), value, sensor.MaxValue)
		return c.alerts.Create(sensor.ID, models.AlertTypeThreshold, models.SeverityCritical, message)
	}

	return nil, nil
}
