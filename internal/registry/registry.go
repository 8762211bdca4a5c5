package registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackroad/sensor-dashboard/internal/models"
)

// Registry manages sensor metadata. It holds no state of its own between
// calls; everything lives in the store.
type Registry struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// RegisterParams carries the inputs for a new sensor. MinValue and MaxValue
// are optional; when nil the per-type default bounds apply.
type RegisterParams struct {
	DeviceID          string
	Type              string
	Unit              string
	MinValue          *float64
	MaxValue          *float64
	CalibrationOffset float64
	Name              *string
	Location          *string
}

func (r *Registry) Register(params RegisterParams) (*models.Sensor, error) {
	sensorType, err := models.ParseSensorType(params.Type)
	if err != nil {
		return nil, err
	}

	bounds := models.DefaultBounds[sensorType]
	minValue := bounds.Min
	maxValue := bounds.Max
	if params.MinValue != nil {
		minValue = *params.MinValue
	}
	if params.MaxValue != nil {
		maxValue = *params.MaxValue
	}

	if minValue >= maxValue {
		return nil, &models.ValidationError{
			Field: "bounds",
			Msg:   fmt.Sprintf("min_value %g must be less than max_value %g", minValue, maxValue),
		}
	}

	sensor := models.Sensor{
		ID:                uuid.NewString(),
		DeviceID:          params.DeviceID,
		Type:              sensorType,
		Unit:              params.Unit,
		MinValue:          minValue,
		MaxValue:          maxValue,
		CalibrationOffset: params.CalibrationOffset,
		Name:              params.Name,
		Location:          params.Location,
	}

	if err := r.db.Create(&sensor).Error; err != nil {
		return nil, &models.StorageError{Op: "create sensor", Err: err}
	}

	return &sensor, nil
}

func (r *Registry) Get(sensorID string) (*models.Sensor, error) {
	var sensor models.Sensor

	err := r.db.First(&sensor, "id = ?", sensorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "sensor", ID: sensorID}
	}
	if err != nil {
		return nil, &models.StorageError{Op: "fetch sensor", Err: err}
	}

	return &sensor, nil
}

// List returns all sensors, or only those belonging to deviceID when it is
// non-empty, in a stable (device_id, id) order.
func (r *Registry) List(deviceID string) ([]models.Sensor, error) {
	query := r.db.Order("device_id, id")
	if deviceID != "" {
		query = query.Where("device_id = ?", deviceID)
	}

	var sensors []models.Sensor
	if err := query.Find(&sensors).Error; err != nil {
		return nil, &models.StorageError{Op: "list sensors", Err: err}
	}

	return sensors, nil
}

// UpdateCalibration persists a new calibration offset. Past readings keep
// the calibrated values computed with the offset in force when they were
// logged.
func (r *Registry) UpdateCalibration(sensorID string, offset float64) (*models.Sensor, error) {
	sensor, err := r.Get(sensorID)
	if err != nil {
		return nil, err
	}

	err = r.db.Model(sensor).Update("calibration_offset", offset).Error
	if err != nil {
		return nil, &models.StorageError{Op: "update calibration", Err: err}
	}

	sensor.CalibrationOffset = offset
	return sensor, nil
}
