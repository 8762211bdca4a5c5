package ingest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackroad/sensor-dashboard/internal/models"
	"github.com/blackroad/sensor-dashboard/internal/registry"
	"github.com/blackroad/sensor-dashboard/internal/threshold"
)

// Ingestor records calibrated readings. It is the single synchronous entry
// point for telemetry and fans out to the threshold checker after every
// successful write.
type Ingestor struct {
	db      *gorm.DB
	sensors *registry.Registry
	checker *threshold.Checker
}

func New(db *gorm.DB, sensors *registry.Registry, checker *threshold.Checker) *Ingestor {
	return &Ingestor{db: db, sensors: sensors, checker: checker}
}

// Log stores a reading with calibrated_value = raw + the sensor's current
// calibration offset, then runs the threshold checker on it. The reading
// write and any alert write are independent transactions: a checker failure
// is returned alongside the committed reading, never rolling it back.
// Anomaly detection is not triggered here.
func (i *Ingestor) Log(sensorID string, rawValue float64, quality string) (*models.Reading, error) {
	sensor, err := i.sensors.Get(sensorID)
	if err != nil {
		return nil, err
	}

	parsedQuality, err := models.ParseReadingQuality(quality)
	if err != nil {
		return nil, err
	}

	reading := models.Reading{
		ID:              uuid.NewString(),
		SensorID:        sensor.ID,
		RawValue:        rawValue,
		CalibratedValue: rawValue + sensor.CalibrationOffset,
		Timestamp:       time.Now().UTC(),
		Quality:         parsedQuality,
	}

	if err := i.db.Create(&reading).Error; err != nil {
		return nil, &models.StorageError{Op: "create reading", Err: err}
	}

	if _, err := i.checker.Check(sensor.ID); err != nil {
		// The reading is already committed and stays committed; the
		// caller still has to learn the alert was not persisted.
		return &reading, fmt.Errorf("threshold check after ingestion: %w", err)
	}

	return &reading, nil
}

// Entry is one item of a batch submission.
type Entry struct {
	SensorID string
	Value    float64
	Quality  string
}

// BatchLog applies Log to each entry in order. It is best-effort: readings
// committed before a failure stay committed, the returned slice holds
// exactly the committed readings, and the error names the failing index.
func (i *Ingestor) BatchLog(entries []Entry) ([]*models.Reading, error) {
	readings := make([]*models.Reading, 0, len(entries))

	for index, entry := range entries {
		quality := entry.Quality
		if quality == "" {
			quality = string(models.QualityGood)
		}

		reading, err := i.Log(entry.SensorID, entry.Value, quality)
		if reading != nil {
			// A reading paired with an error is still committed; only
			// its alert write failed.
			readings = append(readings, reading)
		}
		if err != nil {
			return readings, fmt.Errorf("batch entry %d: %w", index, err)
		}
	}

	return readings, nil
}

// Current returns the sensor's most recent reading, or nil when it has none.
func (i *Ingestor) Current(sensorID string) (*models.Reading, error) {
	var reading models.Reading

	err := i.db.
		Where("sensor_id = ?", sensorID).
		Order("timestamp DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.StorageError{Op: "fetch current reading", Err: err}
	}

	return &reading, nil
}

// History returns readings from the trailing window of the given length in
// ascending timestamp order, optionally filtered to a single quality.
func (i *Ingestor) History(sensorID string, hours int, qualityFilter string) ([]models.Reading, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	query := i.db.
		Where("sensor_id = ? AND timestamp >= ?", sensorID, since).
		Order("timestamp ASC")
	if qualityFilter != "" {
		parsedQuality, err := models.ParseReadingQuality(qualityFilter)
		if err != nil {
			return nil, err
		}
		query = query.Where("quality = ?", parsedQuality)
	}

	var readings []models.Reading
	if err := query.Find(&readings).Error; err != nil {
		return nil, &models.StorageError{Op: "fetch reading history", Err: err}
	}

	return readings, nil
}

// Stats summarizes the calibrated values of non-error readings in the
// trailing window.
type Stats struct {
	Count  int      `json:"count"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Avg    *float64 `json:"avg"`
	StdDev *float64 `json:"stddev"`
}

func (i *Ingestor) Stats(sensorID string, hours int) (Stats, error) {
	readings, err := i.History(sensorID, hours, "")
	if err != nil {
		return Stats{}, err
	}

	var values []float64
	for _, reading := range readings {
		if reading.Quality == models.QualityError {
			continue
		}
		values = append(values, reading.CalibratedValue)
	}

	if len(values) == 0 {
		return Stats{}, nil
	}

	minValue := values[0]
	maxValue := values[0]
	sum := 0.0
	for _, v := range values {
		minValue = math.Min(minValue, v)
		maxValue = math.Max(maxValue, v)
		sum += v
	}

	mean := sum / float64(len(values))
	stddev := sampleStdDev(values, mean)

	avg := round4(mean)
	std := round4(stddev)
	return Stats{
		Count:  len(values),
		Min:    &minValue,
		Max:    &maxValue,
		Avg:    &avg,
		StdDev: &std,
	}, nil
}

// sampleStdDev computes the sample standard deviation (N-1 denominator),
// returning 0 for fewer than two values.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}

	return math.Sqrt(sumSquares / float64(len(values)-1))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
