package export

import (
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/blackroad/sensor-dashboard/internal/alerting"
	"github.com/blackroad/sensor-dashboard/internal/ingest"
	"github.com/blackroad/sensor-dashboard/internal/models"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Exporter serializes time series and alert history for downstream
// consumers. Field names and CSV column order are a compatibility contract.
type Exporter struct {
	readings *ingest.Ingestor
	alerts   *alerting.Manager
}

func New(readings *ingest.Ingestor, alerts *alerting.Manager) *Exporter {
	return &Exporter{readings: readings, alerts: alerts}
}

type timeseriesPoint struct {
	Timestamp       string  `json:"timestamp"`
	RawValue        float64 `json:"raw_value"`
	CalibratedValue float64 `json:"calibrated_value"`
	Quality         string  `json:"quality"`
}

// Timeseries renders the sensor's readings from the trailing window of the
// given length as a JSON array or as CSV with columns
// timestamp,raw_value,calibrated_value,quality.
func (e *Exporter) Timeseries(sensorID string, hours int, format string) (string, error) {
	readings, err := e.readings.History(sensorID, hours, "")
	if err != nil {
		return "", err
	}

	switch format {
	case FormatCSV:
		return renderCSV(readings)
	case FormatJSON:
		return renderJSON(readings)
	default:
		return "", &models.ValidationError{Field: "format", Msg: "unknown export format: " + format}
	}
}

func renderCSV(readings []models.Reading) (string, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"timestamp", "raw_value", "calibrated_value", "quality"}); err != nil {
		return "", err
	}

	for _, reading := range readings {
		record := []string{
			reading.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(reading.RawValue, 'f', -1, 64),
			strconv.FormatFloat(reading.CalibratedValue, 'f', -1, 64),
			string(reading.Quality),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func renderJSON(readings []models.Reading) (string, error) {
	points := make([]timeseriesPoint, 0, len(readings))
	for _, reading := range readings {
		points = append(points, timeseriesPoint{
			Timestamp:       reading.Timestamp.UTC().Format(time.RFC3339),
			RawValue:        reading.RawValue,
			CalibratedValue: reading.CalibratedValue,
			Quality:         string(reading.Quality),
		})
	}

	output, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return "", err
	}

	return string(output), nil
}

// Alerts renders the active alerts, or the full history when activeOnly is
// false, as a JSON array.
func (e *Exporter) Alerts(activeOnly bool) (string, error) {
	var (
		alerts []models.Alert
		err    error
	)
	if activeOnly {
		alerts, err = e.alerts.Active()
	} else {
		alerts, err = e.alerts.All()
	}
	if err != nil {
		return "", err
	}

	records := make([]alerting.Record, 0, len(alerts))
	for _, alert := range alerts {
		records = append(records, alerting.NewRecord(alert))
	}

	output, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}

	return string(output), nil
}
