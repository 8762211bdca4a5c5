package dashboard

import (
	"time"

	"github.com/blackroad/sensor-dashboard/internal/alerting"
	"github.com/blackroad/sensor-dashboard/internal/ingest"
	"github.com/blackroad/sensor-dashboard/internal/models"
	"github.com/blackroad/sensor-dashboard/internal/registry"
)

// Aggregator assembles a point-in-time view across every sensor and the
// active alerts. It is a read-only composition and mutates nothing.
type Aggregator struct {
	sensors  *registry.Registry
	readings *ingest.Ingestor
	alerts   *alerting.Manager
}

func New(sensors *registry.Registry, readings *ingest.Ingestor, alerts *alerting.Manager) *Aggregator {
	return &Aggregator{sensors: sensors, readings: readings, alerts: alerts}
}

// Payload is the dashboard report's JSON shape.
type Payload struct {
	GeneratedAt    string            `json:"generated_at"`
	TotalSensors   int               `json:"total_sensors"`
	ActiveAlerts   int               `json:"active_alerts"`
	CriticalAlerts int               `json:"critical_alerts"`
	Sensors        []SensorSummary   `json:"sensors"`
	Alerts         []alerting.Record `json:"alerts"`
}

// SensorSummary is one sensor's slice of the dashboard, enriched with its
// latest reading and a one-hour statistical digest.
type SensorSummary struct {
	SensorID       string       `json:"sensor_id"`
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	Unit           string       `json:"unit"`
	Location       *string      `json:"location"`
	CurrentValue   *float64     `json:"current_value"`
	CurrentQuality *string      `json:"current_quality"`
	LastReadingAt  *string      `json:"last_reading_at"`
	Stats1H        ingest.Stats `json:"stats_1h"`
	AlertCount     int          `json:"alert_count"`
}

func (a *Aggregator) Snapshot() (*Payload, error) {
	sensors, err := a.sensors.List("")
	if err != nil {
		return nil, err
	}

	activeAlerts, err := a.alerts.Active()
	if err != nil {
		return nil, err
	}

	alertsBySensor := make(map[string]int, len(activeAlerts))
	criticalCount := 0
	alertRecords := make([]alerting.Record, 0, len(activeAlerts))
	for _, alert := range activeAlerts {
		alertsBySensor[alert.SensorID]++
		if alert.Severity == models.SeverityCritical {
			criticalCount++
		}
		alertRecords = append(alertRecords, alerting.NewRecord(alert))
	}

	summaries := make([]SensorSummary, 0, len(sensors))
	for _, sensor := range sensors {
		summary := SensorSummary{
			SensorID:   sensor.ID,
			Name:       sensor.Label(),
			Type:       string(sensor.Type),
			Unit:       sensor.Unit,
			Location:   sensor.Location,
			AlertCount: alertsBySensor[sensor.ID],
		}

		current, err := a.readings.Current(sensor.ID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			value := current.CalibratedValue
			quality := string(current.Quality)
			lastReadingAt := current.Timestamp.UTC().Format(time.RFC3339)
			summary.CurrentValue = &value
			summary.CurrentQuality = &quality
			summary.LastReadingAt = &lastReadingAt
		}

		stats, err := a.readings.Stats(sensor.ID, 1)
		if err != nil {
			return nil, err
		}
		summary.Stats1H = stats

		summaries = append(summaries, summary)
	}

	return &Payload{
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		TotalSensors:   len(sensors),
		ActiveAlerts:   len(activeAlerts),
		CriticalAlerts: criticalCount,
		Sensors:        summaries,
		Alerts:         alertRecords,
	}, nil
}
