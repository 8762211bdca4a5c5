package dashboard

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/blackroad/sensor-dashboard/internal/alerting"
	"github.com/blackroad/sensor-dashboard/internal/database"
	"github.com/blackroad/sensor-dashboard/internal/ingest"
	"github.com/blackroad/sensor-dashboard/internal/registry"
	"github.com/blackroad/sensor-dashboard/internal/threshold"
)

type testFixture struct {
	aggregator *Aggregator
	sensors    *registry.Registry
	ingestor   *ingest.Ingestor
	alerts     *alerting.Manager
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sensors := registry.New(db)
	alerts := alerting.New(db, sensors)
	checker := threshold.New(db, sensors, alerts)
	ingestor := ingest.New(db, sensors, checker)

	return &testFixture{
		aggregator: New(sensors, ingestor, alerts),
		sensors:    sensors,
		ingestor:   ingestor,
		alerts:     alerts,
	}
}

func TestSnapshotEmpty(t *testing.T) {
	fixture := newTestFixture(t)

	payload, err := fixture.aggregator.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if payload.TotalSensors != 0 || payload.ActiveAlerts != 0 || payload.CriticalAlerts != 0 {
		t.Errorf("expected empty snapshot, got %+v", payload)
	}
	if _, err := time.Parse(time.RFC3339, payload.GeneratedAt); err != nil {
		t.Errorf("generated_at not RFC3339: %q", payload.GeneratedAt)
	}
}

func TestSnapshotEnrichment(t *testing.T) {
	fixture := newTestFixture(t)

	name := "Room Temp"
	withReading, err := fixture.sensors.Register(registry.RegisterParams{
		DeviceID: "dev-1",
		Type:     "temperature",
		Unit:     "°C",
		Name:     &name,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	bare, err := fixture.sensors.Register(registry.RegisterParams{DeviceID: "dev-1", Type: "humidity", Unit: "%"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := fixture.ingestor.Log(withReading.ID, 22.5, "good"); err != nil {
		t.Fatalf("log: %v", err)
	}

	payload, err := fixture.aggregator.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if payload.TotalSensors != 2 {
		t.Fatalf("total_sensors: got %d, want 2", payload.TotalSensors)
	}

	summaries := make(map[string]SensorSummary, len(payload.Sensors))
	for _, summary := range payload.Sensors {
		summaries[summary.SensorID] = summary
	}

	enriched := summaries[withReading.ID]
	if enriched.Name != "Room Temp" {
		t.Errorf("name: got %q, want Room Temp", enriched.Name)
	}
	if enriched.CurrentValue == nil || *enriched.CurrentValue != 22.5 {
		t.Errorf("current_value: got %v, want 22.5", enriched.CurrentValue)
	}
	if enriched.Stats1H.Count != 1 {
		t.Errorf("stats_1h count: got %d, want 1", enriched.Stats1H.Count)
	}

	empty := summaries[bare.ID]
	if empty.CurrentValue != nil || empty.CurrentQuality != nil || empty.LastReadingAt != nil {
		t.Errorf("sensor without readings should have nil current fields: %+v", empty)
	}
}

func TestSnapshotAlertCounts(t *testing.T) {
	fixture := newTestFixture(t)

	minValue := 0.0
	maxValue := 50.0
	sensor, err := fixture.sensors.Register(registry.RegisterParams{
		DeviceID: "dev-1",
		Type:     "temperature",
		Unit:     "°C",
		MinValue: &minValue,
		MaxValue: &maxValue,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// One critical threshold breach plus one warning offline alert.
	if _, err := fixture.ingestor.Log(sensor.ID, 60.0, "good"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if _, err := fixture.alerts.MarkOffline(sensor.ID); err != nil {
		t.Fatalf("mark offline: %v", err)
	}

	payload, err := fixture.aggregator.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if payload.ActiveAlerts != 2 {
		t.Errorf("active_alerts: got %d, want 2", payload.ActiveAlerts)
	}
	if payload.CriticalAlerts != 1 {
		t.Errorf("critical_alerts: got %d, want 1", payload.CriticalAlerts)
	}
	if len(payload.Alerts) != 2 {
		t.Errorf("alert list: got %d entries, want 2", len(payload.Alerts))
	}
	if payload.Sensors[0].AlertCount != 2 {
		t.Errorf("per-sensor alert_count: got %d, want 2", payload.Sensors[0].AlertCount)
	}
}
