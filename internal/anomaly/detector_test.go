package anomaly

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackroad/sensor-dashboard/internal/alerting"
	"github.com/blackroad/sensor-dashboard/internal/database"
	"github.com/blackroad/sensor-dashboard/internal/models"
	"github.com/blackroad/sensor-dashboard/internal/registry"
)

func newTestDetector(t *testing.T) (*Detector, *gorm.DB, string) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sensors := registry.New(db)
	sensor, err := sensors.Register(registry.RegisterParams{DeviceID: "dev-1", Type: "temperature", Unit: "°C"})
	if err != nil {
		t.Fatalf("register sensor: %v", err)
	}

	return New(db, alerting.New(db, sensors)), db, sensor.ID
}

// insertWindow writes readings spaced one second apart, ending "now", so all
// of them land inside any window of a minute or more. The last value is the
// detector's "latest" reading.
func insertWindow(t *testing.T, db *gorm.DB, sensorID string, quality models.ReadingQuality, values ...float64) {
	t.Helper()

	base := time.Now().UTC().Add(-time.Duration(len(values)) * time.Second)
	for i, v := range values {
		reading := models.Reading{
			ID:              uuid.NewString(),
			SensorID:        sensorID,
			RawValue:        v,
			CalibratedValue: v,
			Timestamp:       base.Add(time.Duration(i) * time.Second),
			Quality:         quality,
		}
		if err := db.Create(&reading).Error; err != nil {
			t.Fatalf("insert reading: %v", err)
		}
	}
}

// clusteredBaseline is 20 values alternating around 10.0 with a spread of
// 0.1, the reference population for the severity-tier tests.
func clusteredBaseline() []float64 {
	values := make([]float64, 20)
	for i := range values {
		if i%2 == 0 {
			values[i] = 9.9
		} else {
			values[i] = 10.1
		}
	}
	return values
}

func TestDetectInsufficientSample(t *testing.T) {
	detector, db, sensorID := newTestDetector(t)
	insertWindow(t, db, sensorID, models.QualityGood, 1.0, 50.0, 2.0, 99.0)

	alert, err := detector.Detect(sensorID, 60, 2.5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if alert != nil {
		t.Errorf("fewer than 5 readings must never alert, got %+v", alert)
	}
}

func TestDetectErrorReadingsExcludedFromSample(t *testing.T) {
	detector, db, sensorID := newTestDetector(t)
	insertWindow(t, db, sensorID, models.QualityGood, 10.0, 10.1, 9.9, 10.0)
	insertWindow(t, db, sensorID, models.QualityError, 500.0, 600.0)

	alert, err := detector.Detect(sensorID, 60, 2.5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if alert != nil {
		t.Errorf("error readings must not count toward the sample, got %+v", alert)
	}
}

func TestDetectZeroSpread(t *testing.T) {
	detector, db, sensorID := newTestDetector(t)
	insertWindow(t, db, sensorID, models.QualityGood, 10.0, 10.0, 10.0, 10.0, 10.0, 10.0)

	alert, err := detector.Detect(sensorID, 60, 2.5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if alert != nil {
		t.Errorf("zero stddev must never alert, got %+v", alert)
	}
}

func TestDetectSpikeIsCritical(t *testing.T) {
	detector, db, sensorID := newTestDetector(t)
	insertWindow(t, db, sensorID, models.QualityGood, append(clusteredBaseline(), 50.0)...)

	alert, err := detector.Detect(sensorID, 60, 2.5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if alert == nil {
		t.Fatal("expected anomaly alert for spike")
	}
	if alert.Type != models.AlertTypeAnomaly || alert.Severity != models.SeverityCritical {
		t.Errorf("unexpected alert: %+v", alert)
	}
}

// Severity is monotonic in the deviation of the latest value: around the
// 9.9/10.1 baseline, 10.2 stays quiet (z ≈ 1.75), 10.5 is a warning
// (z ≈ 3.22), and 12.0 is critical (z ≈ 4.25) at a threshold of 2.5.
func TestDetectSeverityMonotonic(t *testing.T) {
	cases := []struct {
		name     string
		latest   float64
		severity models.AlertSeverity
	}{
		{name: "within threshold", latest: 10.2, severity: ""},
		{name: "warning tier", latest: 10.5, severity: models.SeverityWarning},
		{name: "critical tier", latest: 12.0, severity: models.SeverityCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			detector, db, sensorID := newTestDetector(t)
			insertWindow(t, db, sensorID, models.QualityGood, append(clusteredBaseline(), tc.latest)...)

			alert, err := detector.Detect(sensorID, 60, 2.5)
			if err != nil {
				t.Fatalf("detect: %v", err)
			}

			if tc.severity == "" {
				if alert != nil {
					t.Fatalf("expected no alert, got %+v", alert)
				}
				return
			}

			if alert == nil {
				t.Fatalf("expected %s alert, got none", tc.severity)
			}
			if alert.Severity != tc.severity {
				t.Errorf("severity: got %s, want %s", alert.Severity, tc.severity)
			}
		})
	}
}

func TestDetectWithDefaults(t *testing.T) {
	detector, db, sensorID := newTestDetector(t)
	insertWindow(t, db, sensorID, models.QualityGood, append(clusteredBaseline(), 50.0)...)

	// No configuration loaded, so the built-in 60-minute / 2.5 defaults apply.
	alert, err := detector.DetectWithDefaults(sensorID)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if alert == nil || alert.Severity != models.SeverityCritical {
		t.Errorf("expected critical alert with default parameters, got %+v", alert)
	}
}

func TestDetectIgnoresReadingsOutsideWindow(t *testing.T) {
	detector, db, sensorID := newTestDetector(t)

	// A wild population two hours back must not influence a 60-minute window.
	old := time.Now().UTC().Add(-2 * time.Hour)
	for i, v := range []float64{0, 100, 0, 100, 0, 100} {
		reading := models.Reading{
			ID:              uuid.NewString(),
			SensorID:        sensorID,
			RawValue:        v,
			CalibratedValue: v,
			Timestamp:       old.Add(time.Duration(i) * time.Second),
			Quality:         models.QualityGood,
		}
		if err := db.Create(&reading).Error; err != nil {
			t.Fatalf("insert reading: %v", err)
		}
	}
	insertWindow(t, db, sensorID, models.QualityGood, 10.0, 10.1, 9.9, 10.0)

	alert, err := detector.Detect(sensorID, 60, 2.5)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if alert != nil {
		t.Errorf("stale readings leaked into the window, got %+v", alert)
	}
}
