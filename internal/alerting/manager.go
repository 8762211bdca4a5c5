package alerting

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackroad/sensor-dashboard/internal/models"
	"github.com/blackroad/sensor-dashboard/internal/registry"
)

// Manager owns the alert lifecycle: creation, listing, and resolution.
// Alerts are never deleted.
type Manager struct {
	db      *gorm.DB
	sensors *registry.Registry
}

func New(db *gorm.DB, sensors *registry.Registry) *Manager {
	return &Manager{db: db, sensors: sensors}
}

// Create persists a new unresolved alert for the given sensor.
func (m *Manager) Create(sensorID string, alertType models.AlertType, severity models.AlertSeverity, message string) (*models.Alert, error) {
	alert := models.Alert{
		ID:          uuid.NewString(),
		SensorID:    sensorID,
		Type:        alertType,
		Severity:    severity,
		Message:     message,
		TriggeredAt: time.Now().UTC(),
	}

	if err := m.db.Create(&alert).Error; err != nil {
		return nil, &models.StorageError{Op: "create alert", Err: err}
	}

	slog.Warn("Alert triggered",
		"sensor_id", sensorID,
		"type", string(alertType),
		"severity", string(severity),
		"message", message,
	)

	return &alert, nil
}

// Resolve stamps the alert with the current UTC time. Resolving an already
// resolved alert overwrites the previous resolution timestamp.
func (m *Manager) Resolve(alertID string) (*models.Alert, error) {
	var alert models.Alert

	err := m.db.First(&alert, "id = ?", alertID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Entity: "alert", ID: alertID}
	}
	if err != nil {
		return nil, &models.StorageError{Op: "fetch alert", Err: err}
	}

	now := time.Now().UTC()
	if err := m.db.Model(&alert).Update("resolved_at", now).Error; err != nil {
		return nil, &models.StorageError{Op: "resolve alert", Err: err}
	}

	alert.ResolvedAt = &now
	return &alert, nil
}

// Active returns unresolved alerts, newest first.
func (m *Manager) Active() ([]models.Alert, error) {
	var alerts []models.Alert

	err := m.db.
		Where("resolved_at IS NULL").
		Order("triggered_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, &models.StorageError{Op: "list active alerts", Err: err}
	}

	return alerts, nil
}

// All returns every alert ever raised, newest first.
func (m *Manager) All() ([]models.Alert, error) {
	var alerts []models.Alert

	err := m.db.Order("triggered_at DESC").Find(&alerts).Error
	if err != nil {
		return nil, &models.StorageError{Op: "list alerts", Err: err}
	}

	return alerts, nil
}

// MarkOffline raises an offline warning for the sensor. Repeated calls raise
// repeated alerts; there is no de-duplication against open offline alerts.
func (m *Manager) MarkOffline(sensorID string) (*models.Alert, error) {
	sensor, err := m.sensors.Get(sensorID)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Sensor %s appears offline", sensor.Label())
	return m.Create(sensor.ID, models.AlertTypeOffline, models.SeverityWarning, message)
}

// Record is the JSON shape of an alert on the report surface.
type Record struct {
	ID          string  `json:"id"`
	SensorID    string  `json:"sensor_id"`
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Message     string  `json:"message"`
	TriggeredAt string  `json:"triggered_at"`
	ResolvedAt  *string `json:"resolved_at"`
	IsActive    bool    `json:"is_active"`
}

func NewRecord(alert models.Alert) Record {
	record := Record{
		ID:          alert.ID,
		SensorID:    alert.SensorID,
		Type:        string(alert.Type),
		Severity:    string(alert.Severity),
		Message:     alert.Message,
		TriggeredAt: alert.TriggeredAt.UTC().Format(time.RFC3339),
		IsActive:    alert.IsActive(),
	}

	if alert.ResolvedAt != nil {
		resolvedAt := alert.ResolvedAt.UTC().Format(time.RFC3339)
		record.ResolvedAt = &resolvedAt
	}

	return record
}
