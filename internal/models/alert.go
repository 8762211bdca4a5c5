package models

import "time"

type AlertType string

const (
	AlertTypeThreshold AlertType = "threshold"
	AlertTypeAnomaly   AlertType = "anomaly"
	AlertTypeOffline   AlertType = "offline"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert lifecycle: created unresolved, mutated exactly once per resolution
// (ResolvedAt is set, never cleared back to nil), never deleted.
type Alert struct {
	ID          string `gorm:"primaryKey"`
	SensorID    string `gorm:"index"`
	Type        AlertType
	Severity    AlertSeverity
	Message     string
	TriggeredAt time.Time
	ResolvedAt  *time.Time
}

// IsActive reports whether the alert has not been resolved yet.
func (a *Alert) IsActive() bool {
	return a.ResolvedAt == nil
}
