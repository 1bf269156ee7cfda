package models

import "time"

// Severity is a totally ordered event severity used for correlation weighting.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Weight maps a severity onto the correlation weighting scale. Unknown or
// absent severities land on the neutral 0.5 so they neither attract nor repel.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 1.0
	case SeverityHigh:
		return 0.8
	case SeverityMedium:
		return 0.6
	case SeverityLow:
		return 0.4
	case SeverityInfo:
		return 0.2
	default:
		return 0.5
	}
}

// EventStatus tracks the lifecycle of an event.
type EventStatus string

const (
	EventOpen         EventStatus = "OPEN"
	EventAcknowledged EventStatus = "ACKNOWLEDGED"
	EventResolved     EventStatus = "RESOLVED"
)

// Event is an incident signal attached (possibly loosely) to a configuration
// item. CIID may reference an item absent from the snapshot; such events are
// treated as unlinked rather than rejected.
type Event struct {
	ID        string      `json:"id"`
	Message   string      `json:"message"`
	Severity  Severity    `json:"severity"`
	EventType string      `json:"eventType"`
	Timestamp time.Time   `json:"timestamp"`
	Status    EventStatus `json:"status"`
	CIID      string      `json:"ciId,omitempty"`
}
