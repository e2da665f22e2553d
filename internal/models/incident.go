package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentSeverity represents how serious an incident is
type IncidentSeverity string

const (
	IncidentSeverityLow      IncidentSeverity = "low"
	IncidentSeverityMedium   IncidentSeverity = "medium"
	IncidentSeverityHigh     IncidentSeverity = "high"
	IncidentSeverityCritical IncidentSeverity = "critical"
)

// IncidentStatus represents the lifecycle state of an incident
type IncidentStatus string

const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

// Incident represents a quality incident reported against a workstation
type Incident struct {
	ID            uuid.UUID        `json:"id" bson:"id"`
	WorkstationID uuid.UUID        `json:"workstation_id" bson:"workstation_id"`
	Title         string           `json:"title" bson:"title"`
	Description   string           `json:"description,omitempty" bson:"description,omitempty"`
	Severity      IncidentSeverity `json:"severity" bson:"severity"`
	Status        IncidentStatus   `json:"status" bson:"status"`
	ReportedBy    string           `json:"reported_by" bson:"reported_by"`
	CreatedAt     time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" bson:"updated_at"`
	ResolvedAt    *time.Time       `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}
