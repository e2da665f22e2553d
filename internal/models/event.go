package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind represents the kind of shopfloor event
type EventKind string

const (
	EventShiftStart  EventKind = "shift_start"
	EventShiftEnd    EventKind = "shift_end"
	EventChangeover  EventKind = "changeover"
	EventMaintenance EventKind = "maintenance"
	EventObservation EventKind = "observation"
)

// Event represents a logged shopfloor event on a workstation
type Event struct {
	ID            uuid.UUID `json:"id" bson:"id"`
	WorkstationID uuid.UUID `json:"workstation_id" bson:"workstation_id"`
	Kind          EventKind `json:"kind" bson:"kind"`
	Note          string    `json:"note,omitempty" bson:"note,omitempty"`
	RecordedBy    string    `json:"recorded_by" bson:"recorded_by"`
	OccurredAt    time.Time `json:"occurred_at" bson:"occurred_at"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
