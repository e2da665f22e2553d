package models

import (
	"time"

	"github.com/google/uuid"
)

// Sample represents a measured quality sample taken at a workstation
type Sample struct {
	ID             uuid.UUID `json:"id" bson:"id"`
	WorkstationID  uuid.UUID `json:"workstation_id" bson:"workstation_id"`
	Characteristic string    `json:"characteristic" bson:"characteristic"`
	Value          float64   `json:"value" bson:"value"`
	Unit           string    `json:"unit,omitempty" bson:"unit,omitempty"`
	InSpec         bool      `json:"in_spec" bson:"in_spec"`
	RecordedBy     string    `json:"recorded_by" bson:"recorded_by"`
	TakenAt        time.Time `json:"taken_at" bson:"taken_at"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}
