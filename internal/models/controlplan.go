package models

import (
	"time"

	"github.com/google/uuid"
)

// ControlPlan is an FMEA-style control plan entry for a workstation process step
type ControlPlan struct {
	ID            uuid.UUID `json:"id" bson:"id"`
	WorkstationID uuid.UUID `json:"workstation_id" bson:"workstation_id"`
	ProcessStep   string    `json:"process_step" bson:"process_step"`
	FailureMode   string    `json:"failure_mode" bson:"failure_mode"`
	Controls      string    `json:"controls" bson:"controls"`
	ResponsePlan  string    `json:"response_plan,omitempty" bson:"response_plan,omitempty"`
	Severity      int       `json:"severity" bson:"severity"`
	Occurrence    int       `json:"occurrence" bson:"occurrence"`
	Detection     int       `json:"detection" bson:"detection"`
	CreatedBy     string    `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// RPN returns the risk priority number (severity x occurrence x detection).
// Derived on read, never stored.
func (c *ControlPlan) RPN() int {
	return c.Severity * c.Occurrence * c.Detection
}
