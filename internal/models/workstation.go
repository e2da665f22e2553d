package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkstationStatus represents the operational state of a workstation
type WorkstationStatus string

const (
	WorkstationOperational WorkstationStatus = "operational"
	WorkstationMaintenance WorkstationStatus = "maintenance"
	WorkstationDown        WorkstationStatus = "down"
)

// Workstation represents a shopfloor workstation
type Workstation struct {
	ID          uuid.UUID         `json:"id" bson:"id"`
	Name        string            `json:"name" bson:"name"`
	Line        string            `json:"line" bson:"line"`
	Description string            `json:"description,omitempty" bson:"description,omitempty"`
	Status      WorkstationStatus `json:"status" bson:"status"`
	CreatedBy   string            `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at"`
}
