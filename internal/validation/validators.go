package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/holthoefer/qmflow/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	register := map[string]validator.Func{
		"profile_role":       validateRole,
		"profile_status":     validateStatus,
		"workstation_status": validateWorkstationStatus,
		"incident_severity":  validateIncidentSeverity,
		"incident_status":    validateIncidentStatus,
		"event_kind":         validateEventKind,
	}
	for tag, fn := range register {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

func validateRole(fl validator.FieldLevel) bool {
	return ValidateRole(fl.Field().String()) == nil
}

func validateStatus(fl validator.FieldLevel) bool {
	return ValidateStatus(fl.Field().String()) == nil
}

func validateWorkstationStatus(fl validator.FieldLevel) bool {
	return ValidateWorkstationStatus(fl.Field().String()) == nil
}

func validateIncidentSeverity(fl validator.FieldLevel) bool {
	return ValidateIncidentSeverity(fl.Field().String()) == nil
}

func validateIncidentStatus(fl validator.FieldLevel) bool {
	return ValidateIncidentStatus(fl.Field().String()) == nil
}

func validateEventKind(fl validator.FieldLevel) bool {
	return ValidateEventKind(fl.Field().String()) == nil
}

// SanitizeText trims whitespace and removes control characters except
// newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}
	return sanitized.String()
}

// ValidateRole validates a profile role string value
func ValidateRole(value string) error {
	switch models.Role(value) {
	case models.RoleUser, models.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("invalid role: %s (must be 'user' or 'admin')", value)
	}
}

// ValidateStatus validates a profile status string value
func ValidateStatus(value string) error {
	switch models.Status(value) {
	case models.StatusActive, models.StatusPendingApproval, models.StatusSuspended:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'active', 'pending_approval', or 'suspended')", value)
	}
}

// ValidateWorkstationStatus validates a workstation status string value
func ValidateWorkstationStatus(value string) error {
	switch models.WorkstationStatus(value) {
	case models.WorkstationOperational, models.WorkstationMaintenance, models.WorkstationDown:
		return nil
	default:
		return fmt.Errorf("invalid workstation status: %s (must be 'operational', 'maintenance', or 'down')", value)
	}
}

// ValidateIncidentSeverity validates an incident severity string value
func ValidateIncidentSeverity(value string) error {
	switch models.IncidentSeverity(value) {
	case models.IncidentSeverityLow, models.IncidentSeverityMedium, models.IncidentSeverityHigh, models.IncidentSeverityCritical:
		return nil
	default:
		return fmt.Errorf("invalid severity: %s (must be 'low', 'medium', 'high', or 'critical')", value)
	}
}

// ValidateIncidentStatus validates an incident status string value
func ValidateIncidentStatus(value string) error {
	switch models.IncidentStatus(value) {
	case models.IncidentStatusOpen, models.IncidentStatusInvestigating, models.IncidentStatusResolved:
		return nil
	default:
		return fmt.Errorf("invalid incident status: %s (must be 'open', 'investigating', or 'resolved')", value)
	}
}

// ValidateEventKind validates an event kind string value
func ValidateEventKind(value string) error {
	switch models.EventKind(value) {
	case models.EventShiftStart, models.EventShiftEnd, models.EventChangeover, models.EventMaintenance, models.EventObservation:
		return nil
	default:
		return fmt.Errorf("invalid event kind: %s", value)
	}
}

// ValidateRPNComponent validates a severity/occurrence/detection rating (1-10)
func ValidateRPNComponent(name string, value int) error {
	if value < 1 || value > 10 {
		return fmt.Errorf("invalid %s: %d (must be between 1 and 10)", name, value)
	}
	return nil
}
