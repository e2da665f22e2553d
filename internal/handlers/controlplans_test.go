package handlers

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/holthoefer/qmflow/internal/models"
)

func TestControlPlanResponseIncludesRPN(t *testing.T) {
	t.Parallel()

	cp := &models.ControlPlan{
		ID:          uuid.New(),
		ProcessStep: "Torque check",
		FailureMode: "Under-torqued fastener",
		Severity:    8,
		Occurrence:  3,
		Detection:   4,
	}

	raw, err := json.Marshal(newControlPlanResponse(cp))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if rpn, ok := decoded["rpn"].(float64); !ok || int(rpn) != 96 {
		t.Errorf("Expected rpn 96, got %v", decoded["rpn"])
	}
	if decoded["process_step"] != "Torque check" {
		t.Errorf("Expected process_step to survive embedding, got %v", decoded["process_step"])
	}
}

func TestValidateRPNComponents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		severity   int
		occurrence int
		detection  int
		wantErr    bool
	}{
		{name: "all in range", severity: 1, occurrence: 5, detection: 10},
		{name: "severity too low", severity: 0, occurrence: 5, detection: 5, wantErr: true},
		{name: "occurrence too high", severity: 5, occurrence: 11, detection: 5, wantErr: true},
		{name: "detection negative", severity: 5, occurrence: 5, detection: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateRPNComponents(tt.severity, tt.occurrence, tt.detection)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRPNComponents() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
