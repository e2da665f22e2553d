package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/holthoefer/qmflow/internal/models"
)

func TestApplyIncidentStatus(t *testing.T) {
	t.Parallel()

	inc := &models.Incident{
		ID:     uuid.New(),
		Status: models.IncidentStatusOpen,
	}

	applyIncidentStatus(inc, models.IncidentStatusResolved)
	if inc.Status != models.IncidentStatusResolved {
		t.Errorf("Expected status resolved, got %s", inc.Status)
	}
	if inc.ResolvedAt == nil {
		t.Fatal("Expected resolvedAt to be stamped")
	}

	applyIncidentStatus(inc, models.IncidentStatusInvestigating)
	if inc.Status != models.IncidentStatusInvestigating {
		t.Errorf("Expected status investigating, got %s", inc.Status)
	}
	if inc.ResolvedAt != nil {
		t.Error("Expected resolvedAt to be cleared when reopened")
	}
}
