package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/store"
	"github.com/holthoefer/qmflow/internal/validation"
)

// IncidentHandler handles incident-related requests
type IncidentHandler struct {
	incidents *store.IncidentRepository
}

// NewIncidentHandler creates a new incident handler
func NewIncidentHandler(incidents *store.IncidentRepository) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

// RegisterRoutes registers incident routes on the given router.
// The router should already have the /incidents prefix.
func (h *IncidentHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListIncidents).Methods("GET")
	r.HandleFunc("", h.CreateIncident).Methods("POST")
	r.HandleFunc("/{id}", h.GetIncident).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateIncident).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteIncident).Methods("DELETE")
	r.HandleFunc("/{id}/resolve", h.ResolveIncident).Methods("POST")
}

// CreateIncidentRequest represents a create incident request
type CreateIncidentRequest struct {
	WorkstationID string `json:"workstation_id" validate:"required,uuid4"`
	Title         string `json:"title" validate:"required,min=1,max=300"`
	Description   string `json:"description" validate:"max=4000"`
	Severity      string `json:"severity" validate:"required,incident_severity"`
}

// UpdateIncidentRequest represents an update incident request
type UpdateIncidentRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4000"`
	Severity    *string `json:"severity,omitempty" validate:"omitempty,incident_severity"`
	Status      *string `json:"status,omitempty" validate:"omitempty,incident_status"`
}

// ListIncidents lists incidents, optionally filtered by the workstation_id
// and status query parameters
func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	if session := activeSession(w, r); session == nil {
		return
	}

	var workstationID *uuid.UUID
	if raw := r.URL.Query().Get("workstation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid workstation_id")
			return
		}
		workstationID = &id
	}

	var status *models.IncidentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		if err := validation.ValidateIncidentStatus(raw); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		s := models.IncidentStatus(raw)
		status = &s
	}

	incidents, err := h.incidents.List(r.Context(), workstationID, status)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve incidents")
		return
	}

	respondJSON(w, http.StatusOK, incidents)
}

// CreateIncident reports a new incident. New incidents always start open.
func (h *IncidentHandler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	workstationID, err := uuid.Parse(req.WorkstationID)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid workstation_id")
		return
	}

	inc := &models.Incident{
		ID:            uuid.New(),
		WorkstationID: workstationID,
		Title:         validation.SanitizeText(req.Title),
		Description:   validation.SanitizeText(req.Description),
		Severity:      models.IncidentSeverity(req.Severity),
		Status:        models.IncidentStatusOpen,
		ReportedBy:    session.Profile.UID,
	}

	if err := h.incidents.Create(r.Context(), inc); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create incident")
		return
	}

	respondJSON(w, http.StatusCreated, inc)
}

// GetIncident retrieves an incident by ID
func (h *IncidentHandler) GetIncident(w http.ResponseWriter, r *http.Request) {
	if session := activeSession(w, r); session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	inc, err := h.incidents.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "incident")
		return
	}

	respondJSON(w, http.StatusOK, inc)
}

// UpdateIncident updates an incident's mutable fields. Moving the status to
// resolved stamps resolvedAt; moving it away clears the stamp.
func (h *IncidentHandler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	inc, err := h.incidents.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "incident")
		return
	}

	if !canMutate(session, inc.ReportedBy) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Only the reporter or an administrator may modify this incident")
		return
	}

	if req.Title != nil {
		inc.Title = validation.SanitizeText(*req.Title)
	}
	if req.Description != nil {
		inc.Description = validation.SanitizeText(*req.Description)
	}
	if req.Severity != nil {
		inc.Severity = models.IncidentSeverity(*req.Severity)
	}
	if req.Status != nil {
		applyIncidentStatus(inc, models.IncidentStatus(*req.Status))
	}

	if err := h.incidents.Update(r.Context(), inc); err != nil {
		respondStoreError(w, err, "incident")
		return
	}

	respondJSON(w, http.StatusOK, inc)
}

// ResolveIncident marks an incident resolved and stamps resolvedAt.
// Resolving an already-resolved incident is a no-op.
func (h *IncidentHandler) ResolveIncident(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	inc, err := h.incidents.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "incident")
		return
	}

	if !canMutate(session, inc.ReportedBy) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Only the reporter or an administrator may resolve this incident")
		return
	}

	if inc.Status != models.IncidentStatusResolved {
		applyIncidentStatus(inc, models.IncidentStatusResolved)
		if err := h.incidents.Update(r.Context(), inc); err != nil {
			respondStoreError(w, err, "incident")
			return
		}
	}

	respondJSON(w, http.StatusOK, inc)
}

// DeleteIncident deletes an incident
func (h *IncidentHandler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	inc, err := h.incidents.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "incident")
		return
	}

	if !canMutate(session, inc.ReportedBy) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Only the reporter or an administrator may delete this incident")
		return
	}

	if err := h.incidents.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err, "incident")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

func applyIncidentStatus(inc *models.Incident, status models.IncidentStatus) {
	inc.Status = status
	if status == models.IncidentStatusResolved {
		now := time.Now().UTC()
		inc.ResolvedAt = &now
	} else {
		inc.ResolvedAt = nil
	}
}
