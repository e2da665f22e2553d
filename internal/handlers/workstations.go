package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/store"
	"github.com/holthoefer/qmflow/internal/validation"
)

// WorkstationHandler handles workstation-related requests
type WorkstationHandler struct {
	workstations *store.WorkstationRepository
}

// NewWorkstationHandler creates a new workstation handler
func NewWorkstationHandler(workstations *store.WorkstationRepository) *WorkstationHandler {
	return &WorkstationHandler{workstations: workstations}
}

// RegisterRoutes registers workstation routes on the given router.
// The router should already have the /workstations prefix.
func (h *WorkstationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListWorkstations).Methods("GET")
	r.HandleFunc("", h.CreateWorkstation).Methods("POST")
	r.HandleFunc("/{id}", h.GetWorkstation).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateWorkstation).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteWorkstation).Methods("DELETE")
}

// CreateWorkstationRequest represents a create workstation request
type CreateWorkstationRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Line        string `json:"line" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      string `json:"status" validate:"omitempty,workstation_status"`
}

// UpdateWorkstationRequest represents an update workstation request
type UpdateWorkstationRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Line        *string `json:"line,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,workstation_status"`
}

// ListWorkstations lists all workstations
func (h *WorkstationHandler) ListWorkstations(w http.ResponseWriter, r *http.Request) {
	if session := activeSession(w, r); session == nil {
		return
	}

	workstations, err := h.workstations.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve workstations")
		return
	}

	respondJSON(w, http.StatusOK, workstations)
}

// CreateWorkstation creates a new workstation
func (h *WorkstationHandler) CreateWorkstation(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	var req CreateWorkstationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	status := models.WorkstationStatus(req.Status)
	if req.Status == "" {
		status = models.WorkstationOperational
	}

	ws := &models.Workstation{
		ID:          uuid.New(),
		Name:        validation.SanitizeText(req.Name),
		Line:        validation.SanitizeText(req.Line),
		Description: validation.SanitizeText(req.Description),
		Status:      status,
		CreatedBy:   session.Profile.UID,
	}

	if err := h.workstations.Create(r.Context(), ws); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create workstation")
		return
	}

	respondJSON(w, http.StatusCreated, ws)
}

// GetWorkstation retrieves a workstation by ID
func (h *WorkstationHandler) GetWorkstation(w http.ResponseWriter, r *http.Request) {
	if session := activeSession(w, r); session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	ws, err := h.workstations.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "workstation")
		return
	}

	respondJSON(w, http.StatusOK, ws)
}

// UpdateWorkstation updates a workstation's mutable fields
func (h *WorkstationHandler) UpdateWorkstation(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	var req UpdateWorkstationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	ws, err := h.workstations.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "workstation")
		return
	}

	if !canMutate(session, ws.CreatedBy) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Only the creator or an administrator may modify this workstation")
		return
	}

	if req.Name != nil {
		ws.Name = validation.SanitizeText(*req.Name)
	}
	if req.Line != nil {
		ws.Line = validation.SanitizeText(*req.Line)
	}
	if req.Description != nil {
		ws.Description = validation.SanitizeText(*req.Description)
	}
	if req.Status != nil {
		ws.Status = models.WorkstationStatus(*req.Status)
	}

	if err := h.workstations.Update(r.Context(), ws); err != nil {
		respondStoreError(w, err, "workstation")
		return
	}

	respondJSON(w, http.StatusOK, ws)
}

// DeleteWorkstation deletes a workstation
func (h *WorkstationHandler) DeleteWorkstation(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	ws, err := h.workstations.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "workstation")
		return
	}

	if !canMutate(session, ws.CreatedBy) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Only the creator or an administrator may delete this workstation")
		return
	}

	if err := h.workstations.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err, "workstation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

// respondDecodeError maps JSON decode failures, including the request size cap
func respondDecodeError(w http.ResponseWriter, err error) {
	if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
		return
	}
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
}

// respondValidationError surfaces the first field violation
func respondValidationError(w http.ResponseWriter, err error) {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
			return
		}
	}
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
}
