package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/services/ai"
	"github.com/holthoefer/qmflow/internal/store"
	"github.com/holthoefer/qmflow/internal/validation"
)

// ControlPlanHandler handles FMEA control plan requests
type ControlPlanHandler struct {
	plans      *store.ControlPlanRepository
	aiProvider ai.Provider
	logger     *zap.Logger
}

// NewControlPlanHandler creates a new control plan handler. The AI provider
// may be nil, in which case response-plan suggestions are unavailable.
func NewControlPlanHandler(plans *store.ControlPlanRepository, aiProvider ai.Provider, logger *zap.Logger) *ControlPlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ControlPlanHandler{plans: plans, aiProvider: aiProvider, logger: logger}
}

// RegisterRoutes registers control plan routes on the given router.
// The router should already have the /controlplans prefix.
func (h *ControlPlanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListControlPlans).Methods("GET")
	r.HandleFunc("", h.CreateControlPlan).Methods("POST")
	r.HandleFunc("/{id}", h.GetControlPlan).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateControlPlan).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteControlPlan).Methods("DELETE")
	r.HandleFunc("/{id}/suggest-response", h.SuggestResponsePlan).Methods("POST")
}

// CreateControlPlanRequest represents a create control plan request
type CreateControlPlanRequest struct {
	WorkstationID string `json:"workstation_id" validate:"required,uuid4"`
	ProcessStep   string `json:"process_step" validate:"required,min=1,max=500"`
	FailureMode   string `json:"failure_mode" validate:"required,min=1,max=500"`
	Controls      string `json:"controls" validate:"max=2000"`
	ResponsePlan  string `json:"response_plan" validate:"max=4000"`
	Severity      int    `json:"severity" validate:"required"`
	Occurrence    int    `json:"occurrence" validate:"required"`
	Detection     int    `json:"detection" validate:"required"`
}

// UpdateControlPlanRequest represents an update control plan request
type UpdateControlPlanRequest struct {
	ProcessStep  *string `json:"process_step,omitempty" validate:"omitempty,min=1,max=500"`
	FailureMode  *string `json:"failure_mode,omitempty" validate:"omitempty,min=1,max=500"`
	Controls     *string `json:"controls,omitempty" validate:"omitempty,max=2000"`
	ResponsePlan *string `json:"response_plan,omitempty" validate:"omitempty,max=4000"`
	Severity     *int    `json:"severity,omitempty"`
	Occurrence   *int    `json:"occurrence,omitempty"`
	Detection    *int    `json:"detection,omitempty"`
}

// controlPlanResponse carries a control plan together with its derived RPN
type controlPlanResponse struct {
	*models.ControlPlan
	RPN int `json:"rpn"`
}

func newControlPlanResponse(cp *models.ControlPlan) controlPlanResponse {
	return controlPlanResponse{ControlPlan: cp, RPN: cp.RPN()}
}

// ListControlPlans lists control plan entries, optionally filtered by
// the workstation_id query parameter
func (h *ControlPlanHandler) ListControlPlans(w http.ResponseWriter, r *http.Request) {
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

	plans, err := h.plans.ListByWorkstation(r.Context(), workstationID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve control plans")
		return
	}

	out := make([]controlPlanResponse, 0, len(plans))
	for _, cp := range plans {
		out = append(out, newControlPlanResponse(cp))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateControlPlan creates a new control plan entry
func (h *ControlPlanHandler) CreateControlPlan(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	var req CreateControlPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := validateRPNComponents(req.Severity, req.Occurrence, req.Detection); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	workstationID, err := uuid.Parse(req.WorkstationID)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid workstation_id")
		return
	}

	cp := &models.ControlPlan{
		ID:            uuid.New(),
		WorkstationID: workstationID,
		ProcessStep:   validation.SanitizeText(req.ProcessStep),
		FailureMode:   validation.SanitizeText(req.FailureMode),
		Controls:      validation.SanitizeText(req.Controls),
		ResponsePlan:  validation.SanitizeText(req.ResponsePlan),
		Severity:      req.Severity,
		Occurrence:    req.Occurrence,
		Detection:     req.Detection,
		CreatedBy:     session.Profile.UID,
	}

	if err := h.plans.Create(r.Context(), cp); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create control plan")
		return
	}

	respondJSON(w, http.StatusCreated, newControlPlanResponse(cp))
}

// GetControlPlan retrieves a control plan entry by ID
func (h *ControlPlanHandler) GetControlPlan(w http.ResponseWriter, r *http.Request) {
	if session := activeSession(w, r); session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	cp, err := h.plans.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "control plan")
		return
	}

	respondJSON(w, http.StatusOK, newControlPlanResponse(cp))
}

// UpdateControlPlan updates a control plan's mutable fields
func (h *ControlPlanHandler) UpdateControlPlan(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	var req UpdateControlPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cp, err := h.plans.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "control plan")
		return
	}

	if !canMutate(session, cp.CreatedBy) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Only the creator or an administrator may modify this control plan")
		return
	}

	if req.ProcessStep != nil {
		cp.ProcessStep = validation.SanitizeText(*req.ProcessStep)
	}
	if req.FailureMode != nil {
		cp.FailureMode = validation.SanitizeText(*req.FailureMode)
	}
	if req.Controls != nil {
		cp.Controls = validation.SanitizeText(*req.Controls)
	}
	if req.ResponsePlan != nil {
		cp.ResponsePlan = validation.SanitizeText(*req.ResponsePlan)
	}
	if req.Severity != nil {
		cp.Severity = *req.Severity
	}
	if req.Occurrence != nil {
		cp.Occurrence = *req.Occurrence
	}
	if req.Detection != nil {
		cp.Detection = *req.Detection
	}
	if err := validateRPNComponents(cp.Severity, cp.Occurrence, cp.Detection); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.plans.Update(r.Context(), cp); err != nil {
		respondStoreError(w, err, "control plan")
		return
	}

	respondJSON(w, http.StatusOK, newControlPlanResponse(cp))
}

// DeleteControlPlan deletes a control plan entry
func (h *ControlPlanHandler) DeleteControlPlan(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	cp, err := h.plans.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "control plan")
		return
	}

	if !canMutate(session, cp.CreatedBy) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Only the creator or an administrator may delete this control plan")
		return
	}

	if err := h.plans.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err, "control plan")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

// SuggestResponsePlan asks the AI provider for a response-plan draft based on
// the entry's failure mode and current controls. The draft is returned for
// review, not persisted.
func (h *ControlPlanHandler) SuggestResponsePlan(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	if h.aiProvider == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "AI suggestions are not configured")
		return
	}

	id, ok := parsePathID(w, r)
	if !ok {
		return
	}

	cp, err := h.plans.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "control plan")
		return
	}

	plan, err := h.aiProvider.SuggestResponsePlan(r.Context(), cp)
	if err != nil {
		h.logger.Error("response_plan_suggestion_failed",
			zap.String("control_plan_id", id.String()),
			zap.Error(err))
		if ai.IsRateLimitError(err) || ai.IsQuotaError(err) {
			respondJSONError(w, http.StatusTooManyRequests, "Too Many Requests", "AI provider is rate limited, try again later")
			return
		}
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to generate response plan")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"response_plan": plan})
}

func validateRPNComponents(severity, occurrence, detection int) error {
	if err := validation.ValidateRPNComponent("severity", severity); err != nil {
		return err
	}
	if err := validation.ValidateRPNComponent("occurrence", occurrence); err != nil {
		return err
	}
	return validation.ValidateRPNComponent("detection", detection)
}
