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

// SampleHandler handles quality sample requests. Samples are append-only
// measurement records.
type SampleHandler struct {
	samples *store.SampleRepository
}

// NewSampleHandler creates a new sample handler
func NewSampleHandler(samples *store.SampleRepository) *SampleHandler {
	return &SampleHandler{samples: samples}
}

// RegisterRoutes registers sample routes on the given router.
// The router should already have the /samples prefix.
func (h *SampleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListSamples).Methods("GET")
	r.HandleFunc("", h.CreateSample).Methods("POST")
}

// CreateSampleRequest represents a create sample request
type CreateSampleRequest struct {
	WorkstationID  string     `json:"workstation_id" validate:"required,uuid4"`
	Characteristic string     `json:"characteristic" validate:"required,min=1,max=300"`
	Value          float64    `json:"value"`
	Unit           string     `json:"unit" validate:"max=50"`
	InSpec         bool       `json:"in_spec"`
	TakenAt        *time.Time `json:"taken_at,omitempty"`
}

// ListSamples lists samples for a workstation, most recent first
func (h *SampleHandler) ListSamples(w http.ResponseWriter, r *http.Request) {
	if session := activeSession(w, r); session == nil {
		return
	}

	workstationID, ok := parseWorkstationQuery(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimitQuery(w, r)
	if !ok {
		return
	}

	samples, err := h.samples.ListByWorkstation(r.Context(), workstationID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve samples")
		return
	}

	respondJSON(w, http.StatusOK, samples)
}

// CreateSample records a new measured sample
func (h *SampleHandler) CreateSample(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	var req CreateSampleRequest
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

	sample := &models.Sample{
		ID:             uuid.New(),
		WorkstationID:  workstationID,
		Characteristic: validation.SanitizeText(req.Characteristic),
		Value:          req.Value,
		Unit:           validation.SanitizeText(req.Unit),
		InSpec:         req.InSpec,
		RecordedBy:     session.Profile.UID,
	}
	if req.TakenAt != nil {
		sample.TakenAt = req.TakenAt.UTC()
	}

	if err := h.samples.Create(r.Context(), sample); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create sample")
		return
	}

	respondJSON(w, http.StatusCreated, sample)
}
