package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/profile"
	"github.com/holthoefer/qmflow/internal/validation"
)

// ProfileHandler handles the admin console's profile operations
type ProfileHandler struct {
	admin *profile.AdminService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(admin *profile.AdminService) *ProfileHandler {
	return &ProfileHandler{admin: admin}
}

// RegisterRoutes registers profile routes on the given router.
// The router should already have the /profiles prefix.
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListProfiles).Methods("GET")
	r.HandleFunc("/{uid}", h.UpdateProfile).Methods("PATCH")
}

// UpdateProfileRequest carries the mutable profile fields. Omitted fields
// are left unchanged.
type UpdateProfileRequest struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// ListProfiles lists all profiles, admin only
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(w, r)
	if session == nil {
		return
	}

	profiles, err := h.admin.ListProfiles(r.Context(), session.Profile)
	if err != nil {
		respondProfileError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profiles)
}

// UpdateProfile changes a target profile's role and/or status, admin only
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(w, r)
	if session == nil {
		return
	}

	targetUID := mux.Vars(r)["uid"]

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	update := profile.UpdateRequest{TargetUID: targetUID}
	if req.Role != nil {
		if err := validation.ValidateRole(*req.Role); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", err.Error()))
			return
		}
		role := models.Role(*req.Role)
		update.Role = &role
	}
	if req.Status != nil {
		if err := validation.ValidateStatus(*req.Status); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", err.Error()))
			return
		}
		status := models.Status(*req.Status)
		update.Status = &status
	}

	updated, err := h.admin.UpdateProfile(r.Context(), session.Profile, update)
	if err != nil {
		respondProfileError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
