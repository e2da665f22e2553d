package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/profile"
	"github.com/holthoefer/qmflow/internal/request"
	"github.com/holthoefer/qmflow/internal/store"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	sanitized := message
	if len(sanitized) > 200 {
		sanitized = sanitized[:200] + "..."
	}
	return sanitized
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	sanitizedMessage := sanitizeErrorMessage(message)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizedMessage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondProfileError maps the profile error taxonomy to HTTP responses
func respondProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, profile.ErrForbidden):
		respondJSONError(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, profile.ErrValidation):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, profile.ErrUnavailable):
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Profile store unavailable")
	default:
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
	}
}

// sessionFrom returns the request session or writes a 401
func sessionFrom(w http.ResponseWriter, r *http.Request) *request.Session {
	session := request.SessionFromContext(r)
	if session == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Session not found in context")
		return nil
	}
	return session
}

// activeSession returns the session when the caller holds an active profile,
// otherwise writes the appropriate error. Suspended and pending users see 403
// so the client can route them to their gate destination.
func activeSession(w http.ResponseWriter, r *http.Request) *request.Session {
	session := sessionFrom(w, r)
	if session == nil {
		return nil
	}
	if session.Profile == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Profile store unavailable")
		return nil
	}
	if session.Profile.Status != models.StatusActive {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Profile is not active")
		return nil
	}
	return session
}

// parsePathID parses the {id} path variable, writing a 400 on failure
func parsePathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondStoreError maps store errors to HTTP responses without leaking
// internals; entity names the record kind for the 404 message
func respondStoreError(w http.ResponseWriter, err error, entity string) {
	if errors.Is(err, store.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "Not Found", entity+" not found")
		return
	}
	respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to access "+entity)
}

// canMutate reports whether the session may modify a record created by
// createdBy. Owners and active admins may; everyone else may not.
func canMutate(session *request.Session, createdBy string) bool {
	if session == nil || session.Profile == nil {
		return false
	}
	return session.Profile.UID == createdBy || session.IsActiveAdmin()
}
