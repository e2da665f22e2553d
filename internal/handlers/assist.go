package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/services/ai"
	"github.com/holthoefer/qmflow/internal/validation"
)

// AssistHandler handles the natural-language navigation assistant
type AssistHandler struct {
	aiProvider ai.Provider
	logger     *zap.Logger
}

// NewAssistHandler creates a new assist handler. The AI provider may be nil,
// in which case navigation requests report the assistant as unavailable.
func NewAssistHandler(aiProvider ai.Provider, logger *zap.Logger) *AssistHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistHandler{aiProvider: aiProvider, logger: logger}
}

// RegisterRoutes registers assist routes on the given router.
// The router should already have the /assist prefix.
func (h *AssistHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/navigate", h.Navigate).Methods("POST")
}

// NavigateRequest represents a navigation assistant request
type NavigateRequest struct {
	Utterance string `json:"utterance" validate:"required,min=1,max=500"`
}

// NavigateResponse carries the classified destination. A destination of
// "unknown" means the utterance did not match any screen; the client stays
// put and shows the fallback hint.
type NavigateResponse struct {
	Destination string `json:"destination"`
	Utterance   string `json:"utterance"`
}

// Navigate classifies a free-form utterance into an application destination
func (h *AssistHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	if h.aiProvider == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Navigation assistant is not configured")
		return
	}

	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	utterance := validation.SanitizeText(req.Utterance)

	destination, err := h.aiProvider.ClassifyNavigation(r.Context(), utterance)
	if err != nil {
		h.logger.Warn("navigation_classification_failed", zap.Error(err))
		if ai.IsRateLimitError(err) || ai.IsQuotaError(err) {
			respondJSONError(w, http.StatusTooManyRequests, "Too Many Requests", "Navigation assistant is rate limited, try again later")
			return
		}
		// classification failure degrades to the unknown destination
		destination = ai.DestinationUnknown
	}

	respondJSON(w, http.StatusOK, NavigateResponse{
		Destination: destination,
		Utterance:   utterance,
	})
}
