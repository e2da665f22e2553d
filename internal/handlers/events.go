package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/store"
	"github.com/holthoefer/qmflow/internal/validation"
)

// DefaultListLimit caps workstation-scoped listings when the client does not
// ask for a limit
const DefaultListLimit = 100

// EventHandler handles shopfloor event requests. Events are append-only.
type EventHandler struct {
	events *store.EventRepository
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *store.EventRepository) *EventHandler {
	return &EventHandler{events: events}
}

// RegisterRoutes registers event routes on the given router.
// The router should already have the /events prefix.
func (h *EventHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEvents).Methods("GET")
	r.HandleFunc("", h.CreateEvent).Methods("POST")
}

// CreateEventRequest represents a create event request
type CreateEventRequest struct {
	WorkstationID string     `json:"workstation_id" validate:"required,uuid4"`
	Kind          string     `json:"kind" validate:"required,event_kind"`
	Note          string     `json:"note" validate:"max=2000"`
	OccurredAt    *time.Time `json:"occurred_at,omitempty"`
}

// ListEvents lists events for a workstation, most recent first
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
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

	events, err := h.events.ListByWorkstation(r.Context(), workstationID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve events")
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// CreateEvent records a new shopfloor event
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	var req CreateEventRequest
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

	ev := &models.Event{
		ID:            uuid.New(),
		WorkstationID: workstationID,
		Kind:          models.EventKind(req.Kind),
		Note:          validation.SanitizeText(req.Note),
		RecordedBy:    session.Profile.UID,
	}
	if req.OccurredAt != nil {
		ev.OccurredAt = req.OccurredAt.UTC()
	}

	if err := h.events.Create(r.Context(), ev); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create event")
		return
	}

	respondJSON(w, http.StatusCreated, ev)
}

// parseWorkstationQuery parses the required workstation_id query parameter,
// writing a 400 on failure
func parseWorkstationQuery(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("workstation_id")
	if raw == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "workstation_id query parameter is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid workstation_id")
		return uuid.Nil, false
	}
	return id, true
}

// parseLimitQuery parses the optional limit query parameter, writing a 400
// on failure. Missing or zero means DefaultListLimit.
func parseLimitQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultListLimit, true
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit < 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid limit")
		return 0, false
	}
	if limit == 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	return limit, true
}
