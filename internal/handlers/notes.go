package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/queue"
	"github.com/holthoefer/qmflow/internal/store"
	"github.com/holthoefer/qmflow/internal/validation"
)

// NoteHandler handles private note requests. Notes are visible only to
// their author; there is no admin read path.
type NoteHandler struct {
	notes    *store.NoteRepository
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewNoteHandler creates a new note handler. The job queue may be nil, in
// which case tag suggestions are unavailable.
func NewNoteHandler(notes *store.NoteRepository, jobQueue queue.JobQueue, logger *zap.Logger) *NoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteHandler{notes: notes, jobQueue: jobQueue, logger: logger}
}

// RegisterRoutes registers note routes on the given router.
// The router should already have the /notes prefix.
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotes).Methods("GET")
	r.HandleFunc("", h.CreateNote).Methods("POST")
	r.HandleFunc("/{id}", h.GetNote).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateNote).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteNote).Methods("DELETE")
	r.HandleFunc("/{id}/suggest-tags", h.SuggestTags).Methods("POST")
}

// CreateNoteRequest represents a create note request
type CreateNoteRequest struct {
	Title    string   `json:"title" validate:"required,min=1,max=300"`
	Body     string   `json:"body" validate:"required,min=1,max=20000"`
	UserTags []string `json:"user_tags" validate:"omitempty,max=20,dive,min=1,max=100"`
}

// UpdateNoteRequest represents an update note request
type UpdateNoteRequest struct {
	Title    *string   `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Body     *string   `json:"body,omitempty" validate:"omitempty,min=1,max=20000"`
	UserTags *[]string `json:"user_tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=100"`
}

// ListNotes lists the session user's notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	notes, err := h.notes.ListByAuthor(r.Context(), session.Profile.UID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve notes")
		return
	}

	respondJSON(w, http.StatusOK, notes)
}

// CreateNote creates a new note for the session user
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	note := &models.Note{
		ID:        uuid.New(),
		AuthorUID: session.Profile.UID,
		Title:     validation.SanitizeText(req.Title),
		Body:      validation.SanitizeText(req.Body),
		UserTags:  models.CleanTags(req.UserTags),
		TagStatus: models.TagStatusPending,
	}
	note.MergeTags(nil)

	if err := h.notes.Create(r.Context(), note); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create note")
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// GetNote retrieves one of the session user's notes
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	note, ok := h.authorNote(w, r, session.Profile.UID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// UpdateNote updates one of the session user's notes. Changing the body
// resets the tag status so a fresh suggestion run can pick it up.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	note, ok := h.authorNote(w, r, session.Profile.UID)
	if !ok {
		return
	}

	if req.Title != nil {
		note.Title = validation.SanitizeText(*req.Title)
	}
	if req.Body != nil {
		note.Body = validation.SanitizeText(*req.Body)
		note.TagStatus = models.TagStatusPending
	}
	if req.UserTags != nil {
		note.UserTags = models.CleanTags(*req.UserTags)
		note.MergeTags(nil)
	}

	if err := h.notes.Update(r.Context(), note); err != nil {
		respondStoreError(w, err, "note")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// DeleteNote deletes one of the session user's notes
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	note, ok := h.authorNote(w, r, session.Profile.UID)
	if !ok {
		return
	}

	if err := h.notes.Delete(r.Context(), note.ID); err != nil {
		respondStoreError(w, err, "note")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": note.ID.String()})
}

// SuggestTags queues an asynchronous tag-suggestion job for the note.
// Returns 202; the worker updates the note when the suggestion lands.
func (h *NoteHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	if h.jobQueue == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Tag suggestions are not configured")
		return
	}

	note, ok := h.authorNote(w, r, session.Profile.UID)
	if !ok {
		return
	}

	if note.TagStatus == models.TagStatusProcessing {
		respondJSONError(w, http.StatusConflict, "Conflict", "Tag suggestion is already in progress")
		return
	}

	note.TagStatus = models.TagStatusPending
	if err := h.notes.Update(r.Context(), note); err != nil {
		respondStoreError(w, err, "note")
		return
	}

	job := queue.NewJob(queue.JobTypeTagSuggestion, session.Profile.UID, &note.ID)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("tag_job_enqueue_failed",
			zap.String("note_id", note.ID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to queue tag suggestion")
		return
	}

	h.logger.Info("tag_job_enqueued",
		zap.String("note_id", note.ID.String()),
		zap.String("job_id", job.ID.String()))

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     job.ID.String(),
		"tag_status": string(note.TagStatus),
	})
}

// authorNote loads the note at {id} and enforces author scoping. A note
// belonging to someone else reads as not found, never as forbidden.
func (h *NoteHandler) authorNote(w http.ResponseWriter, r *http.Request, authorUID string) (*models.Note, bool) {
	id, ok := parsePathID(w, r)
	if !ok {
		return nil, false
	}

	note, err := h.notes.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "note")
		return nil, false
	}

	if note.AuthorUID != authorUID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "note not found")
		return nil, false
	}

	return note, true
}
