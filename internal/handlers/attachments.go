package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/request"
	"github.com/holthoefer/qmflow/internal/storage"
	"github.com/holthoefer/qmflow/internal/store"
	"github.com/holthoefer/qmflow/internal/validation"
)

// MaxAttachmentSize caps multipart uploads at 10 MB
const MaxAttachmentSize = 10 << 20

// AttachmentHandler handles attachment uploads and presigned downloads.
// Metadata lives in the document store, bytes in object storage.
type AttachmentHandler struct {
	attachments *store.AttachmentRepository
	objects     *storage.AttachmentStore
	logger      *zap.Logger
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(attachments *store.AttachmentRepository, objects *storage.AttachmentStore, logger *zap.Logger) *AttachmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentHandler{attachments: attachments, objects: objects, logger: logger}
}

// RegisterRoutes registers attachment routes on the given router.
// The router should already have the /attachments prefix.
func (h *AttachmentHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListAttachments).Methods("GET")
	r.HandleFunc("", h.UploadAttachment).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteAttachment).Methods("DELETE")
	r.HandleFunc("/{id}/url", h.GetDownloadURL).Methods("GET")
}

// ListAttachments lists attachments for an entity, identified by the
// entity_kind and entity_id query parameters
func (h *AttachmentHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	kind, ok := parseEntityKind(w, r.URL.Query().Get("entity_kind"))
	if !ok {
		return
	}
	entityID, err := uuid.Parse(r.URL.Query().Get("entity_id"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid entity_id")
		return
	}

	attachments, err := h.attachments.ListByEntity(r.Context(), kind, entityID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve attachments")
		return
	}

	if kind == models.AttachmentEntityNote {
		visible := attachments[:0]
		for _, att := range attachments {
			if att.OwnerUID == session.Profile.UID {
				visible = append(visible, att)
			}
		}
		attachments = visible
	}

	respondJSON(w, http.StatusOK, attachments)
}

// UploadAttachment accepts a multipart form with entity_kind, entity_id and
// a file part, stores the bytes in object storage and the metadata in the
// document store
func (h *AttachmentHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAttachmentSize)
	if err := r.ParseMultipartForm(MaxAttachmentSize); err != nil {
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
			fmt.Sprintf("Attachment exceeds maximum size of %d bytes", MaxAttachmentSize))
		return
	}

	kind, ok := parseEntityKind(w, r.FormValue("entity_kind"))
	if !ok {
		return
	}
	entityID, err := uuid.Parse(r.FormValue("entity_id"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid entity_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing file part")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	att := &models.Attachment{
		ID:          uuid.New(),
		OwnerUID:    session.Profile.UID,
		EntityKind:  kind,
		EntityID:    entityID,
		FileName:    validation.SanitizeText(filepath.Base(header.Filename)),
		ContentType: contentType,
		Size:        header.Size,
	}
	att.ObjectKey = fmt.Sprintf("%s/%s/%s", kind, entityID, att.ID)

	if err := h.objects.Upload(r.Context(), att.ObjectKey, file, header.Size, contentType); err != nil {
		h.logger.Error("attachment_upload_failed",
			zap.String("object_key", att.ObjectKey),
			zap.Error(err))
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to store attachment")
		return
	}

	if err := h.attachments.Create(r.Context(), att); err != nil {
		if derr := h.objects.Delete(r.Context(), att.ObjectKey); derr != nil {
			h.logger.Warn("attachment_orphan_cleanup_failed",
				zap.String("object_key", att.ObjectKey),
				zap.Error(derr))
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create attachment")
		return
	}

	respondJSON(w, http.StatusCreated, att)
}

// GetDownloadURL returns a short-lived presigned download URL for an
// attachment
func (h *AttachmentHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	att, ok := h.visibleAttachment(w, r, session)
	if !ok {
		return
	}

	url, err := h.objects.PresignedURL(r.Context(), att.ObjectKey, storage.DefaultPresignExpiry)
	if err != nil {
		h.logger.Error("attachment_presign_failed",
			zap.String("object_key", att.ObjectKey),
			zap.Error(err))
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to generate download URL")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"url":        url,
		"file_name":  att.FileName,
		"expires_in": int(storage.DefaultPresignExpiry.Seconds()),
	})
}

// DeleteAttachment removes an attachment's bytes and metadata
func (h *AttachmentHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	session := activeSession(w, r)
	if session == nil {
		return
	}

	att, ok := h.visibleAttachment(w, r, session)
	if !ok {
		return
	}

	if !canMutate(session, att.OwnerUID) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Only the owner or an administrator may delete this attachment")
		return
	}

	if err := h.objects.Delete(r.Context(), att.ObjectKey); err != nil {
		h.logger.Warn("attachment_object_delete_failed",
			zap.String("object_key", att.ObjectKey),
			zap.Error(err))
	}
	if err := h.attachments.Delete(r.Context(), att.ID); err != nil {
		respondStoreError(w, err, "attachment")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": att.ID.String()})
}

// visibleAttachment loads the attachment at {id} and enforces visibility:
// note attachments are private to their owner, everything else is readable
// by any active user
func (h *AttachmentHandler) visibleAttachment(w http.ResponseWriter, r *http.Request, session *request.Session) (*models.Attachment, bool) {
	id, ok := parsePathID(w, r)
	if !ok {
		return nil, false
	}

	att, err := h.attachments.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "attachment")
		return nil, false
	}

	if att.EntityKind == models.AttachmentEntityNote && att.OwnerUID != session.Profile.UID {
		respondJSONError(w, http.StatusNotFound, "Not Found", "attachment not found")
		return nil, false
	}

	return att, true
}

func parseEntityKind(w http.ResponseWriter, raw string) (models.AttachmentEntity, bool) {
	switch models.AttachmentEntity(raw) {
	case models.AttachmentEntityIncident, models.AttachmentEntityControlPlan, models.AttachmentEntityNote:
		return models.AttachmentEntity(raw), true
	default:
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid entity_kind")
		return "", false
	}
}
