package models

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentEntity is the kind of record an attachment belongs to
type AttachmentEntity string

const (
	AttachmentEntityIncident    AttachmentEntity = "incident"
	AttachmentEntityControlPlan AttachmentEntity = "controlplan"
	AttachmentEntityNote        AttachmentEntity = "note"
)

// Attachment is file metadata; the bytes themselves live in object storage
// under ObjectKey.
type Attachment struct {
	ID          uuid.UUID        `json:"id" bson:"id"`
	OwnerUID    string           `json:"owner_uid" bson:"owner_uid"`
	EntityKind  AttachmentEntity `json:"entity_kind" bson:"entity_kind"`
	EntityID    uuid.UUID        `json:"entity_id" bson:"entity_id"`
	ObjectKey   string           `json:"object_key" bson:"object_key"`
	FileName    string           `json:"file_name" bson:"file_name"`
	ContentType string           `json:"content_type" bson:"content_type"`
	Size        int64            `json:"size" bson:"size"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
}
