package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/holthoefer/qmflow/internal/models"
)

// AttachmentRepository handles attachment metadata; bytes live in object storage
type AttachmentRepository struct {
	col *mongo.Collection
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(s *Store) *AttachmentRepository {
	return &AttachmentRepository{col: s.collection(attachmentsCollection)}
}

// Create inserts attachment metadata
func (r *AttachmentRepository) Create(ctx context.Context, att *models.Attachment) error {
	att.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, att); err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return nil
}

// GetByID retrieves attachment metadata by ID
func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var att models.Attachment
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&att)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("attachment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &att, nil
}

// ListByEntity returns attachments for an entity
func (r *AttachmentRepository) ListByEntity(ctx context.Context, kind models.AttachmentEntity, entityID uuid.UUID) ([]*models.Attachment, error) {
	cur, err := r.col.Find(ctx, bson.M{"entity_kind": kind, "entity_id": entityID})
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer cur.Close(ctx)

	out := []*models.Attachment{}
	for cur.Next(ctx) {
		var att models.Attachment
		if err := cur.Decode(&att); err != nil {
			return nil, fmt.Errorf("failed to decode attachment: %w", err)
		}
		out = append(out, &att)
	}
	return out, cur.Err()
}

// Delete removes attachment metadata by ID
func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("attachment %s: %w", id, ErrNotFound)
	}
	return nil
}
