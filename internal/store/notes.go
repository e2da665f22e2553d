package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/holthoefer/qmflow/internal/models"
)

// NoteRepository handles note document operations
type NoteRepository struct {
	col *mongo.Collection
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(s *Store) *NoteRepository {
	return &NoteRepository{col: s.collection(notesCollection)}
}

// Create inserts a new note
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, note); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

// ListByAuthor returns all notes for an author, newest first.
// Notes are private; callers must only pass the requesting user's uid.
func (r *NoteRepository) ListByAuthor(ctx context.Context, authorUID string) ([]*models.Note, error) {
	cur, err := r.col.Find(ctx, bson.M{"author_uid": authorUID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer cur.Close(ctx)

	out := []*models.Note{}
	for cur.Next(ctx) {
		var note models.Note
		if err := cur.Decode(&note); err != nil {
			return nil, fmt.Errorf("failed to decode note: %w", err)
		}
		out = append(out, &note)
	}
	return out, cur.Err()
}

// Update replaces the mutable fields of a note
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	note.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":      note.Title,
		"body":       note.Body,
		"tags":       note.Tags,
		"user_tags":  note.UserTags,
		"tag_status": note.TagStatus,
		"updated_at": note.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": note.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("note %s: %w", note.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a note by ID
func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}

// DistinctTags returns the distinct tags used across an author's notes,
// fed to the AI flow so suggestions prefer existing vocabulary
func (r *NoteRepository) DistinctTags(ctx context.Context, authorUID string) ([]string, error) {
	values, err := r.col.Distinct(ctx, "tags", bson.M{"author_uid": authorUID})
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct tags: %w", err)
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			tags = append(tags, s)
		}
	}
	return tags, nil
}
