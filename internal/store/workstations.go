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

// WorkstationRepository handles workstation document operations
type WorkstationRepository struct {
	col *mongo.Collection
}

// NewWorkstationRepository creates a new workstation repository
func NewWorkstationRepository(s *Store) *WorkstationRepository {
	return &WorkstationRepository{col: s.collection(workstationsCollection)}
}

// Create inserts a new workstation
func (r *WorkstationRepository) Create(ctx context.Context, ws *models.Workstation) error {
	now := time.Now().UTC()
	ws.CreatedAt = now
	ws.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, ws); err != nil {
		return fmt.Errorf("failed to create workstation: %w", err)
	}
	return nil
}

// GetByID retrieves a workstation by ID
func (r *WorkstationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Workstation, error) {
	var ws models.Workstation
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&ws)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("workstation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get workstation: %w", err)
	}
	return &ws, nil
}

// List returns all workstations ordered by line then name
func (r *WorkstationRepository) List(ctx context.Context) ([]*models.Workstation, error) {
	sort := bson.D{{Key: "line", Value: 1}, {Key: "name", Value: 1}}
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to list workstations: %w", err)
	}
	defer cur.Close(ctx)

	out := []*models.Workstation{}
	for cur.Next(ctx) {
		var ws models.Workstation
		if err := cur.Decode(&ws); err != nil {
			return nil, fmt.Errorf("failed to decode workstation: %w", err)
		}
		out = append(out, &ws)
	}
	return out, cur.Err()
}

// Update replaces the mutable fields of a workstation
func (r *WorkstationRepository) Update(ctx context.Context, ws *models.Workstation) error {
	ws.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":        ws.Name,
		"line":        ws.Line,
		"description": ws.Description,
		"status":      ws.Status,
		"updated_at":  ws.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": ws.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update workstation: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("workstation %s: %w", ws.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a workstation by ID
func (r *WorkstationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete workstation: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("workstation %s: %w", id, ErrNotFound)
	}
	return nil
}
