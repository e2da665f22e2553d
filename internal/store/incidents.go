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

// IncidentRepository handles incident document operations
type IncidentRepository struct {
	col *mongo.Collection
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(s *Store) *IncidentRepository {
	return &IncidentRepository{col: s.collection(incidentsCollection)}
}

// Create inserts a new incident
func (r *IncidentRepository) Create(ctx context.Context, inc *models.Incident) error {
	now := time.Now().UTC()
	inc.CreatedAt = now
	inc.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, inc); err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID retrieves an incident by ID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	var inc models.Incident
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&inc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("incident %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return &inc, nil
}

// List returns incidents newest first, optionally filtered by workstation
// and status
func (r *IncidentRepository) List(ctx context.Context, workstationID *uuid.UUID, status *models.IncidentStatus) ([]*models.Incident, error) {
	filter := bson.M{}
	if workstationID != nil {
		filter["workstation_id"] = *workstationID
	}
	if status != nil {
		filter["status"] = *status
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer cur.Close(ctx)

	out := []*models.Incident{}
	for cur.Next(ctx) {
		var inc models.Incident
		if err := cur.Decode(&inc); err != nil {
			return nil, fmt.Errorf("failed to decode incident: %w", err)
		}
		out = append(out, &inc)
	}
	return out, cur.Err()
}

// Update replaces the mutable fields of an incident
func (r *IncidentRepository) Update(ctx context.Context, inc *models.Incident) error {
	inc.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":       inc.Title,
		"description": inc.Description,
		"severity":    inc.Severity,
		"status":      inc.Status,
		"updated_at":  inc.UpdatedAt,
		"resolved_at": inc.ResolvedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": inc.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("incident %s: %w", inc.ID, ErrNotFound)
	}
	return nil
}

// Delete removes an incident by ID
func (r *IncidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("incident %s: %w", id, ErrNotFound)
	}
	return nil
}
