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

// ControlPlanRepository handles control plan document operations
type ControlPlanRepository struct {
	col *mongo.Collection
}

// NewControlPlanRepository creates a new control plan repository
func NewControlPlanRepository(s *Store) *ControlPlanRepository {
	return &ControlPlanRepository{col: s.collection(controlPlansCollection)}
}

// Create inserts a new control plan entry
func (r *ControlPlanRepository) Create(ctx context.Context, cp *models.ControlPlan) error {
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, cp); err != nil {
		return fmt.Errorf("failed to create control plan: %w", err)
	}
	return nil
}

// GetByID retrieves a control plan entry by ID
func (r *ControlPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ControlPlan, error) {
	var cp models.ControlPlan
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&cp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("control plan %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get control plan: %w", err)
	}
	return &cp, nil
}

// ListByWorkstation returns control plan entries for a workstation,
// newest first. A nil workstation ID lists all entries.
func (r *ControlPlanRepository) ListByWorkstation(ctx context.Context, workstationID *uuid.UUID) ([]*models.ControlPlan, error) {
	filter := bson.M{}
	if workstationID != nil {
		filter["workstation_id"] = *workstationID
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list control plans: %w", err)
	}
	defer cur.Close(ctx)

	out := []*models.ControlPlan{}
	for cur.Next(ctx) {
		var cp models.ControlPlan
		if err := cur.Decode(&cp); err != nil {
			return nil, fmt.Errorf("failed to decode control plan: %w", err)
		}
		out = append(out, &cp)
	}
	return out, cur.Err()
}

// Update replaces the mutable fields of a control plan entry
func (r *ControlPlanRepository) Update(ctx context.Context, cp *models.ControlPlan) error {
	cp.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"process_step":  cp.ProcessStep,
		"failure_mode":  cp.FailureMode,
		"controls":      cp.Controls,
		"response_plan": cp.ResponsePlan,
		"severity":      cp.Severity,
		"occurrence":    cp.Occurrence,
		"detection":     cp.Detection,
		"updated_at":    cp.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": cp.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update control plan: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("control plan %s: %w", cp.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a control plan entry by ID
func (r *ControlPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete control plan: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("control plan %s: %w", id, ErrNotFound)
	}
	return nil
}
