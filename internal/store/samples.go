package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/holthoefer/qmflow/internal/models"
)

// SampleRepository handles quality sample document operations.
// Samples are append-only measurement records.
type SampleRepository struct {
	col *mongo.Collection
}

// NewSampleRepository creates a new sample repository
func NewSampleRepository(s *Store) *SampleRepository {
	return &SampleRepository{col: s.collection(samplesCollection)}
}

// Create inserts a new sample
func (r *SampleRepository) Create(ctx context.Context, sample *models.Sample) error {
	sample.CreatedAt = time.Now().UTC()
	if sample.TakenAt.IsZero() {
		sample.TakenAt = sample.CreatedAt
	}
	if _, err := r.col.InsertOne(ctx, sample); err != nil {
		return fmt.Errorf("failed to create sample: %w", err)
	}
	return nil
}

// ListByWorkstation returns samples for a workstation, most recent first,
// capped at limit
func (r *SampleRepository) ListByWorkstation(ctx context.Context, workstationID uuid.UUID, limit int64) ([]*models.Sample, error) {
	opts := options.Find().SetSort(bson.D{{Key: "taken_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"workstation_id": workstationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	defer cur.Close(ctx)

	out := []*models.Sample{}
	for cur.Next(ctx) {
		var s models.Sample
		if err := cur.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode sample: %w", err)
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}
