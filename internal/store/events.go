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

// EventRepository handles shopfloor event document operations.
// Events are append-only; there is no update or delete.
type EventRepository struct {
	col *mongo.Collection
}

// NewEventRepository creates a new event repository
func NewEventRepository(s *Store) *EventRepository {
	return &EventRepository{col: s.collection(eventsCollection)}
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, ev *models.Event) error {
	ev.CreatedAt = time.Now().UTC()
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = ev.CreatedAt
	}
	if _, err := r.col.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// ListByWorkstation returns events for a workstation, most recent first,
// capped at limit
func (r *EventRepository) ListByWorkstation(ctx context.Context, workstationID uuid.UUID, limit int64) ([]*models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"workstation_id": workstationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer cur.Close(ctx)

	out := []*models.Event{}
	for cur.Next(ctx) {
		var ev models.Event
		if err := cur.Decode(&ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		out = append(out, &ev)
	}
	return out, cur.Err()
}
