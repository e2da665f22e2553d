package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("not found")

const (
	profilesCollection     = "profiles"
	workstationsCollection = "workstations"
	controlPlansCollection = "control_plans"
	incidentsCollection    = "incidents"
	eventsCollection       = "events"
	notesCollection        = "notes"
	samplesCollection      = "samples"
	attachmentsCollection  = "attachments"
)

// Store wraps the Mongo database handle used by the repositories
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a Mongo connection, pings it and returns the store.
// Caller should call Close on shutdown.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the underlying client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies the store connection is healthy
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}
