package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
)

// ProfileRepository handles profile document operations
type ProfileRepository struct {
	col *mongo.Collection
}

// NewProfileRepository creates a new profile repository and ensures the
// unique uid index exists. Index creation is idempotent. The unique index
// is what keeps concurrent first sign-ins from creating duplicate
// documents, so a failure here is logged loudly rather than swallowed.
func NewProfileRepository(s *Store, logger *zap.Logger) *ProfileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	col := s.collection(profilesCollection)
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		logger.Warn("profile_index_create_failed",
			zap.String("collection", profilesCollection),
			zap.Error(err),
		)
	}
	return &ProfileRepository{col: col}
}

// Get retrieves a profile by uid
func (r *ProfileRepository) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.col.FindOne(ctx, bson.M{"uid": uid}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("profile %s: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// CreateIfAbsent inserts the profile only when no document exists for its uid.
// Returns the stored profile (existing or newly created) and whether it was
// created by this call. The $setOnInsert upsert guarantees created_at, role
// and status are never overwritten for an existing document.
func (r *ProfileRepository) CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, bool, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"uid":        profile.UID,
			"email":      profile.Email,
			"role":       profile.Role,
			"status":     profile.Status,
			"created_at": now,
			"updated_at": now,
		},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"uid": profile.UID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert profile: %w", err)
	}

	stored, err := r.Get(ctx, profile.UID)
	if err != nil {
		return nil, false, err
	}
	return stored, res.UpsertedCount > 0, nil
}

// UpdateEmail refreshes the mutable email field without touching role,
// status or created_at
func (r *ProfileRepository) UpdateEmail(ctx context.Context, uid, email string) error {
	set := bson.M{"email": email, "updated_at": time.Now().UTC()}
	res, err := r.col.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update profile email: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("profile %s: %w", uid, ErrNotFound)
	}
	return nil
}

// UpdateRoleStatus sets role and/or status for the target uid. Nil fields
// are left untouched; created_at is never written.
func (r *ProfileRepository) UpdateRoleStatus(ctx context.Context, uid string, role *models.Role, status *models.Status) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if role != nil {
		set["role"] = *role
	}
	if status != nil {
		set["status"] = *status
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("profile %s: %w", uid, ErrNotFound)
	}
	return nil
}

// List returns all profiles ordered by email
func (r *ProfileRepository) List(ctx context.Context) ([]*models.UserProfile, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cur.Close(ctx)

	profiles := []*models.UserProfile{}
	for cur.Next(ctx) {
		var p models.UserProfile
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("profile cursor: %w", err)
	}
	return profiles, nil
}
