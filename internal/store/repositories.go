package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/holthoefer/qmflow/internal/models"
)

// ProfileStore defines the profile operations consumed by the lifecycle
// manager and admin service. The interface enables mock implementations
// in tests.
type ProfileStore interface {
	Get(ctx context.Context, uid string) (*models.UserProfile, error)
	CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, bool, error)
	UpdateEmail(ctx context.Context, uid, email string) error
	UpdateRoleStatus(ctx context.Context, uid string, role *models.Role, status *models.Status) error
	List(ctx context.Context) ([]*models.UserProfile, error)
}

// NoteStore defines the note operations consumed by the tag-suggestion worker
type NoteStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	DistinctTags(ctx context.Context, authorUID string) ([]string, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ProfileStore = (*ProfileRepository)(nil)
	_ NoteStore    = (*NoteRepository)(nil)
)
