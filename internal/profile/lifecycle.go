package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/store"
)

// Lifecycle ensures a profile document exists for every authenticated
// identity. It decides default role/status at first sign-in and refreshes
// mutable fields afterwards; it never touches role, status or created_at
// for an existing profile.
type Lifecycle struct {
	profiles            store.ProfileStore
	bootstrapAdminEmail string
	logger              *zap.Logger
}

// NewLifecycle creates a lifecycle manager. bootstrapAdminEmail may be empty,
// in which case no account is granted admin at signup.
func NewLifecycle(profiles store.ProfileStore, bootstrapAdminEmail string, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		profiles:            profiles,
		bootstrapAdminEmail: strings.ToLower(strings.TrimSpace(bootstrapAdminEmail)),
		logger:              logger,
	}
}

// IsBootstrapAdmin reports whether the email matches the configured
// bootstrap administrator address (case-insensitive)
func (l *Lifecycle) IsBootstrapAdmin(email string) bool {
	return l.bootstrapAdminEmail != "" &&
		strings.EqualFold(strings.TrimSpace(email), l.bootstrapAdminEmail)
}

// EnsureProfile guarantees a profile document exists for the identity and
// returns it. Idempotent: calling it twice never creates a duplicate and
// never regresses role, status or created_at set by the first call.
// A store failure is wrapped as ErrUnavailable so callers fail closed.
func (l *Lifecycle) EnsureProfile(ctx context.Context, identity models.Identity) (*models.UserProfile, error) {
	if identity.UID == "" {
		return nil, fmt.Errorf("%w: identity has no uid", ErrValidation)
	}

	role := models.RoleUser
	status := models.StatusPendingApproval
	if l.IsBootstrapAdmin(identity.Email) {
		role = models.RoleAdmin
		status = models.StatusActive
	}

	candidate := &models.UserProfile{
		UID:    identity.UID,
		Email:  identity.Email,
		Role:   role,
		Status: status,
	}

	stored, created, err := l.profiles.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if created {
		l.logger.Info("profile_created",
			zap.String("uid", stored.UID),
			zap.String("role", string(stored.Role)),
			zap.String("status", string(stored.Status)),
		)
		return stored, nil
	}

	// Existing profile: re-sync email if the provider record changed upstream.
	if identity.Email != "" && stored.Email != identity.Email {
		if err := l.profiles.UpdateEmail(ctx, stored.UID, identity.Email); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: profile vanished during email sync", ErrUnavailable)
			}
			// Stale email is tolerable; routing still works off the stored record.
			l.logger.Warn("profile_email_sync_failed",
				zap.String("uid", stored.UID),
				zap.Error(err),
			)
		} else {
			stored.Email = identity.Email
		}
	}

	return stored, nil
}
