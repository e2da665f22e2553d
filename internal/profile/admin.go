package profile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/store"
)

// AdminService performs administrator mutations on other users' profiles.
// It is the single writer of the role field; custom-claim updates at the
// identity provider are an external operational step (see qmctl).
type AdminService struct {
	profiles store.ProfileStore
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(profiles store.ProfileStore, logger *zap.Logger) *AdminService {
	return &AdminService{profiles: profiles, logger: logger}
}

// UpdateRequest carries an admin mutation. Nil fields are left unchanged.
type UpdateRequest struct {
	TargetUID string
	Role      *models.Role
	Status    *models.Status
}

func validRole(r models.Role) bool {
	switch r {
	case models.RoleUser, models.RoleAdmin:
		return true
	}
	return false
}

func validStatus(s models.Status) bool {
	switch s {
	case models.StatusActive, models.StatusPendingApproval, models.StatusSuspended:
		return true
	}
	return false
}

// UpdateProfile changes the target profile's role and/or status.
//
// Preconditions: the caller must be an active admin, and must not be the
// target (self-lockout prevention). Validation happens before any store
// write, so a rejected request leaves the stored profile unchanged.
func (s *AdminService) UpdateProfile(ctx context.Context, caller *models.UserProfile, req UpdateRequest) (*models.UserProfile, error) {
	if caller == nil || !caller.IsActiveAdmin() {
		return nil, fmt.Errorf("%w: caller is not an active administrator", ErrForbidden)
	}
	if req.TargetUID == "" {
		return nil, fmt.Errorf("%w: target uid is required", ErrValidation)
	}
	if caller.UID == req.TargetUID {
		return nil, fmt.Errorf("%w: administrators cannot change their own role or status", ErrForbidden)
	}
	if req.Role == nil && req.Status == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if req.Role != nil && !validRole(*req.Role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, *req.Role)
	}
	if req.Status != nil && !validStatus(*req.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *req.Status)
	}

	if err := s.profiles.UpdateRoleStatus(ctx, req.TargetUID, req.Role, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, req.TargetUID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	updated, err := s.profiles.Get(ctx, req.TargetUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.logger.Info("profile_updated_by_admin",
		zap.String("caller_uid", caller.UID),
		zap.String("target_uid", req.TargetUID),
		zap.String("role", string(updated.Role)),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

// ListProfiles returns all profiles ordered by email. Caller must be an
// active admin.
func (s *AdminService) ListProfiles(ctx context.Context, caller *models.UserProfile) ([]*models.UserProfile, error) {
	if caller == nil || !caller.IsActiveAdmin() {
		return nil, fmt.Errorf("%w: caller is not an active administrator", ErrForbidden)
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return profiles, nil
}
