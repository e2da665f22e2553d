package models

import (
	"time"
)

// Role represents a profile's role in the application
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Status represents a profile's account status
type Status string

const (
	StatusActive          Status = "active"
	StatusPendingApproval Status = "pending_approval"
	StatusSuspended       Status = "suspended"
)

// UserProfile is the per-user record of role and account status, keyed by
// the identity provider's uid. Distinct from the provider's own auth record.
type UserProfile struct {
	UID       string    `json:"uid" bson:"uid"`
	Email     string    `json:"email" bson:"email"`
	Role      Role      `json:"role" bson:"role"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsActiveAdmin reports whether the profile may perform administrative operations
func (p *UserProfile) IsActiveAdmin() bool {
	return p.Role == RoleAdmin && p.Status == StatusActive
}

// Identity is the authenticated identity resolved from a verified bearer token
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	AdminClaim    bool   `json:"admin_claim"`
}
