// Package access maps a resolved (role, status, emailVerified) triple to
// exactly one destination. The gate is a pure function with no side effects
// and no network calls; the calling shell fetches the triple and performs
// the navigation.
package access

import (
	"github.com/holthoefer/qmflow/internal/models"
)

// Destination is the logical screen a session is routed to after access
// evaluation
type Destination string

const (
	DestinationLogin       Destination = "login"
	DestinationVerifyEmail Destination = "verify-email"
	DestinationAdmin       Destination = "admin"
	DestinationWorkspace   Destination = "workspace"
	DestinationPending     Destination = "pending"
	DestinationBlocked     Destination = "blocked"
)

// Input is the resolved session state fed to the gate. When the profile
// could not be loaded (store error), Role and Status are left empty, which
// falls through to the restrictive branches; never admin or workspace.
type Input struct {
	Authenticated bool
	EmailVerified bool
	Role          models.Role
	Status        models.Status
}

// Resolve evaluates the decision table in order; first match wins.
//
//  1. no identity                  -> login
//  2. email not verified           -> verify-email
//  3. active admin                 -> admin
//  4. active (any role)            -> workspace
//  5. pending approval             -> pending
//  6. anything else                -> blocked
func Resolve(in Input) Destination {
	if !in.Authenticated {
		return DestinationLogin
	}
	if !in.EmailVerified {
		return DestinationVerifyEmail
	}
	if in.Role == models.RoleAdmin && in.Status == models.StatusActive {
		return DestinationAdmin
	}
	if in.Status == models.StatusActive {
		return DestinationWorkspace
	}
	if in.Status == models.StatusPendingApproval {
		return DestinationPending
	}
	return DestinationBlocked
}

// ForProfile resolves the destination for an authenticated identity and its
// profile. A nil profile (lifecycle failure, store unreachable) fails closed
// to the pending screen.
func ForProfile(identity *models.Identity, p *models.UserProfile) Destination {
	if identity == nil {
		return DestinationLogin
	}
	in := Input{
		Authenticated: true,
		EmailVerified: identity.EmailVerified,
	}
	if p == nil {
		// Treat an unknown profile as pending approval: restrictive, but
		// lets the client show a retryable screen rather than a hard block.
		in.Status = models.StatusPendingApproval
	} else {
		in.Role = p.Role
		in.Status = p.Status
	}
	return Resolve(in)
}
