package profile

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/access"
	"github.com/holthoefer/qmflow/internal/models"
)

func TestEnsureProfile_DefaultsForNewUser(t *testing.T) {
	t.Parallel()

	fake := newFakeProfileStore()
	lc := NewLifecycle(fake, "boss@example.com", zap.NewNop())

	p, err := lc.EnsureProfile(context.Background(), models.Identity{
		UID:   "u-100",
		Email: "operator@example.com",
	})
	if err != nil {
		t.Fatalf("EnsureProfile returned error: %v", err)
	}
	if p.Role != models.RoleUser {
		t.Errorf("role = %q, want %q", p.Role, models.RoleUser)
	}
	if p.Status != models.StatusPendingApproval {
		t.Errorf("status = %q, want %q", p.Status, models.StatusPendingApproval)
	}
	if p.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestEnsureProfile_BootstrapAdmin(t *testing.T) {
	t.Parallel()

	fake := newFakeProfileStore()
	lc := NewLifecycle(fake, "boss@example.com", zap.NewNop())

	tests := []struct {
		name  string
		email string
	}{
		{name: "exact match", email: "boss@example.com"},
		{name: "case-insensitive match", email: "Boss@Example.COM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := lc.EnsureProfile(context.Background(), models.Identity{
				UID:   "admin-" + tt.name,
				Email: tt.email,
			})
			if err != nil {
				t.Fatalf("EnsureProfile returned error: %v", err)
			}
			if p.Role != models.RoleAdmin {
				t.Errorf("role = %q, want admin", p.Role)
			}
			if p.Status != models.StatusActive {
				t.Errorf("status = %q, want active", p.Status)
			}
		})
	}
}

func TestEnsureProfile_Idempotent(t *testing.T) {
	t.Parallel()

	fake := newFakeProfileStore()
	lc := NewLifecycle(fake, "", zap.NewNop())
	identity := models.Identity{UID: "u-7", Email: "op@example.com"}

	first, err := lc.EnsureProfile(context.Background(), identity)
	if err != nil {
		t.Fatalf("first EnsureProfile: %v", err)
	}

	// Approve the account between sign-ins; a later EnsureProfile must not
	// regress it to pending.
	active := models.StatusActive
	if err := fake.UpdateRoleStatus(context.Background(), "u-7", nil, &active); err != nil {
		t.Fatalf("UpdateRoleStatus: %v", err)
	}

	second, err := lc.EnsureProfile(context.Background(), identity)
	if err != nil {
		t.Fatalf("second EnsureProfile: %v", err)
	}

	if fake.creates != 1 {
		t.Errorf("profile created %d times, want exactly 1", fake.creates)
	}
	if second.Status != models.StatusActive {
		t.Errorf("second call regressed status to %q", second.Status)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
}

func TestEnsureProfile_EmailResync(t *testing.T) {
	t.Parallel()

	fake := newFakeProfileStore()
	lc := NewLifecycle(fake, "", zap.NewNop())

	if _, err := lc.EnsureProfile(context.Background(), models.Identity{UID: "u-9", Email: "old@example.com"}); err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}

	p, err := lc.EnsureProfile(context.Background(), models.Identity{UID: "u-9", Email: "new@example.com"})
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if p.Email != "new@example.com" {
		t.Errorf("email = %q, want re-synced new@example.com", p.Email)
	}
	if p.Status != models.StatusPendingApproval {
		t.Errorf("email sync must not touch status, got %q", p.Status)
	}
}

func TestEnsureProfile_StoreUnavailableFailsClosed(t *testing.T) {
	t.Parallel()

	fake := newFakeProfileStore()
	fake.failAll = true
	lc := NewLifecycle(fake, "", zap.NewNop())

	identity := models.Identity{UID: "u-1", Email: "op@example.com", EmailVerified: true}
	p, err := lc.EnsureProfile(context.Background(), identity)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if p != nil {
		t.Fatalf("profile = %+v, want nil on store failure", p)
	}

	// Caller treats the failure as "no profile": the gate must resolve to a
	// restrictive destination, never admin or workspace.
	dest := access.ForProfile(&identity, nil)
	if dest == access.DestinationAdmin || dest == access.DestinationWorkspace {
		t.Errorf("unavailable store resolved to %q", dest)
	}
}

func TestEnsureProfile_MissingUID(t *testing.T) {
	t.Parallel()

	lc := NewLifecycle(newFakeProfileStore(), "", zap.NewNop())
	_, err := lc.EnsureProfile(context.Background(), models.Identity{Email: "no-uid@example.com"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
