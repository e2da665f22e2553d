package handlers

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/profile"
	"github.com/holthoefer/qmflow/internal/store"
)

// fakeProfileStore counts writes so tests can assert a rejected mutation
// never reached the store.
type fakeProfileStore struct {
	writes int
}

var _ store.ProfileStore = (*fakeProfileStore)(nil)

func (f *fakeProfileStore) Get(_ context.Context, uid string) (*models.UserProfile, error) {
	return &models.UserProfile{UID: uid, Role: models.RoleUser, Status: models.StatusActive}, nil
}

func (f *fakeProfileStore) CreateIfAbsent(_ context.Context, p *models.UserProfile) (*models.UserProfile, bool, error) {
	f.writes++
	return p, true, nil
}

func (f *fakeProfileStore) UpdateEmail(_ context.Context, _, _ string) error {
	f.writes++
	return nil
}

func (f *fakeProfileStore) UpdateRoleStatus(_ context.Context, _ string, _ *models.Role, _ *models.Status) error {
	f.writes++
	return nil
}

func (f *fakeProfileStore) List(_ context.Context) ([]*models.UserProfile, error) {
	return nil, nil
}

func TestUpdateProfileRejections(t *testing.T) {
	t.Parallel()

	adminUID := "auth0|op-17"

	tests := []struct {
		name       string
		targetUID  string
		body       UpdateProfileRequest
		wantStatus int
	}{
		{
			name:       "admin cannot mutate own profile",
			targetUID:  adminUID,
			body:       UpdateProfileRequest{Status: strPtr("suspended")},
			wantStatus: 403,
		},
		{
			name:       "unknown status rejected",
			targetUID:  "auth0|op-23",
			body:       UpdateProfileRequest{Status: strPtr("archived")},
			wantStatus: 400,
		},
		{
			name:       "unknown role rejected",
			targetUID:  "auth0|op-23",
			body:       UpdateProfileRequest{Role: strPtr("superuser")},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			profiles := &fakeProfileStore{}
			h := NewProfileHandler(profile.NewAdminService(profiles, zap.NewNop()))

			req := newTestRequest("PATCH", "/api/v1/profiles/"+tt.targetUID, tt.body)
			req = mux.SetURLVars(req, map[string]string{"uid": tt.targetUID})
			req = withSession(req, testSession(models.StatusActive, models.RoleAdmin))
			w := httptest.NewRecorder()

			h.UpdateProfile(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if profiles.writes != 0 {
				t.Errorf("Rejected mutation must not write to the store, got %d writes", profiles.writes)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
