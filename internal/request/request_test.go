package request

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/holthoefer/qmflow/internal/models"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:    "x-forwarded-for single",
			headers: map[string]string{"X-Forwarded-For": "10.0.0.1"},
			remote:  "192.168.1.1:1234",
			want:    "10.0.0.1",
		},
		{
			name:    "x-forwarded-for chain uses first",
			headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"},
			remote:  "192.168.1.1:1234",
			want:    "10.0.0.1",
		},
		{
			name:    "x-real-ip fallback",
			headers: map[string]string{"X-Real-IP": " 10.0.0.3 "},
			remote:  "192.168.1.1:1234",
			want:    "10.0.0.3",
		},
		{
			name:   "remote addr fallback",
			remote: "192.168.1.1:1234",
			want:   "192.168.1.1:1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionFromContext(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	if got := SessionFromContext(r); got != nil {
		t.Errorf("SessionFromContext on bare request = %+v, want nil", got)
	}

	session := &Session{Identity: models.Identity{UID: "u-1"}}
	r = r.WithContext(WithSession(r.Context(), session))
	if got := SessionFromContext(r); got != session {
		t.Errorf("SessionFromContext = %+v, want the injected session", got)
	}

	// Wrong type under the key must not panic
	r2 := httptest.NewRequest("GET", "/", nil)
	r2 = r2.WithContext(context.WithValue(r2.Context(), SessionContextKey(), "not-a-session"))
	if got := SessionFromContext(r2); got != nil {
		t.Errorf("SessionFromContext with wrong type = %+v, want nil", got)
	}
}

func TestSessionIsActiveAdmin(t *testing.T) {
	t.Parallel()

	var nilSession *Session
	if nilSession.IsActiveAdmin() {
		t.Error("nil session reported as admin")
	}
	if (&Session{}).IsActiveAdmin() {
		t.Error("session without profile reported as admin")
	}

	admin := &Session{Profile: &models.UserProfile{Role: models.RoleAdmin, Status: models.StatusActive}}
	if !admin.IsActiveAdmin() {
		t.Error("active admin session not recognized")
	}

	suspended := &Session{Profile: &models.UserProfile{Role: models.RoleAdmin, Status: models.StatusSuspended}}
	if suspended.IsActiveAdmin() {
		t.Error("suspended admin reported as active admin")
	}
}
