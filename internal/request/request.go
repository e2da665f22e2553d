package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/holthoefer/qmflow/internal/access"
	"github.com/holthoefer/qmflow/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Session is the resolved per-request authentication state: the verified
// identity, its profile (nil when the profile store was unreachable) and
// the destination the access gate resolved for the pair.
type Session struct {
	Identity    models.Identity     `json:"identity"`
	Profile     *models.UserProfile `json:"profile,omitempty"`
	Destination access.Destination  `json:"destination"`
}

// IsActiveAdmin reports whether the session belongs to an active administrator
func (s *Session) IsActiveAdmin() bool {
	return s != nil && s.Profile != nil && s.Profile.IsActiveAdmin()
}

// SessionContextKey returns the context key used for the session. Exposed for
// tests that inject non-session values.
func SessionContextKey() any { return sessionContextKey }

// WithSession returns a context with the session attached
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session from the request context, or nil
// if missing or wrong type
func SessionFromContext(r *http.Request) *Session {
	s, _ := r.Context().Value(sessionContextKey).(*Session)
	return s
}

// ClientIP extracts the client IP from the request, respecting
// X-Forwarded-For and X-Real-IP
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}
