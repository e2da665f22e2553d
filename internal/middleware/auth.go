package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/holthoefer/qmflow/internal/access"
	"github.com/holthoefer/qmflow/internal/profile"
	"github.com/holthoefer/qmflow/internal/request"
	"github.com/holthoefer/qmflow/internal/services/oidc"
)

// Auth creates authentication middleware. It verifies the bearer token,
// ensures a profile exists for the identity and attaches the resolved
// session to the request context. When the profile store is unreachable the
// session carries a nil profile and a fail-closed destination; requests
// proceed so the client can render the blocked state.
func Auth(verifier *oidc.Verifier, lifecycle *profile.Lifecycle, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header", logger)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format", logger)
				return
			}

			ctx := r.Context()

			claims, err := verifier.Verify(ctx, parts[1])
			if err != nil {
				logger.Warn("token_verification_failed", zap.Error(err))
				respondError(w, http.StatusUnauthorized, "Invalid or expired token", logger)
				return
			}

			identity := claims.Identity()

			session := &request.Session{Identity: identity}
			prof, err := lifecycle.EnsureProfile(ctx, identity)
			if err != nil {
				// Store unavailable: continue with a nil profile so the gate
				// resolves a restrictive destination instead of leaking access
				logger.Error("profile_ensure_failed",
					zap.String("uid", identity.UID),
					zap.Error(err),
				)
			} else {
				session.Profile = prof
			}
			session.Destination = access.ForProfile(&identity, session.Profile)

			next.ServeHTTP(w, r.WithContext(request.WithSession(ctx, session)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response", zap.Error(err))
	}
}
