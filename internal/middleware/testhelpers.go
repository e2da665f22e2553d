package middleware

import (
	"context"

	"github.com/holthoefer/qmflow/internal/request"
)

// SetSessionInContext is a helper for tests in other packages that need a
// resolved session without running the full auth middleware.
func SetSessionInContext(ctx context.Context, s *request.Session) context.Context {
	return request.WithSession(ctx, s)
}
