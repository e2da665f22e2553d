package middleware

import (
	"net/http"
	"strings"
)

// ContentType rejects write requests that do not declare a JSON body.
// Multipart uploads register their routes outside this middleware's reach
// or set the header correctly, so a plain prefix check suffices here.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := r.Header.Get("Content-Type")
			if ct == "" {
				http.Error(w, "Content-Type header is required", http.StatusBadRequest)
				return
			}
			lower := strings.ToLower(ct)
			if !strings.HasPrefix(lower, "application/json") && !strings.HasPrefix(lower, "multipart/form-data") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
