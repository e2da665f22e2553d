package ai

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// contextKey is unexported so callers cannot collide with our log metadata keys.
type contextKey string

const (
	userUIDContextKey   contextKey = "user_uid"
	noteIDContextKey    contextKey = "note_id"
	requestIDContextKey contextKey = "request_id"
)

// UserUIDContextKey returns the context key carrying the caller's uid.
func UserUIDContextKey() contextKey { return userUIDContextKey }

// NoteIDContextKey returns the context key carrying the note being tagged.
func NoteIDContextKey() contextKey { return noteIDContextKey }

// RequestIDContextKey returns the context key carrying the request ID.
func RequestIDContextKey() contextKey { return requestIDContextKey }

const (
	// MaxPreviewLength caps prompt and completion previews in normal logs.
	MaxPreviewLength = 200
	// MaxDebugContentLength caps full-content logs in debug mode.
	MaxDebugContentLength = 10000
)

// SanitizePrompt truncates and strips a prompt for logging. Note bodies are
// user text, so control characters are removed even in fullLog mode to keep
// log injection out.
func SanitizePrompt(prompt string, fullLog bool) string {
	return sanitizeForLog(prompt, fullLog)
}

// SanitizeResponse truncates and strips a model completion for logging.
func SanitizeResponse(response string, fullLog bool) string {
	return sanitizeForLog(response, fullLog)
}

func sanitizeForLog(s string, fullLog bool) string {
	if s == "" {
		return ""
	}

	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = MaxDebugContentLength
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}

// ExtractRequestID returns the request ID stored in ctx, or "".
func ExtractRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// ExtractUserUID returns the caller uid stored in ctx, or "".
func ExtractUserUID(ctx context.Context) string {
	if uid, ok := ctx.Value(userUIDContextKey).(string); ok {
		return uid
	}
	return ""
}

// ExtractNoteID returns the note ID stored in ctx, or "". The worker stores
// it as a uuid.UUID, so any fmt.Stringer is accepted.
func ExtractNoteID(ctx context.Context) string {
	switch v := ctx.Value(noteIDContextKey).(type) {
	case interface{ String() string }:
		return v.String()
	case string:
		return v
	default:
		return ""
	}
}
