package profile

import "errors"

var (
	// ErrNotFound indicates the target profile does not exist
	ErrNotFound = errors.New("profile not found")
	// ErrForbidden indicates the caller lacks the required role/status,
	// or attempted to change their own role/status
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates a role or status value outside the enumerated set
	ErrValidation = errors.New("validation failed")
	// ErrUnavailable indicates the profile store could not be reached.
	// Callers must treat this as "no profile" and fail closed.
	ErrUnavailable = errors.New("profile store unavailable")
)
