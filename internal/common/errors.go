// Package common defines shared constants and sentinel errors used across
// mycloud components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorForbidden: authenticated but neither the owner nor an admin.
	// Kept distinct from ErrorNotFound so the boundary layer can answer
	// 403 instead of 404 on direct downloads.
	ErrorForbidden = errors.New("forbidden")

	// ErrQuotaExceeded denies upload admission. The message is user-facing
	// and tells the user what to do next.
	ErrQuotaExceeded = errors.New(
		"you have exceeded the maximum storage limit, " +
			"please contact the administrator to increase your storage quota")

	// ErrShareExpired: the share token resolved but its window has passed.
	// Distinct from ErrorNotFound — the caller should know why access is gone.
	ErrShareExpired = errors.New("shared link expired")

	// ErrBackendUnavailable: the record or blob store is transiently failing.
	// Admission and writes surface this instead of silently permitting.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// Validation errors.
	ErrorInvalidLogin = errors.New("the login must start with a letter and contain " +
		"only latin letters and numbers (4-20 characters)")
)
