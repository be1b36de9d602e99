package auth

import "net/http"

// Error is a domain error carrying the HTTP status it translates to at the
// gin boundary. Verification failures are terminal for the request; nothing
// is retried server-side.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	// ErrInvalidCredentials deliberately does not distinguish "no such
	// user" from "wrong password" (user enumeration resistance).
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "invalid credentials"}

	// ErrInvalidToken covers bad signature and expiry for access and
	// refresh tokens alike.
	ErrInvalidToken = &Error{Status: http.StatusUnauthorized, Code: "invalid_token", Message: "invalid or expired token"}

	// ErrMalformedResetToken covers any verification or shape failure of
	// a reset token, including a wrong purpose or reuse.
	ErrMalformedResetToken = &Error{Status: http.StatusBadRequest, Code: "malformed_reset_token", Message: "invalid or expired reset token"}
)
