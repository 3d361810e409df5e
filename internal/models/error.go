package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Session/account state errors. All of them fail closed: the
	// caller clears the session and redirects to the login entry.
	ErrNoSession       = errors.New("no active session")
	ErrSessionExpired  = errors.New("session expired")
	ErrAccountInactive = errors.New("account is inactive")
	ErrAccountDeleted  = errors.New("account no longer exists")
)
