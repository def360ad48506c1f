// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., stock already present).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmailTaken indicates the email already belongs to another local user.
	ErrEmailTaken = errors.New("email taken")

	// ErrLoginRejected marks client-class failures of the external login
	// callback: missing or mismatched state, missing code, missing PKCE
	// verifier or nonce, duplicate email. These map to HTTP 400 and the
	// attempt is never retried. Every other failure of the flow is
	// server-class and maps to 500.
	ErrLoginRejected = errors.New("login rejected")
)
