// Package repository defines error types that are reused across multiple
// repositories. These sentinel values form the normalization boundary the
// handlers rely on: any raw driver error is mapped to one of these known
// values (or passed through as a generic failure) so that provider
// internals never leak into API responses.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an insert collides with the unique email
// index. Handlers translate it into "email already in use".
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a credential, profile or other record does
// not exist. Login-path callers must collapse it into the generic
// invalid-credentials message to stay enumeration resistant.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned by the credential store when a sign-in
// attempt fails the password check or the account is disabled.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrWeakPassword is returned when a new password fails the credential
// store's minimum-strength rule.
var ErrWeakPassword = errors.New("weak password")

// ErrInvalidCode is returned when a password-reset or email-verification
// code is unknown, expired or already consumed.
var ErrInvalidCode = errors.New("invalid or expired code")

// ErrForbidden is returned when the caller attempts an operation they are
// not authorized for. Handlers translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot proceed because of
// conflicting state, such as a duplicate product SKU. Handlers translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062). Kept in one place so repositories never string-match
// driver errors individually.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
