// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package auth

import "errors"

// Sentinel error kinds. Callers branch on these with errors.Is; the
// transport layer maps each kind to an outward status category.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a signup reuses an existing email.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrDuplicateNickname is returned when a signup reuses an existing nickname.
	ErrDuplicateNickname = errors.New("nickname already exists")

	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password, so signin failures do not reveal which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when a bearer token is missing, invalid,
	// expired, or names a user that no longer exists.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an authenticated caller lacks the role
	// or ownership required for an operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when the storage layer loses a uniqueness
	// race after the application-level pre-checks passed.
	ErrConflict = errors.New("storage conflict")
)
