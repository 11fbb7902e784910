// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/firmdeck/firmdeck/internal/access"
)

// Guard authenticates protected operations. Per request it walks
// Unauthenticated → TokenPresent → TokenValid → IdentityResolved, or
// terminates in a rejection: any missing, invalid, or expired token and
// any token whose subject no longer exists all reject with
// ErrUnauthorized.
type Guard struct {
	users  UserRepository
	tokens *TokenService
}

// NewGuard creates a new Guard.
func NewGuard(users UserRepository, tokens *TokenService) (*Guard, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("token service is required")
	}
	return &Guard{users: users, tokens: tokens}, nil
}

// ExtractBearerToken extracts a bearer token from an Authorization
// header value. An absent or malformed header rejects with
// ErrUnauthorized.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", oops.Code("AUTH_UNAUTHORIZED").
			With("reason", "missing authorization header").
			Wrap(ErrUnauthorized)
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", oops.Code("AUTH_UNAUTHORIZED").
			With("reason", "malformed authorization header").
			Wrap(ErrUnauthorized)
	}
	return token, nil
}

// Authenticate verifies a bearer token and resolves the live user behind
// its subject claim. The returned identity carries the user's current
// roles read from the store, not the token's advisory snapshot, so role
// changes after issuance take effect immediately.
func (g *Guard) Authenticate(ctx context.Context, header string, now time.Time) (*access.Identity, error) {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return nil, err
	}

	subject, _, err := g.tokens.Verify(token, now)
	if err != nil {
		return nil, err
	}

	user, err := g.users.GetByID(ctx, subject)
	if err != nil {
		// A user deleted after issuance is indistinguishable from a bad
		// token to the caller.
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_UNAUTHORIZED").
				With("reason", "subject no longer exists").
				Wrap(ErrUnauthorized)
		}
		return nil, oops.Code("AUTH_GUARD_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	return &access.Identity{UserID: user.ID, Roles: user.Roles}, nil
}

// RequireRoles rejects with ErrForbidden when the identity's role set
// does not intersect the declared required-role set for the operation.
func RequireRoles(id *access.Identity, operation string) error {
	if id == nil {
		return oops.Code("AUTH_UNAUTHORIZED").Wrap(ErrUnauthorized)
	}
	if !access.Intersects(id.Roles, access.Required(operation)) {
		return oops.Code("AUTH_FORBIDDEN").
			With("operation", operation).
			Wrap(ErrForbidden)
	}
	return nil
}
