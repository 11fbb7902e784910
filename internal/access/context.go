// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package access

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Identity is the resolved caller attached to a request context by the
// authorization guard. Roles is the live role set read from the user
// record at authentication time, not the token's advisory claim. This is
// the only trusted identity source for the rest of the request.
type Identity struct {
	UserID ulid.ULID
	Roles  []string
}

// HasRole reports whether the identity holds the named role.
func (id *Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type identityKey struct{}

// WithIdentity returns a context carrying the resolved caller identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the guard, or nil
// if the request was never authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
