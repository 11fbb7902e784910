// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

// Package access provides authorization for Firmdeck.
//
// Roles are additive tags on a user; holding more roles never reduces
// privilege. Each role maps to a set of permission patterns of the form
// "action:resource" matched with ':'-separated globs, e.g.
// "read:company:*" or "write:**".
package access

// Role names. Every user holds at least RoleUser; RoleAdmin overrides
// ownership checks on company records.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var userPowers = []string{
	// Own profile
	"read:profile:$self",
	"write:profile:$self",

	// Company records the caller owns; ownership itself is decided by
	// the company policy, these grant the verbs.
	"create:company",
	"read:company:$own",
	"write:company:$own",
	"delete:company:$own",
}

var adminPowers = []string{
	// Full access, including other users' companies
	"read:**",
	"write:**",
	"delete:**",
	"create:**",
}

// DefaultRoles returns the default role definitions.
// Roles compose permission groups explicitly (no inheritance).
func DefaultRoles() map[string][]string {
	return map[string][]string{
		RoleUser:  userPowers,
		RoleAdmin: compose(userPowers, adminPowers),
	}
}

// compose merges multiple permission slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}

// Intersects reports whether any role in held also appears in required.
// An empty required set gates nothing and always passes.
func Intersects(held, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		for _, h := range held {
			if h == r {
				return true
			}
		}
	}
	return false
}
