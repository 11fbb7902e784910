// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package access

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Checker matches a caller's roles against permission patterns.
//
// Thread-safety: roles is immutable after construction and requires no
// synchronization; a single Checker is shared process-wide.
//
// Patterns containing '$' placeholders (e.g. "read:company:$own") are
// owner-scoped grants: they never glob-match a concrete resource and are
// resolved by the owning domain's policy instead. The Checker only
// answers pattern matches, which is what role overrides such as the
// admin "read:**" rely on.
type Checker struct {
	roles map[string][]compiledPermission // roleName → compiled patterns (immutable)
}

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// NewChecker creates a Checker with default roles.
//
// Panics if default roles contain invalid permission patterns
// (configuration bug).
func NewChecker() *Checker {
	c, err := NewCheckerWithRoles(DefaultRoles())
	if err != nil {
		// DefaultRoles() patterns are hardcoded and should always be valid.
		panic("invalid permission pattern in DefaultRoles: " + err.Error())
	}
	return c
}

// NewCheckerWithRoles creates a Checker with custom role definitions.
// Returns an error if any permission pattern fails to compile.
func NewCheckerWithRoles(roles map[string][]string) (*Checker, error) {
	compiled := make(map[string][]compiledPermission, len(roles))
	for role, perms := range roles {
		cps := make([]compiledPermission, 0, len(perms))
		for _, p := range perms {
			// ':' separates action and resource segments
			g, err := glob.Compile(p, ':')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role).
					With("pattern", p).
					Wrap(err)
			}
			cps = append(cps, compiledPermission{pattern: p, glob: g})
		}
		compiled[role] = cps
	}
	return &Checker{roles: compiled}, nil
}

// Check reports whether any of the held roles grants action on resource.
// Unknown roles and empty inputs are denied (deny by default).
func (c *Checker) Check(held []string, action, resource string) bool {
	if action == "" || resource == "" {
		return false
	}
	target := action + ":" + resource
	for _, role := range held {
		for _, cp := range c.roles[role] {
			if cp.glob.Match(target) {
				return true
			}
		}
	}
	return false
}
