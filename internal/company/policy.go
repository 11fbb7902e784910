// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package company

import (
	"github.com/samber/oops"

	"github.com/firmdeck/firmdeck/internal/access"
	"github.com/firmdeck/firmdeck/internal/auth"
)

// Verbs an owner action can carry. The policy predicate is verb-agnostic;
// the verb only selects the denial message.
const (
	VerbGet    = "get"
	VerbUpdate = "update"
	VerbDelete = "delete"
)

var denyMessages = map[string]string{
	VerbGet:    "cannot view a company owned by another user",
	VerbUpdate: "cannot update a company owned by another user",
	VerbDelete: "cannot delete a company owned by another user",
}

// Policy decides whether a caller may act on a company record.
type Policy struct {
	checker *access.Checker
}

// NewPolicy creates a Policy backed by the given role checker.
func NewPolicy(checker *access.Checker) (*Policy, error) {
	if checker == nil {
		return nil, oops.Code("COMPANY_NIL_DEPENDENCY").Errorf("access checker is required")
	}
	return &Policy{checker: checker}, nil
}

// AuthorizeOwner allows the action iff the caller owns the company or
// holds a role whose permission patterns override ownership (admin).
// The same predicate applies to every verb; only the denial message
// distinguishes them. Denials wrap auth.ErrForbidden.
func (p *Policy) AuthorizeOwner(c *Company, id *access.Identity, verb string) error {
	if id == nil {
		return oops.Code("AUTH_UNAUTHORIZED").Wrap(auth.ErrUnauthorized)
	}
	if c.OwnerID.Compare(id.UserID) == 0 {
		return nil
	}

	action := verbAction(verb)
	if p.checker.Check(id.Roles, action, "company:"+c.ID.String()) {
		return nil
	}

	msg, ok := denyMessages[verb]
	if !ok {
		msg = "not the owner of this company"
	}
	return oops.Code("AUTH_FORBIDDEN").
		With("verb", verb).
		With("company_id", c.ID.String()).
		Wrapf(auth.ErrForbidden, "%s", msg)
}

// verbAction maps an action verb to the permission-pattern action.
func verbAction(verb string) string {
	switch verb {
	case VerbUpdate:
		return "write"
	case VerbDelete:
		return "delete"
	default:
		return "read"
	}
}
