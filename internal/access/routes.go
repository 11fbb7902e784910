// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package access

// Operation names used in the required-role table. Transport handlers
// look their operation up here at dispatch time; the guard intersects
// the declared set with the caller's resolved roles.
const (
	OpProfileRead   = "profile.read"
	OpCompanyCreate = "company.create"
	OpCompanyRead   = "company.read"
	OpCompanyList   = "company.list"
	OpCompanyUpdate = "company.update"
	OpCompanyDelete = "company.delete"
)

// requiredRoles declares, per protected operation, the role set a caller
// must intersect. Plain configuration data: no annotations or reflection,
// a lookup suffices. Operations absent from the table require
// authentication but no particular role.
var requiredRoles = map[string][]string{
	OpProfileRead:   {RoleUser, RoleAdmin},
	OpCompanyCreate: {RoleUser, RoleAdmin},
	OpCompanyRead:   {RoleUser, RoleAdmin},
	OpCompanyList:   {RoleUser, RoleAdmin},
	OpCompanyUpdate: {RoleUser, RoleAdmin},
	OpCompanyDelete: {RoleUser, RoleAdmin},
}

// Required returns the declared required-role set for an operation.
// A nil result means the operation is not role-gated.
func Required(operation string) []string {
	return requiredRoles[operation]
}
