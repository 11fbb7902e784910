// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

// Package auth provides authentication primitives for Firmdeck.
//
// # Domain Types
//
// User is the account aggregate. Create one through NewUser, which
// normalizes the email and applies the default role set; direct struct
// initialization bypasses that and may create invalid state. Repository
// implementations receive pre-validated users.
//
// # Services
//
// Service orchestrates signup and signin. Guard authenticates bearer
// tokens on protected operations and resolves the live user behind the
// token's subject claim. TokenService issues and verifies the signed
// session tokens themselves.
//
// Services are created with New* constructors that validate dependencies.
package auth
