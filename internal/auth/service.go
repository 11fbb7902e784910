// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service orchestrates signup and signin.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens *TokenService
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher, tokens *TokenService) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("token service is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: slog.Default(),
	}, nil
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Signup registers a new account and returns its outward representation.
//
// Uniqueness is pre-checked by email first, then nickname, so when both
// collide the email conflict is the one reported. The pre-checks are a
// best-effort fast path only: two signups racing on the same email or
// nickname are resolved by the storage unique constraint, and a late
// conflict from the repository propagates to the caller unretried.
func (s *Service) Signup(ctx context.Context, draft SignupDraft) (*Profile, error) {
	// Validation errors return unwrapped so transports can map them to
	// caller-input failures; an invalid draft never reaches the store or
	// pays the hashing cost.
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	email := NormalizeEmail(draft.Email)

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, oops.Code("AUTH_DUPLICATE_EMAIL").
			With("email", email).
			Wrap(ErrDuplicateEmail)
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	_, err = s.users.GetByNickname(ctx, draft.Nickname)
	switch {
	case err == nil:
		return nil, oops.Code("AUTH_DUPLICATE_NICKNAME").
			With("nickname", draft.Nickname).
			Wrap(ErrDuplicateNickname)
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "get user by nickname").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(draft.Password)
	if err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(draft, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The store's unique constraint is authoritative even though the
		// pre-checks passed; surface the conflict, never swallow it.
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user signed up",
		"user_id", user.ID.String(),
		"nickname", user.Nickname)

	return user.Profile(), nil
}

// ProfileByID returns the outward representation of a user.
func (s *Service) ProfileByID(ctx context.Context, id ulid.ULID) (*Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// Signin authenticates an email/password pair and issues a session token
// carrying the user's identifier and a snapshot of their current roles.
// Unknown email and wrong password both fail with ErrInvalidCredentials,
// and password verification runs either way so response time does not
// reveal whether the account exists.
func (s *Service) Signin(ctx context.Context, email, password string) (string, error) {
	user, lookupErr := s.users.GetByEmail(ctx, NormalizeEmail(email))

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return "", oops.Code("AUTH_SIGNIN_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid := s.hasher.Verify(password, targetHash)
	if !userExists || !valid {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Roles, time.Now())
	if err != nil {
		return "", oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID.String())

	return token, nil
}
