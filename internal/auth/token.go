// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the validity window of an issued session token.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the session token payload. Roles is an advisory snapshot of
// the roles held at issuance; it is only trusted for coarse route gating.
// Ownership decisions re-resolve roles from the live user record.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// TokenService issues and verifies signed session tokens. Tokens are
// stateless: nothing is persisted server-side and there is no revocation
// list, so a token stays valid until its expiry instant.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given signing secret.
// A zero ttl selects DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_EMPTY_SECRET").Errorf("signing secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured validity window.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the subject with an advisory roles snapshot.
// The token is valid from now until now + TTL.
func (s *TokenService) Issue(subject ulid.ULID, roles []string, now time.Time) (string, error) {
	if subject.Compare(ulid.ULID{}) == 0 {
		return "", oops.Code("AUTH_INVALID_SUBJECT").Errorf("subject cannot be zero")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature and validity window of a token relative to
// now and returns the subject and advisory roles claim. Signature
// mismatch, structural corruption, and expiry all produce an error
// wrapping ErrUnauthorized; Verify never panics. A token is expired at
// exactly its expiry instant.
func (s *TokenService) Verify(tokenString string, now time.Time) (ulid.ULID, []string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Code("AUTH_BAD_SIGNING_METHOD").
				With("alg", t.Header["alg"]).
				Errorf("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return ulid.ULID{}, nil, oops.Code("AUTH_UNAUTHORIZED").
			With("reason", err.Error()).
			Wrap(ErrUnauthorized)
	}
	if !token.Valid {
		return ulid.ULID{}, nil, oops.Code("AUTH_UNAUTHORIZED").Wrap(ErrUnauthorized)
	}

	subject, err := ulid.Parse(claims.Subject)
	if err != nil {
		return ulid.ULID{}, nil, oops.Code("AUTH_UNAUTHORIZED").
			With("reason", "malformed subject claim").
			Wrap(ErrUnauthorized)
	}

	return subject, claims.Roles, nil
}
