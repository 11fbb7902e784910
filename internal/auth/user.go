// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/firmdeck/firmdeck/internal/access"
)

// Nickname validation constraints.
const (
	MinNicknameLength = 3
	MaxNicknameLength = 50
)

// nicknameRegex matches nicknames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var nicknameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// User represents a registered account.
type User struct {
	ID           ulid.ULID
	Email        string
	Nickname     string
	PasswordHash string
	Roles        []string
	PhoneNumber  string
	FirstName    string
	LastName     string
	Description  string
	Position     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the outward-facing representation of a User. It carries no
// secret material and is safe to serialize in responses.
type Profile struct {
	ID          ulid.ULID `json:"id"`
	Email       string    `json:"email"`
	Nickname    string    `json:"nickName"`
	Roles       []string  `json:"roles"`
	PhoneNumber string    `json:"phoneNumber"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Description string    `json:"description"`
	Position    string    `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Profile returns the outward representation with the password hash stripped.
func (u *User) Profile() *Profile {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return &Profile{
		ID:          u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Roles:       roles,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Description: u.Description,
		Position:    u.Position,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// SignupDraft carries the fields a caller supplies at signup. The password
// is plaintext here and never stored; Service.Signup hashes it.
type SignupDraft struct {
	Email       string
	Nickname    string
	Password    string
	PhoneNumber string
	FirstName   string
	LastName    string
	Description string
	Position    string
}

// Validate checks the caller-supplied signup fields. Running it before
// any store lookup or hashing keeps invalid drafts cheap to reject.
func (d SignupDraft) Validate() error {
	if err := ValidateNickname(d.Nickname); err != nil {
		return err
	}
	if NormalizeEmail(d.Email) == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if d.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for uniqueness comparison.
// All lookups and stored values use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateNickname validates a nickname against rules.
// Nickname requirements:
// - Length: MinNicknameLength to MaxNicknameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateNickname(nickname string) error {
	if nickname == "" {
		return oops.Code("AUTH_INVALID_NICKNAME").Errorf("nickname cannot be empty")
	}
	if len(nickname) < MinNicknameLength {
		return oops.Code("AUTH_INVALID_NICKNAME").
			With("min", MinNicknameLength).
			Errorf("nickname must be at least %d characters", MinNicknameLength)
	}
	if len(nickname) > MaxNicknameLength {
		return oops.Code("AUTH_INVALID_NICKNAME").
			With("max", MaxNicknameLength).
			Errorf("nickname must be at most %d characters", MaxNicknameLength)
	}
	if !nicknameRegex.MatchString(nickname) {
		return oops.Code("AUTH_INVALID_NICKNAME").
			Errorf("nickname must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// NewUser creates a validated User from a signup draft and a password hash.
// The email is normalized and the default role set is applied.
func NewUser(draft SignupDraft, passwordHash string) (*User, error) {
	if err := ValidateNickname(draft.Nickname); err != nil {
		return nil, err
	}
	email := NormalizeEmail(draft.Email)
	if email == "" {
		return nil, oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		Nickname:     draft.Nickname,
		PasswordHash: passwordHash,
		Roles:        []string{access.RoleUser},
		PhoneNumber:  draft.PhoneNumber,
		FirstName:    draft.FirstName,
		LastName:     draft.LastName,
		Description:  draft.Description,
		Position:     draft.Position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UserRepository manages user persistence. It is the only layer that sees
// the stored password hash.
type UserRepository interface {
	// Create stores a new user. It returns an error wrapping ErrConflict
	// when a uniqueness constraint (email or nickname) is violated, even
	// if an application-level existence pre-check passed: the storage
	// constraint is the final arbiter of the race.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by normalized email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByNickname retrieves a user by nickname (case-insensitive).
	GetByNickname(ctx context.Context, nickname string) (*User, error)

	// Update updates an existing user's mutable fields.
	Update(ctx context.Context, user *User) error
}
