// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

// Package postgres implements auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/firmdeck/firmdeck/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user. A unique-constraint violation maps to an
// error wrapping auth.ErrConflict: the index is the authoritative
// arbiter of concurrent signups, regardless of prior existence checks.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (
			id, email, nickname, password_hash, roles,
			phone_number, first_name, last_name, description, position,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		user.ID.String(),
		user.Email,
		user.Nickname,
		user.PasswordHash,
		user.Roles,
		user.PhoneNumber,
		user.FirstName,
		user.LastName,
		user.Description,
		user.Position,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("STORE_CONFLICT").
				With("constraint", pgErr.ConstraintName).
				With("nickname", user.Nickname).
				Wrap(auth.ErrConflict)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("nickname", user.Nickname).
			Wrap(err)
	}
	return nil
}

const userColumns = `id, email, nickname, password_hash, roles,
       phone_number, first_name, last_name, description, position,
       created_at, updated_at`

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id.String())

	user, err := r.scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)

	user, err := r.scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return user, nil
}

// GetByNickname retrieves a user by nickname (case-insensitive).
func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(nickname) = LOWER($1)
	`, nickname)

	user, err := r.scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("nickname", nickname).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_NICKNAME_FAILED").
			With("operation", "get user by nickname").
			With("nickname", nickname).
			Wrap(err)
	}
	return user, nil
}

// Update updates an existing user's mutable fields. Identity columns
// (id, email, nickname) are immutable after signup.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET roles = $2, phone_number = $3, first_name = $4, last_name = $5,
		    description = $6, position = $7, updated_at = $8
		WHERE id = $1
	`,
		user.ID.String(),
		user.Roles,
		user.PhoneNumber,
		user.FirstName,
		user.LastName,
		user.Description,
		user.Position,
		user.UpdatedAt,
	)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", user.ID.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", user.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans a user row.
func (r *UserRepository) scanUser(row pgx.Row) (*auth.User, error) {
	var user auth.User
	var idStr string

	err := row.Scan(
		&idStr,
		&user.Email,
		&user.Nickname,
		&user.PasswordHash,
		&user.Roles,
		&user.PhoneNumber,
		&user.FirstName,
		&user.LastName,
		&user.Description,
		&user.Position,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}

	user.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_CORRUPT_ID").
			With("id", idStr).
			Wrap(err)
	}
	return &user, nil
}
