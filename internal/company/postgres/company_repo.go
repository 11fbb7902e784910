// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

// Package postgres implements the company repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/firmdeck/firmdeck/internal/company"
)

// CompanyRepository implements company.Repository using PostgreSQL.
type CompanyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Create stores a new company.
func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO companies (
			id, owner_id, name, address, service_of_activity,
			number_of_employees, description, type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		c.ID.String(),
		c.OwnerID.String(),
		c.Name,
		c.Address,
		c.ServiceOfActivity,
		c.NumberOfEmployees,
		c.Description,
		c.Type,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return oops.Code("COMPANY_CREATE_FAILED").
			With("operation", "insert company").
			With("company_id", c.ID.String()).
			Wrap(err)
	}
	return nil
}

const companyColumns = `id, owner_id, name, address, service_of_activity,
       number_of_employees, description, type, created_at, updated_at`

// GetByID retrieves a company by ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id ulid.ULID) (*company.Company, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE id = $1
	`, id.String())

	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("COMPANY_NOT_FOUND").
			With("id", id.String()).
			Wrap(company.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("COMPANY_GET_FAILED").
			With("operation", "get company by id").
			With("id", id.String()).
			Wrap(err)
	}
	return c, nil
}

// ListByOwner retrieves all companies owned by the given user, newest first.
func (r *CompanyRepository) ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*company.Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID.String())
	if err != nil {
		return nil, oops.Code("COMPANY_LIST_FAILED").
			With("operation", "list companies by owner").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var companies []*company.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, oops.Code("COMPANY_LIST_FAILED").
				With("operation", "scan company row").
				Wrap(err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("COMPANY_LIST_FAILED").
			With("operation", "iterate company rows").
			Wrap(err)
	}
	return companies, nil
}

// Update updates a company's business attributes. The owner_id column is
// deliberately absent from the SET clause: ownership is immutable.
func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies
		SET name = $2, address = $3, service_of_activity = $4,
		    number_of_employees = $5, description = $6, type = $7,
		    updated_at = $8
		WHERE id = $1
	`,
		c.ID.String(),
		c.Name,
		c.Address,
		c.ServiceOfActivity,
		c.NumberOfEmployees,
		c.Description,
		c.Type,
		c.UpdatedAt,
	)
	if err != nil {
		return oops.Code("COMPANY_UPDATE_FAILED").
			With("operation", "update company").
			With("company_id", c.ID.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("COMPANY_NOT_FOUND").
			With("id", c.ID.String()).
			Wrap(company.ErrNotFound)
	}
	return nil
}

// Delete removes a company.
func (r *CompanyRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("COMPANY_DELETE_FAILED").
			With("operation", "delete company").
			With("id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("COMPANY_NOT_FOUND").
			With("id", id.String()).
			Wrap(company.ErrNotFound)
	}
	return nil
}

// scanCompany scans a company row.
func scanCompany(row pgx.Row) (*company.Company, error) {
	var c company.Company
	var idStr, ownerStr string

	err := row.Scan(
		&idStr,
		&ownerStr,
		&c.Name,
		&c.Address,
		&c.ServiceOfActivity,
		&c.NumberOfEmployees,
		&c.Description,
		&c.Type,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}

	if c.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("COMPANY_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	if c.OwnerID, err = ulid.Parse(ownerStr); err != nil {
		return nil, oops.Code("COMPANY_CORRUPT_OWNER").With("owner_id", ownerStr).Wrap(err)
	}
	return &c, nil
}
