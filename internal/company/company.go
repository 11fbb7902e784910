// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

// Package company provides the owned company-record domain for Firmdeck.
package company

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested company does not exist.
var ErrNotFound = errors.New("company not found")

// Name length constraint.
const MaxNameLength = 255

// Company is an owned resource. OwnerID is set once at creation from the
// caller's resolved identity and never reassigned for the record's
// lifetime.
type Company struct {
	ID                ulid.ULID `json:"id"`
	OwnerID           ulid.ULID `json:"ownerId"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	ServiceOfActivity string    `json:"serviceOfActivity"`
	NumberOfEmployees int       `json:"numberOfEmployees"`
	Description       string    `json:"description"`
	Type              string    `json:"type"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Draft carries the caller-supplied business attributes for create and
// update. Ownership is never part of a draft.
type Draft struct {
	Name              string
	Address           string
	ServiceOfActivity string
	NumberOfEmployees int
	Description       string
	Type              string
}

// Validate checks the draft's business attributes.
func (d Draft) Validate() error {
	if d.Name == "" {
		return oops.Code("COMPANY_INVALID_NAME").Errorf("company name cannot be empty")
	}
	if len(d.Name) > MaxNameLength {
		return oops.Code("COMPANY_INVALID_NAME").
			With("max", MaxNameLength).
			Errorf("company name must be at most %d characters", MaxNameLength)
	}
	if d.NumberOfEmployees < 0 {
		return oops.Code("COMPANY_INVALID_EMPLOYEES").
			Errorf("number of employees cannot be negative")
	}
	return nil
}

// NewCompany creates a validated Company owned by ownerID.
func NewCompany(ownerID ulid.ULID, draft Draft) (*Company, error) {
	if ownerID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("COMPANY_INVALID_OWNER").Errorf("owner ID cannot be zero")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Company{
		ID:                ulid.Make(),
		OwnerID:           ownerID,
		Name:              draft.Name,
		Address:           draft.Address,
		ServiceOfActivity: draft.ServiceOfActivity,
		NumberOfEmployees: draft.NumberOfEmployees,
		Description:       draft.Description,
		Type:              draft.Type,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Repository manages company persistence.
type Repository interface {
	// Create stores a new company.
	Create(ctx context.Context, company *Company) error

	// GetByID retrieves a company by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Company, error)

	// ListByOwner retrieves all companies owned by the given user.
	ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*Company, error)

	// Update updates a company's business attributes. The owner column is
	// never written after creation.
	Update(ctx context.Context, company *Company) error

	// Delete removes a company.
	Delete(ctx context.Context, id ulid.ULID) error
}
