// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package company

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/firmdeck/firmdeck/internal/access"
)

// Service provides owner-authorized access to company records. Read-one,
// update, and delete run the ownership policy post-hoc; create and list
// are scoped by the caller identity at creation/query level instead.
type Service struct {
	companies Repository
	policy    *Policy
	logger    *slog.Logger
}

// NewService creates a new Service.
func NewService(companies Repository, policy *Policy) (*Service, error) {
	if companies == nil {
		return nil, oops.Code("COMPANY_NIL_DEPENDENCY").Errorf("company repository is required")
	}
	if policy == nil {
		return nil, oops.Code("COMPANY_NIL_DEPENDENCY").Errorf("ownership policy is required")
	}
	return &Service{
		companies: companies,
		policy:    policy,
		logger:    slog.Default(),
	}, nil
}

// Create stores a new company owned by the caller. Ownership comes from
// the resolved identity, never from request-supplied data.
func (s *Service) Create(ctx context.Context, id *access.Identity, draft Draft) (*Company, error) {
	c, err := NewCompany(id.UserID, draft)
	if err != nil {
		return nil, err
	}
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, oops.Code("COMPANY_CREATE_FAILED").
			With("company_id", c.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "company created",
		"company_id", c.ID.String(),
		"owner_id", c.OwnerID.String())

	return c, nil
}

// Get retrieves a company the caller owns (or may override into).
func (s *Service) Get(ctx context.Context, id *access.Identity, companyID ulid.ULID) (*Company, error) {
	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeOwner(c, id, VerbGet); err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves the companies owned by the caller.
func (s *Service) List(ctx context.Context, id *access.Identity) ([]*Company, error) {
	companies, err := s.companies.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, oops.Code("COMPANY_LIST_FAILED").
			With("owner_id", id.UserID.String()).
			Wrap(err)
	}
	return companies, nil
}

// Update replaces a company's business attributes. The owner reference
// is immutable and survives every update.
func (s *Service) Update(ctx context.Context, id *access.Identity, companyID ulid.ULID, draft Draft) (*Company, error) {
	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeOwner(c, id, VerbUpdate); err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	c.Name = draft.Name
	c.Address = draft.Address
	c.ServiceOfActivity = draft.ServiceOfActivity
	c.NumberOfEmployees = draft.NumberOfEmployees
	c.Description = draft.Description
	c.Type = draft.Type
	c.UpdatedAt = time.Now().UTC()

	if err := s.companies.Update(ctx, c); err != nil {
		return nil, oops.Code("COMPANY_UPDATE_FAILED").
			With("company_id", c.ID.String()).
			Wrap(err)
	}
	return c, nil
}

// Delete removes a company the caller owns.
func (s *Service) Delete(ctx context.Context, id *access.Identity, companyID ulid.ULID) error {
	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if err := s.policy.AuthorizeOwner(c, id, VerbDelete); err != nil {
		return err
	}
	if err := s.companies.Delete(ctx, companyID); err != nil {
		return oops.Code("COMPANY_DELETE_FAILED").
			With("company_id", companyID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "company deleted",
		"company_id", companyID.String(),
		"deleted_by", id.UserID.String())

	return nil
}
