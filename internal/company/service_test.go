// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package company_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmdeck/firmdeck/internal/access"
	"github.com/firmdeck/firmdeck/internal/auth"
	"github.com/firmdeck/firmdeck/internal/company"
)

// fakeCompanyRepo is an in-memory company.Repository.
type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[ulid.ULID]*company.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[ulid.ULID]*company.Company)}
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *company.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.companies[c.ID] = &clone
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id ulid.ULID) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, company.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCompanyRepo) ListByOwner(_ context.Context, ownerID ulid.ULID) ([]*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*company.Company
	for _, c := range r.companies {
		if c.OwnerID.Compare(ownerID) == 0 {
			clone := *c
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, c *company.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.companies[c.ID]
	if !ok {
		return company.ErrNotFound
	}
	clone := *c
	// The owner column is never written after creation.
	clone.OwnerID = stored.OwnerID
	r.companies[c.ID] = &clone
	return nil
}

func (r *fakeCompanyRepo) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return company.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

func newCompanyService(t *testing.T) (*company.Service, *fakeCompanyRepo) {
	t.Helper()
	repo := newFakeCompanyRepo()
	svc, err := company.NewService(repo, newPolicy(t))
	require.NoError(t, err)
	return svc, repo
}

func validCompanyDraft() company.Draft {
	return company.Draft{
		Name:              "Acme",
		Address:           "1 Main St",
		ServiceOfActivity: "manufacturing",
		NumberOfEmployees: 12,
		Description:       "widgets",
		Type:              "LLC",
	}
}

func TestCompanyService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCompanyService(t)
	caller := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}

	t.Run("owner comes from the caller identity", func(t *testing.T) {
		c, err := svc.Create(ctx, caller, validCompanyDraft())
		require.NoError(t, err)
		assert.Equal(t, caller.UserID, c.OwnerID)
		assert.NotZero(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())

		stored, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, caller.UserID, stored.OwnerID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		draft := validCompanyDraft()
		draft.Name = ""
		_, err := svc.Create(ctx, caller, draft)
		require.Error(t, err)
	})

	t.Run("rejects negative employee count", func(t *testing.T) {
		draft := validCompanyDraft()
		draft.NumberOfEmployees = -1
		_, err := svc.Create(ctx, caller, draft)
		require.Error(t, err)
	})
}

func TestCompanyService_Get(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCompanyService(t)

	owner := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}
	stranger := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}
	admin := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser, access.RoleAdmin}}

	created, err := svc.Create(ctx, owner, validCompanyDraft())
	require.NoError(t, err)

	t.Run("owner reads own company", func(t *testing.T) {
		c, err := svc.Get(ctx, owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, c.ID)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		_, err := svc.Get(ctx, stranger, created.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrForbidden)
	})

	t.Run("admin overrides ownership", func(t *testing.T) {
		c, err := svc.Get(ctx, admin, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, c.ID)
	})

	t.Run("unknown company is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, owner, ulid.Make())
		require.Error(t, err)
		assert.ErrorIs(t, err, company.ErrNotFound)
	})
}

func TestCompanyService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCompanyService(t)

	alice := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}
	bob := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, alice, validCompanyDraft())
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, validCompanyDraft())
	require.NoError(t, err)

	got, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.Equal(t, alice.UserID, c.OwnerID)
	}
}

func TestCompanyService_Update(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCompanyService(t)

	owner := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}
	stranger := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}

	created, err := svc.Create(ctx, owner, validCompanyDraft())
	require.NoError(t, err)

	t.Run("owner updates business attributes", func(t *testing.T) {
		draft := validCompanyDraft()
		draft.Name = "Acme Rebranded"
		draft.NumberOfEmployees = 40

		before := time.Now().UTC()
		updated, err := svc.Update(ctx, owner, created.ID, draft)
		require.NoError(t, err)
		assert.Equal(t, "Acme Rebranded", updated.Name)
		assert.Equal(t, 40, updated.NumberOfEmployees)
		assert.Equal(t, owner.UserID, updated.OwnerID)
		assert.False(t, updated.UpdatedAt.Before(before))
	})

	t.Run("stranger is forbidden and the record is untouched", func(t *testing.T) {
		draft := validCompanyDraft()
		draft.Name = "Hijacked"
		_, err := svc.Update(ctx, stranger, created.ID, draft)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrForbidden)

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "Hijacked", stored.Name)
	})

	t.Run("invalid draft rejected after authorization", func(t *testing.T) {
		draft := validCompanyDraft()
		draft.Name = ""
		_, err := svc.Update(ctx, owner, created.ID, draft)
		require.Error(t, err)
	})

	t.Run("unknown company is not found", func(t *testing.T) {
		_, err := svc.Update(ctx, owner, ulid.Make(), validCompanyDraft())
		require.Error(t, err)
		assert.ErrorIs(t, err, company.ErrNotFound)
	})
}

func TestCompanyService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCompanyService(t)

	owner := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}
	stranger := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser}}
	admin := &access.Identity{UserID: ulid.Make(), Roles: []string{access.RoleUser, access.RoleAdmin}}

	t.Run("stranger is forbidden, owner deletes, then get is not found", func(t *testing.T) {
		created, err := svc.Create(ctx, owner, validCompanyDraft())
		require.NoError(t, err)

		err = svc.Delete(ctx, stranger, created.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrForbidden)

		require.NoError(t, svc.Delete(ctx, owner, created.ID))

		_, err = svc.Get(ctx, owner, created.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, company.ErrNotFound)
	})

	t.Run("admin deletes another user's company", func(t *testing.T) {
		created, err := svc.Create(ctx, owner, validCompanyDraft())
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, admin, created.ID))
	})

	t.Run("unknown company is not found", func(t *testing.T) {
		err := svc.Delete(ctx, owner, ulid.Make())
		require.Error(t, err)
		assert.ErrorIs(t, err, company.ErrNotFound)
	})
}
