// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmdeck/firmdeck/internal/auth"
	"github.com/firmdeck/firmdeck/internal/company"
	"github.com/firmdeck/firmdeck/internal/web"

	"github.com/firmdeck/firmdeck/internal/access"
)

// memUserRepo is an in-memory auth.UserRepository for transport tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[ulid.ULID]*auth.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[ulid.ULID]*auth.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) || strings.EqualFold(existing.Nickname, user.Nickname) {
			return auth.ErrConflict
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memUserRepo) GetByNickname(_ context.Context, nickname string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Nickname, nickname) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return auth.ErrNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

// memCompanyRepo is an in-memory company.Repository for transport tests.
type memCompanyRepo struct {
	mu        sync.Mutex
	companies map[ulid.ULID]*company.Company
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{companies: make(map[ulid.ULID]*company.Company)}
}

func (r *memCompanyRepo) Create(_ context.Context, c *company.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.companies[c.ID] = &clone
	return nil
}

func (r *memCompanyRepo) GetByID(_ context.Context, id ulid.ULID) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, company.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memCompanyRepo) ListByOwner(_ context.Context, ownerID ulid.ULID) ([]*company.Company, error) {
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

func (r *memCompanyRepo) Update(_ context.Context, c *company.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[c.ID]; !ok {
		return company.ErrNotFound
	}
	clone := *c
	r.companies[c.ID] = &clone
	return nil
}

func (r *memCompanyRepo) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return company.ErrNotFound
	}
	delete(r.companies, id)
	return nil
}

type apiFixture struct {
	t       *testing.T
	handler http.Handler
	users   *memUserRepo
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	users := newMemUserRepo()
	companies := newMemCompanyRepo()

	tokens, err := auth.NewTokenService([]byte("transport-test-secret"), time.Hour)
	require.NoError(t, err)
	authSvc, err := auth.NewService(users, auth.NewArgon2idHasher(), tokens)
	require.NoError(t, err)
	guard, err := auth.NewGuard(users, tokens)
	require.NoError(t, err)
	policy, err := company.NewPolicy(access.NewChecker())
	require.NoError(t, err)
	companySvc, err := company.NewService(companies, policy)
	require.NoError(t, err)

	server, err := web.NewServer("127.0.0.1:0", authSvc, companySvc, guard, nil)
	require.NoError(t, err)

	return &apiFixture{t: t, handler: server.Handler(), users: users}
}

// do issues a request against the in-process handler and returns the
// recorded response plus the raw body.
func (f *apiFixture) do(method, path, token string, body any) (*httptest.ResponseRecorder, []byte) {
	f.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	raw, err := io.ReadAll(rec.Result().Body)
	require.NoError(f.t, err)
	return rec, raw
}

func (f *apiFixture) signup(email, nickname string) map[string]any {
	f.t.Helper()
	rec, raw := f.do(http.MethodPost, "/signup", "", map[string]any{
		"email":    email,
		"password": "P@ss1",
		"nickName": nickname,
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, "signup body: %s", raw)

	var profile map[string]any
	require.NoError(f.t, json.Unmarshal(raw, &profile))
	return profile
}

func (f *apiFixture) signin(email, password string) string {
	f.t.Helper()
	rec, raw := f.do(http.MethodPost, "/signin", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(f.t, http.StatusOK, rec.Code, "signin body: %s", raw)

	var resp map[string]string
	require.NoError(f.t, json.Unmarshal(raw, &resp))
	require.NotEmpty(f.t, resp["access_token"])
	return resp["access_token"]
}

func errorMessage(t *testing.T, raw []byte) string {
	t.Helper()
	var envelope struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.Message
}

func TestAPI_SignupSigninProfileFlow(t *testing.T) {
	f := newAPIFixture(t)

	profile := f.signup("a@x.com", "alice")
	assert.Equal(t, "a@x.com", profile["email"])
	assert.Equal(t, "alice", profile["nickName"])
	assert.NotEmpty(t, profile["id"])

	token := f.signin("a@x.com", "P@ss1")

	rec, raw := f.do(http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, profile["id"], got["id"])
	assert.Equal(t, "alice", got["nickName"])
}

func TestAPI_NoResponseEverCarriesPassword(t *testing.T) {
	f := newAPIFixture(t)

	f.signup("a@x.com", "alice")
	token := f.signin("a@x.com", "P@ss1")

	requests := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/profile", nil},
		{http.MethodPost, "/company", map[string]any{"name": "Acme"}},
		{http.MethodGet, "/companies", nil},
	}
	for _, req := range requests {
		_, raw := f.do(req.method, req.path, token, req.body)
		assert.NotContains(t, strings.ToLower(string(raw)), "password",
			"%s %s leaked secret material", req.method, req.path)
	}
}

func TestAPI_SignupDuplicates(t *testing.T) {
	f := newAPIFixture(t)
	f.signup("a@x.com", "alice")

	t.Run("duplicate email", func(t *testing.T) {
		rec, raw := f.do(http.MethodPost, "/signup", "", map[string]any{
			"email":    "a@x.com",
			"password": "other",
			"nickName": "bob",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "User with given email already exists.", errorMessage(t, raw))
	})

	t.Run("duplicate nickname", func(t *testing.T) {
		rec, raw := f.do(http.MethodPost, "/signup", "", map[string]any{
			"email":    "b@x.com",
			"password": "other",
			"nickName": "alice",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "User with given nickname already exists.", errorMessage(t, raw))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_SignupValidation(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("empty password", func(t *testing.T) {
		rec, raw := f.do(http.MethodPost, "/signup", "", map[string]any{
			"email":    "c@x.com",
			"password": "",
			"nickName": "carol",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, raw), "password cannot be empty")
	})

	t.Run("invalid nickname", func(t *testing.T) {
		rec, _ := f.do(http.MethodPost, "/signup", "", map[string]any{
			"email":    "c@x.com",
			"password": "P@ss1",
			"nickName": "9bad",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty email", func(t *testing.T) {
		rec, _ := f.do(http.MethodPost, "/signup", "", map[string]any{
			"email":    "  ",
			"password": "P@ss1",
			"nickName": "carol",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_SigninFailures(t *testing.T) {
	f := newAPIFixture(t)
	f.signup("a@x.com", "alice")

	wrongPass, _ := f.do(http.MethodPost, "/signin", "", map[string]any{
		"email": "a@x.com", "password": "wrong",
	})
	unknownEmail, _ := f.do(http.MethodPost, "/signin", "", map[string]any{
		"email": "nobody@x.com", "password": "P@ss1",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// Byte-identical bodies: no account enumeration via responses.
	assert.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())
	assert.Contains(t, wrongPass.Body.String(), "Invalid credentials")
}

func TestAPI_ProtectedEndpointsRejectBadTokens(t *testing.T) {
	f := newAPIFixture(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/company"},
		{http.MethodGet, "/companies"},
		{http.MethodGet, "/company/" + ulid.Make().String()},
		{http.MethodPut, "/company/" + ulid.Make().String()},
		{http.MethodDelete, "/company/" + ulid.Make().String()},
	}
	for _, p := range paths {
		t.Run(fmt.Sprintf("%s %s", p.method, p.path), func(t *testing.T) {
			rec, raw := f.do(p.method, p.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized", errorMessage(t, raw))

			rec, raw = f.do(p.method, p.path, "not-a-token", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized", errorMessage(t, raw))
		})
	}
}

func TestAPI_ProfileOfDeletedUserIsUnauthorized(t *testing.T) {
	f := newAPIFixture(t)

	profile := f.signup("a@x.com", "alice")
	token := f.signin("a@x.com", "P@ss1")

	id, err := ulid.Parse(profile["id"].(string))
	require.NoError(t, err)
	f.users.mu.Lock()
	delete(f.users.users, id)
	f.users.mu.Unlock()

	rec, raw := f.do(http.MethodGet, "/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorMessage(t, raw))
}

func TestAPI_CompanyOwnershipLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	f.signup("a@x.com", "alice")
	f.signup("b@x.com", "bob")
	aliceToken := f.signin("a@x.com", "P@ss1")
	bobToken := f.signin("b@x.com", "P@ss1")

	// Alice creates a company.
	rec, raw := f.do(http.MethodPost, "/company", aliceToken, map[string]any{
		"name":              "Acme",
		"address":           "1 Main St",
		"serviceOfActivity": "manufacturing",
		"numberOfEmployees": 12,
		"type":              "LLC",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", raw)
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	companyID := created["id"].(string)
	companyPath := "/company/" + companyID

	t.Run("owner reads own company", func(t *testing.T) {
		rec, raw := f.do(http.MethodGet, companyPath, aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "Acme", got["name"])
	})

	t.Run("non-owner read is forbidden", func(t *testing.T) {
		rec, _ := f.do(http.MethodGet, companyPath, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-owner update is forbidden", func(t *testing.T) {
		rec, _ := f.do(http.MethodPut, companyPath, bobToken, map[string]any{"name": "Hijacked"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner updates, owner field survives", func(t *testing.T) {
		rec, raw := f.do(http.MethodPut, companyPath, aliceToken, map[string]any{
			"name":              "Acme Rebranded",
			"numberOfEmployees": 40,
		})
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", raw)
		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "Acme Rebranded", got["name"])
		assert.Equal(t, created["ownerId"], got["ownerId"])
	})

	t.Run("non-owner delete is forbidden, owner delete succeeds, then 404", func(t *testing.T) {
		rec, _ := f.do(http.MethodDelete, companyPath, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec, _ = f.do(http.MethodDelete, companyPath, aliceToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec, raw := f.do(http.MethodGet, companyPath, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not found", errorMessage(t, raw))
	})
}

func TestAPI_CompanyList(t *testing.T) {
	f := newAPIFixture(t)

	f.signup("a@x.com", "alice")
	f.signup("b@x.com", "bob")
	aliceToken := f.signin("a@x.com", "P@ss1")
	bobToken := f.signin("b@x.com", "P@ss1")

	t.Run("empty list serializes as an array", func(t *testing.T) {
		rec, raw := f.do(http.MethodGet, "/companies", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
	})

	t.Run("list is scoped to the caller", func(t *testing.T) {
		for _, name := range []string{"Acme", "Globex"} {
			rec, _ := f.do(http.MethodPost, "/company", aliceToken, map[string]any{"name": name})
			require.Equal(t, http.StatusCreated, rec.Code)
		}
		rec, _ := f.do(http.MethodPost, "/company", bobToken, map[string]any{"name": "Initech"})
		require.Equal(t, http.StatusCreated, rec.Code)

		_, raw := f.do(http.MethodGet, "/companies", aliceToken, nil)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Len(t, got, 2)
	})
}

func TestAPI_CompanyBadInput(t *testing.T) {
	f := newAPIFixture(t)
	f.signup("a@x.com", "alice")
	token := f.signin("a@x.com", "P@ss1")

	t.Run("unparseable id is not found", func(t *testing.T) {
		rec, _ := f.do(http.MethodGet, "/company/not-a-ulid", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty name is a validation error", func(t *testing.T) {
		rec, _ := f.do(http.MethodPost, "/company", token, map[string]any{"name": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative employee count is a validation error", func(t *testing.T) {
		rec, _ := f.do(http.MethodPost, "/company", token, map[string]any{
			"name": "Acme", "numberOfEmployees": -3,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
