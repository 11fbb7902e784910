// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package web

import (
	"encoding/json"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/firmdeck/firmdeck/internal/access"
	"github.com/firmdeck/firmdeck/internal/company"
)

// companyRequest mirrors the company body field names of the public API.
type companyRequest struct {
	Name              string `json:"name"`
	Address           string `json:"address"`
	ServiceOfActivity string `json:"serviceOfActivity"`
	NumberOfEmployees int    `json:"numberOfEmployees"`
	Description       string `json:"description"`
	Type              string `json:"type"`
}

func (r companyRequest) draft() company.Draft {
	return company.Draft{
		Name:              r.Name,
		Address:           r.Address,
		ServiceOfActivity: r.ServiceOfActivity,
		NumberOfEmployees: r.NumberOfEmployees,
		Description:       r.Description,
		Type:              r.Type,
	}
}

func (s *Server) handleCompanyCreate(w http.ResponseWriter, r *http.Request) {
	if !s.requireRoles(w, r, access.OpCompanyCreate) {
		return
	}

	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Message:    "Invalid request body",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	c, err := s.companySvc.Create(r.Context(), access.IdentityFromContext(r.Context()), req.draft())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCompanyList(w http.ResponseWriter, r *http.Request) {
	if !s.requireRoles(w, r, access.OpCompanyList) {
		return
	}

	companies, err := s.companySvc.List(r.Context(), access.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if companies == nil {
		companies = []*company.Company{}
	}
	writeJSON(w, http.StatusOK, companies)
}

func (s *Server) handleCompanyGet(w http.ResponseWriter, r *http.Request) {
	if !s.requireRoles(w, r, access.OpCompanyRead) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	c, err := s.companySvc.Get(r.Context(), access.IdentityFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCompanyUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.requireRoles(w, r, access.OpCompanyUpdate) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Message:    "Invalid request body",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	c, err := s.companySvc.Update(r.Context(), access.IdentityFromContext(r.Context()), id, req.draft())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCompanyDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireRoles(w, r, access.OpCompanyDelete) {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.companySvc.Delete(r.Context(), access.IdentityFromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment. An unparseable ID cannot name any
// company, so it reads as not-found rather than a validation error.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorEnvelope{
			Message:    msgNotFound,
			StatusCode: http.StatusNotFound,
		})
		return ulid.ULID{}, false
	}
	return id, true
}
