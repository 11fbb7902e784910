// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/firmdeck/firmdeck/internal/access"
	"github.com/firmdeck/firmdeck/internal/auth"
)

// signupRequest mirrors the signup body field names of the public API.
type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Nickname    string `json:"nickName"`
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Description string `json:"description"`
	Position    string `json:"position"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	AccessToken string `json:"access_token"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Message:    "Invalid request body",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	profile, err := s.authSvc.Signup(r.Context(), auth.SignupDraft{
		Email:       req.Email,
		Password:    req.Password,
		Nickname:    req.Nickname,
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		s.countSignup("failure")
		writeError(w, r, err)
		return
	}

	s.countSignup("success")
	writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Message:    "Invalid request body",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	token, err := s.authSvc.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		s.countSignin("failure")
		writeError(w, r, err)
		return
	}

	s.countSignin("success")
	writeJSON(w, http.StatusOK, signinResponse{AccessToken: token})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if !s.requireRoles(w, r, access.OpProfileRead) {
		return
	}
	identity := access.IdentityFromContext(r.Context())

	profile, err := s.authSvc.ProfileByID(r.Context(), identity.UserID)
	if err != nil {
		// The guard resolved this user moments ago; racing deletion reads
		// as an expired session, not a 404.
		if errors.Is(err, auth.ErrNotFound) {
			err = auth.ErrUnauthorized
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) countSignup(outcome string) {
	if s.metrics != nil {
		s.metrics.SignupsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) countSignin(outcome string) {
	if s.metrics != nil {
		s.metrics.SigninsTotal.WithLabelValues(outcome).Inc()
	}
}
