// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/firmdeck/firmdeck/internal/access"
	"github.com/firmdeck/firmdeck/internal/auth"
)

// protect wraps a handler with the authorization guard: it authenticates
// the bearer token, resolves the live caller, and attaches the identity
// to the request context. Handlers behind protect can rely on
// access.IdentityFromContext returning a non-nil identity.
func (s *Server) protect(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.guard.Authenticate(r.Context(), r.Header.Get("Authorization"), time.Now())
		if err != nil {
			s.recordDenial(err)
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(access.WithIdentity(r.Context(), identity)))
	})
}

// requireRoles rejects the request when the caller's resolved roles do
// not intersect the operation's declared required-role set.
func (s *Server) requireRoles(w http.ResponseWriter, r *http.Request, operation string) bool {
	if err := auth.RequireRoles(access.IdentityFromContext(r.Context()), operation); err != nil {
		s.recordDenial(err)
		writeError(w, r, err)
		return false
	}
	return true
}

// recordDenial counts rejected requests by kind.
func (s *Server) recordDenial(err error) {
	if s.metrics == nil {
		return
	}
	kind := "unauthorized"
	if errors.Is(err, auth.ErrForbidden) {
		kind = "forbidden"
	}
	s.metrics.AuthDenialsTotal.WithLabelValues(kind).Inc()
}
