// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

// Package web provides the HTTP transport for Firmdeck. It parses
// requests, runs the authorization guard, delegates to the auth and
// company services, and maps error kinds to status codes. No business
// decision lives here.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/firmdeck/firmdeck/internal/auth"
	"github.com/firmdeck/firmdeck/internal/company"
	"github.com/firmdeck/firmdeck/internal/observability"
)

// Server is the HTTP API server.
type Server struct {
	addr       string
	authSvc    *auth.Service
	companySvc *company.Service
	guard      *auth.Guard
	metrics    *observability.Metrics

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates the API server. metrics may be nil (disabled).
func NewServer(addr string, authSvc *auth.Service, companySvc *company.Service, guard *auth.Guard, metrics *observability.Metrics) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Code("WEB_NIL_DEPENDENCY").Errorf("auth service is required")
	}
	if companySvc == nil {
		return nil, oops.Code("WEB_NIL_DEPENDENCY").Errorf("company service is required")
	}
	if guard == nil {
		return nil, oops.Code("WEB_NIL_DEPENDENCY").Errorf("guard is required")
	}
	return &Server{
		addr:       addr,
		authSvc:    authSvc,
		companySvc: companySvc,
		guard:      guard,
		metrics:    metrics,
	}, nil
}

// Handler builds the route table. Exposed for httptest use.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /signin", s.handleSignin)

	mux.Handle("GET /profile", s.protect(s.handleProfile))

	mux.Handle("POST /company", s.protect(s.handleCompanyCreate))
	mux.Handle("GET /companies", s.protect(s.handleCompanyList))
	mux.Handle("GET /company/{id}", s.protect(s.handleCompanyGet))
	mux.Handle("PUT /company/{id}", s.protect(s.handleCompanyUpdate))
	mux.Handle("DELETE /company/{id}", s.protect(s.handleCompanyDelete))

	return mux
}

// Start begins serving the API. It returns an error channel that will
// receive any errors from the HTTP server after it starts; the channel
// is closed on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}
	slog.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
