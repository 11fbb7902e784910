// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/firmdeck/firmdeck/internal/auth"
	"github.com/firmdeck/firmdeck/internal/company"
)

// errorEnvelope is the JSON error body for every non-2xx response.
type errorEnvelope struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Outward messages. Duplicate and credential failures use fixed strings:
// the credential message in particular is identical for unknown email and
// wrong password so responses cannot be used for account enumeration.
const (
	msgDuplicateEmail     = "User with given email already exists."
	msgDuplicateNickname  = "User with given nickname already exists."
	msgInvalidCredentials = "Invalid credentials"
	msgUnauthorized       = "Unauthorized"
	msgConflict           = "Conflict"
	msgNotFound           = "Not found"
	msgInternal           = "Internal server error"
)

// writeError maps an error kind to its outward status category and JSON
// envelope. Secret material never reaches this function: profiles are
// stripped before serialization and error chains carry no hashes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := msgInternal

	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		status, message = http.StatusBadRequest, msgDuplicateEmail
	case errors.Is(err, auth.ErrDuplicateNickname):
		status, message = http.StatusBadRequest, msgDuplicateNickname
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, auth.ErrUnauthorized):
		status, message = http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, auth.ErrConflict):
		status, message = http.StatusConflict, msgConflict
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, company.ErrNotFound):
		status, message = http.StatusNotFound, msgNotFound
	case isValidation(err):
		status, message = http.StatusBadRequest, err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}

	writeJSON(w, status, errorEnvelope{Message: message, StatusCode: status})
}

// isValidation reports whether the error is a caller-input validation
// failure safe to echo back.
func isValidation(err error) bool {
	var coded interface{ Code() string }
	if !errors.As(err, &coded) {
		return false
	}
	switch coded.Code() {
	case "AUTH_INVALID_NICKNAME", "AUTH_INVALID_EMAIL", "AUTH_EMPTY_PASSWORD",
		"COMPANY_INVALID_NAME", "COMPANY_INVALID_EMPLOYEES":
		return true
	}
	return false
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response body", "error", err)
	}
}
