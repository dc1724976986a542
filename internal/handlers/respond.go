// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers for the KBPress API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Error codes returned in API error bodies. Clients switch on these
// rather than parsing messages.
const (
	codeValidation         = "validation_error"
	codeNotFound           = "not_found"
	codeDuplicateSlug      = "duplicate_slug"
	codeAlreadyInitialized = "already_initialized"
	codeUnauthenticated    = "unauthenticated"
	codeInvalidCredentials = "invalid_credentials"
	codeTOTPRequired       = "totp_required"
	codeParentNotFound     = "parent_not_found"
	codeUnsupportedMedia   = "unsupported_media_type"
	codePayloadTooLarge    = "payload_too_large"
	codeInternal           = "internal"
)

// apiError is the wire shape of every error response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// writeJSON serializes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError writes a structured error body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

// writeFieldError writes a validation error tied to a specific request field.
func writeFieldError(w http.ResponseWriter, code, message, field string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{
		Error: apiError{Code: code, Message: message, Field: field},
	})
}

// writeInternal logs the underlying error and returns an opaque 500.
func writeInternal(w http.ResponseWriter, err error) {
	slog.Error("internal error", "error", err)
	writeError(w, http.StatusInternalServerError, codeInternal, "Something went wrong.")
}

// writeNotFound returns the shared 404 body.
func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, codeNotFound, "Resource not found.")
}

// decodeJSON reads the request body into dst, rejecting unknown fields
// and trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Reject a second JSON value after the first.
	if dec.More() {
		return errTrailingBody
	}
	return nil
}

var errTrailingBody = errors.New("request body must contain a single JSON object")
