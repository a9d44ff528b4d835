// Package httpapi holds the JSON request/response conventions shared by all
// API handlers.
//
// Error responses carry an opaque category code, never internal error text:
// full detail goes to the server log, the client sees {"error":"internal"}.
// Validation failures are the one category with structure: the accumulated
// human-readable violations ride along so the client can show them all at
// once.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lineagehub/lineagehub/internal/app/system/limits"
)

// Error categories returned to clients.
const (
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeConflict         = "conflict"
	CodePayloadTooLarge  = "payload_too_large"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal"
)

type errorBody struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are ignored;
// by that point the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an opaque error category.
func WriteError(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, errorBody{Error: code})
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized)
}

// Forbidden writes a 403 response.
func Forbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, CodeForbidden)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, CodeNotFound)
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, CodeBadRequest)
}

// Conflict writes a 409 response.
func Conflict(w http.ResponseWriter) {
	WriteError(w, http.StatusConflict, CodeConflict)
}

// Internal writes a 500 response. The caller logs the underlying error.
func Internal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternal)
}

// PayloadTooLarge writes a 413 with the violation that tripped the limit.
func PayloadTooLarge(w http.ResponseWriter, violations []string) {
	WriteJSON(w, http.StatusRequestEntityTooLarge, errorBody{
		Error:      CodePayloadTooLarge,
		Violations: violations,
	})
}

// ValidationFailed writes a 422 with every accumulated violation.
func ValidationFailed(w http.ResponseWriter, violations []string) {
	WriteJSON(w, http.StatusUnprocessableEntity, errorBody{
		Error:      CodeValidationFailed,
		Violations: violations,
	})
}

// TooManyRequests writes a 429 response with a human-readable reason.
func TooManyRequests(w http.ResponseWriter, violations []string) {
	WriteJSON(w, http.StatusTooManyRequests, errorBody{
		Error:      CodeRateLimited,
		Violations: violations,
	})
}

// Decode reads a JSON request body into dst, enforcing the body size cap
// and rejecting trailing garbage.
func Decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, limits.MaxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode body: unexpected trailing data")
	}
	return nil
}
