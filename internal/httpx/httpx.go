// internal/httpx/httpx.go
//
// JSON request and response helpers shared by every component.
//
// Context
// -------
// Handlers decode a payload, call a service, and write either the result or
// the service's *apperr.Error.  Errors map onto a fixed body shape:
//
//	{"error": "Party size exceeded", "code": "PARTY_SIZE_EXCEEDED", "field": "attendees"}
//
// Internal errors never leak their cause; the cause is logged through the
// request-scoped zap logger instead.
//
// Notes
// -----
// • Request bodies are capped at MaxBodyBytes.
// • Oxford commas, two spaces after periods.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/logger"
)

// MaxBodyBytes bounds a JSON request body.
const MaxBodyBytes = 1 << 20

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// WriteJSON writes payload with status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError maps err onto a status and error body.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	status := ae.Kind.Status()

	switch {
	case ae.Kind == apperr.KindInternal:
		logger.FromContext(r.Context()).Errorw("request failed", "error", ae.Cause)
		WriteJSON(w, status, ErrorBody{Error: "Internal server error"})
		return
	case errors.Is(ae, apperr.ErrUnauthenticated):
		WriteJSON(w, status, ErrorBody{Error: "Unauthorized"})
		return
	}

	msg := ae.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, ErrorBody{Error: msg, Code: string(ae.Code), Field: ae.Field})
}

// Unauthorized writes the uniform 401 used for every session gate.
func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, ErrorBody{Error: "Unauthorized"})
}

// Decode reads one JSON object from r's body into dst.  Malformed input is
// a validation error on field "body".
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("body", "Request body is required")
		}
		return apperr.Validation("body", "Invalid JSON: "+err.Error())
	}
	if dec.More() {
		return apperr.Validation("body", "Request body must contain a single JSON object")
	}
	return nil
}

// Message is the small `{"message": ...}` acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
