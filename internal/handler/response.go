package handler

// RESPONSE HELPERS:
// Every handler in this package answers through writeJSON or ErrorWriter, so
// success and error bodies have one shape across the whole API:
//
//	{"error": "not_found", "message": "submission not found with id abc123"}
//
// The "details" field carries the raw internal error text and is only filled
// in development mode.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/intervw/internal/apperror"
)

// maxBodyBytes caps request bodies; a submission with many long questions
// stays far below this.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`             // machine-readable kind, e.g. "not_found"
	Message string `json:"message"`           // human-readable description
	Field   string `json:"field,omitempty"`   // offending input field, if any
	Details string `json:"details,omitempty"` // development mode only
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must go out before the body, so the order here matters.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent; all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// ErrorWriter translates service errors into HTTP error responses.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation      → 400 validation_error
//	apperror.ErrUnauthenticated → 401 unauthenticated
//	apperror.ErrNotFound        → 404 not_found
//	anything else               → 500 internal_error
//
// errors.Is walks the whole chain, so a service may wrap an AppError with
// fmt.Errorf("...: %w") and the mapping still holds.
type ErrorWriter struct {
	logger  *slog.Logger
	verbose bool
}

// NewErrorWriter creates an ErrorWriter. With verbose set (development
// mode) every error body also carries the raw error text in "details".
func NewErrorWriter(logger *slog.Logger, verbose bool) *ErrorWriter {
	return &ErrorWriter{logger: logger, verbose: verbose}
}

// Write sends the response for err.
func (ew *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)

	resp := ErrorResponse{Error: kind}

	var appErr *apperror.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Field = appErr.Field
	} else {
		// Never echo storage errors to the client outside development:
		// they can contain SQL, file paths and other internals.
		resp.Message = "An internal error occurred"
		ew.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("requestID", chimiddleware.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
	}

	if ew.verbose {
		resp.Details = err.Error()
	}

	writeJSON(w, status, resp)
}

// Unauthorized answers a request that carried no usable bearer token. Its
// signature matches the onFail hook of auth.RequireAuth.
func (ew *ErrorWriter) Unauthorized(w http.ResponseWriter, r *http.Request) {
	ew.Write(w, r, apperror.Unauthenticated("missing or invalid bearer token"))
}

// MethodNotAllowed answers a known path requested with a method it does not
// serve. It is installed as the router's 405 handler.
func (ew *ErrorWriter) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	resp := ErrorResponse{
		Error:   "method_not_allowed",
		Message: fmt.Sprintf("method %s is not allowed on %s", r.Method, r.URL.Path),
	}
	ew.logger.Debug("method not allowed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("requestID", chimiddleware.GetReqID(r.Context())),
	)
	writeJSON(w, http.StatusMethodNotAllowed, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads a single JSON object from the request body into dst.
// Malformed JSON, trailing data and oversized bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("body", fmt.Sprintf("request body must be %d bytes or less", maxBodyBytes))
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "request body is required")
		default:
			return apperror.ValidationFailed("body", "request body must be valid JSON")
		}
	}
	if dec.More() {
		return apperror.ValidationFailed("body", "request body must contain a single JSON object")
	}
	return nil
}

// queryInt returns the integer value of query parameter key, or 0 when it
// is absent or not a number. Callers treat 0 as "use the default".
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return n
}
