// Package handler contains the HTTP request handlers of the API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming request (path params, query, JSON body)
//  2. Call the service layer
//  3. Translate the result into a status code and JSON body
//
// Handlers hold no business rules. Validation, ownership and pagination
// defaults all live in internal/service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/intervw/internal/auth"
	"github.com/sakif/intervw/internal/model"
)

// SubmissionService is the part of *service.SubmissionService the handlers
// call.
type SubmissionService interface {
	Create(ctx context.Context, ownerID string, in model.SubmissionInput) (*model.Submission, error)
	ListPaged(ctx context.Context, page, limit int) (*model.Page, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Submission, error)
	UpdateOwned(ctx context.Context, id, ownerID string, patch model.SubmissionPatch) (*model.Submission, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (*model.Submission, error)
}

// SubmissionHandler serves the /api/submissions routes.
type SubmissionHandler struct {
	submissions SubmissionService
	errs        *ErrorWriter
	logger      *slog.Logger
}

// NewSubmissionHandler creates a SubmissionHandler.
func NewSubmissionHandler(svc SubmissionService, errs *ErrorWriter, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissions: svc, errs: errs, logger: logger}
}

// HandleCreate stores a new submission owned by the caller.
//
// HTTP: POST /api/submissions
// Auth: required
// REQUEST BODY: {"name": "Ann", "company": "Acme", "country": "US", "questions": ["Q1"]}
// RESPONSE: 201 with the stored submission
func (h *SubmissionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.errs.Unauthorized(w, r)
		return
	}

	var in model.SubmissionInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	sub, err := h.submissions.Create(r.Context(), userID, in)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// HandleList returns one page of all submissions, newest first. Public.
//
// HTTP: GET /api/submissions?page=2&limit=10
// RESPONSE: 200 {"submissions": [...], "totalPages": 3, "currentPage": 2}
//
// Missing or non-numeric page/limit fall back to the service defaults.
func (h *SubmissionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.submissions.ListPaged(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleListMine returns every submission owned by the caller.
//
// HTTP: GET /api/submissions/user
// Auth: required
func (h *SubmissionHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.errs.Unauthorized(w, r)
		return
	}

	subs, err := h.submissions.ListByOwner(r.Context(), userID)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, subs)
}

// HandleUpdate applies a partial update to one of the caller's submissions.
//
// HTTP: PUT /api/submissions/{id}
// Auth: required
// REQUEST BODY: any subset of {"name", "company", "country", "questions"}
// RESPONSE: 200 with the updated submission; 404 if the id is unknown or
// belongs to someone else (the two are not distinguished).
func (h *SubmissionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.errs.Unauthorized(w, r)
		return
	}

	var patch model.SubmissionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	sub, err := h.submissions.UpdateOwned(r.Context(), chi.URLParam(r, "id"), userID, patch)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// HandleDelete removes one of the caller's submissions.
//
// HTTP: DELETE /api/submissions/{id}
// Auth: required
// RESPONSE: 200 with the deleted submission; 404 as for HandleUpdate.
func (h *SubmissionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.errs.Unauthorized(w, r)
		return
	}

	sub, err := h.submissions.DeleteOwned(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}
