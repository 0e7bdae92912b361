package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/intervw/internal/apperror"
	"github.com/sakif/intervw/internal/auth"
	"github.com/sakif/intervw/internal/model"
	"github.com/sakif/intervw/internal/service"
)

// AuthService is the part of *service.AuthService the handlers call.
type AuthService interface {
	Register(ctx context.Context, in model.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, in model.LoginInput) (*service.AuthResult, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler serves account registration, login and the caller's profile.
type AuthHandler struct {
	auth   AuthService
	errs   *ErrorWriter
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc AuthService, errs *ErrorWriter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, errs: errs, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /api/register
// REQUEST BODY: {"username": "ann", "email": "ann@example.com", "password": "..."}
// RESPONSE: 201 {"user": {...}, "token": "<jwt>"}; 400 on invalid input or
// a username/email that is already taken.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// HandleLogin verifies credentials and issues a token.
//
// HTTP: POST /api/login
// REQUEST BODY: {"email": "ann@example.com", "password": "..."}
// RESPONSE: 200 {"user": {...}, "token": "<jwt>"}; 400 if a field is
// missing; 401 for any credential mismatch.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in model.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.errs.Write(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleMe returns the authenticated caller's account.
//
// HTTP: GET /api/me
// Auth: required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.errs.Unauthorized(w, r)
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		// A valid token for a user that no longer exists is an auth failure,
		// not a missing resource.
		if errors.Is(err, apperror.ErrNotFound) {
			h.errs.Unauthorized(w, r)
			return
		}
		h.errs.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
