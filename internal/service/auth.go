// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → normalises, validates, enforces rules
//	Repository (data layer)  → reads/writes the database
//
// Services take repository interfaces, never *sqlite.DB, so tests can hand
// them in-memory fakes (see the _test.go files) and the handlers never touch
// SQL. Every error a service returns is either an *apperror.AppError, which
// the handler maps to a 4xx, or a wrapped storage error, which becomes a 500.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/intervw/internal/apperror"
	"github.com/sakif/intervw/internal/auth"
	"github.com/sakif/intervw/internal/model"
	"github.com/sakif/intervw/internal/repository"
	"github.com/sakif/intervw/internal/validate"
)

// errBadCredentials is the single answer to every failed login. Unknown
// email and wrong password must be indistinguishable to the caller.
const errBadCredentials = "authentication failed"

// AuthService registers accounts, verifies credentials and issues tokens.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue/verify JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - validator  *validate.Validator        → struct-tag input rules
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validator *validate.Validator
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	validator *validate.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		validator: validator,
		logger:    logger,
	}
}

// AuthResult is what register and login hand back to the client: the
// account (never including the hash, see model.User) and a fresh token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account and issues its first token.
//
// Username is trimmed and email is trimmed and lower-cased before validation.
// Duplicate username or email surfaces as apperror.ErrValidation; the check
// is the database UNIQUE constraint, so two concurrent registrations for the
// same email cannot both succeed.
func (s *AuthService) Register(ctx context.Context, in model.RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", in.Username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issue(user)
}

// Login verifies email and password and issues a token.
//
// Missing fields are a validation error (400). An unknown email and a wrong
// password both return the same apperror.Unauthenticated.
func (s *AuthService) Login(ctx context.Context, in model.LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("login rejected")
			return nil, apperror.Unauthenticated(errBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("login rejected")
			return nil, apperror.Unauthenticated(errBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: verifying password for %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.issue(user)
}

// AuthService is the token check behind auth.RequireAuth.
var _ auth.TokenValidator = (*AuthService)(nil)

// Validate returns the user id a token was issued for. Malformed, tampered
// and expired tokens all yield apperror.ErrUnauthenticated.
func (s *AuthService) Validate(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		s.logger.Warn("rejected bearer token", slog.String("error", err.Error()))
		return "", apperror.Unauthenticated("invalid or expired token")
	}
	return userID, nil
}

// GetUserByID returns the account with the given id.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
