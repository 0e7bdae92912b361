package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or overwrite the
// user id stored by this package.
type contextKey string

const userIDKey contextKey = "userID"

// TokenValidator is the subset of *TokenService the middleware needs.
type TokenValidator interface {
	Validate(tokenStr string) (string, error)
}

// RequireAuth enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <token>", validates the token and stores
// the user id in the request context. A missing header, a header without the
// Bearer scheme, or an invalid/expired token all produce the same 401 via
// onFail, so the response does not tell the caller which check failed.
func RequireAuth(tokens TokenValidator, onFail http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := BearerToken(r)
			if !ok {
				onFail(w, r)
				return
			}

			userID, err := tokens.Validate(tokenStr)
			if err != nil {
				onFail(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively (RFC 6750).
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) outside a RequireAuth-protected route.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
