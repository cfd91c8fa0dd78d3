package httpserver

import (
	"context"
	"net/http"
	"strings"

	"gameforum/internal/domain"
	"gameforum/internal/security"
	"gameforum/internal/store"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the authenticated user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the authenticated user from the request context.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// AuthMiddleware validates the Bearer token and attaches the user record to
// the context. Suspended accounts are rejected.
func AuthMiddleware(tokens *security.TokenService, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			userID, err := tokens.Parse(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil || user == nil {
				http.Error(w, "user not found", http.StatusUnauthorized)
				return
			}
			if user.Status == domain.StatusSuspended {
				http.Error(w, "account suspended", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// requireAdmin is a per-handler guard for account management endpoints.
func requireAdmin(r *http.Request) *domain.User {
	u := CurrentUser(r)
	if u == nil || u.Role != domain.RoleAdmin {
		return nil
	}
	return u
}
